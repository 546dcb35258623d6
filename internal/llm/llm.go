package llm

import (
	"context"
	"fmt"

	app_errors "novamind/backend/internal/errors"
)

// Generator is the stateless text-completion contract: one prompt in, one
// reply out. Conversation context is the caller's problem; providers are
// invoked fresh on every call.
type Generator interface {
	Generate(ctx context.Context, prompt, modelID string) (string, error)
}

// QuotaError wraps app_errors.ErrQuotaExhausted with whatever remaining-quota
// detail the provider reported, so the UI can show it.
type QuotaError struct {
	Detail string
}

func (e *QuotaError) Error() string {
	if e.Detail == "" {
		return app_errors.ErrQuotaExhausted.Error()
	}
	return fmt.Sprintf("%s: %s", app_errors.ErrQuotaExhausted, e.Detail)
}

func (e *QuotaError) Unwrap() error { return app_errors.ErrQuotaExhausted }
