package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"novamind/backend/internal/model"
)

// TurnState tracks one in-flight message exchange as the UI sees it.
type TurnState int

const (
	// TurnComposing: the user is still typing.
	TurnComposing TurnState = iota
	// TurnSubmitted: the optimistic user message is shown, request in flight.
	TurnSubmitted
	// TurnAwaitingReply: a loading placeholder stands in for the reply.
	TurnAwaitingReply
	// TurnResolved: the placeholder has been replaced with real content.
	TurnResolved
	// TurnFailed: the exchange failed; the typed input has been restored.
	TurnFailed
)

func (s TurnState) String() string {
	switch s {
	case TurnComposing:
		return "composing"
	case TurnSubmitted:
		return "submitted"
	case TurnAwaitingReply:
		return "awaiting_reply"
	case TurnResolved:
		return "resolved"
	case TurnFailed:
		return "failed"
	}
	return fmt.Sprintf("TurnState(%d)", int(s))
}

// PendingMessage is a message as rendered while a turn is in flight. Loading
// marks the transient placeholder standing in for the reply.
type PendingMessage struct {
	Message model.Message
	Loading bool
}

// Turn is the optimistic state machine for a single exchange. It exists so
// the submit/placeholder/resolve/fail sequencing is testable without any UI
// attached. The service's async contract drives the transitions.
type Turn struct {
	state TurnState
	input string
	view  []PendingMessage
	err   error
}

func NewTurn() *Turn {
	return &Turn{state: TurnComposing}
}

func (t *Turn) State() TurnState { return t.state }

// Input returns the composed text. After a failure it holds the restored
// input so no keystrokes are lost.
func (t *Turn) Input() string { return t.input }

func (t *Turn) Err() error { return t.err }

// View returns the messages this turn contributes to the rendered list.
func (t *Turn) View() []PendingMessage { return t.view }

// Submit shows the user message optimistically and marks the request as in
// flight.
func (t *Turn) Submit(input string) error {
	if t.state != TurnComposing {
		return fmt.Errorf("cannot submit from state %s", t.state)
	}
	t.input = input
	t.view = append(t.view, PendingMessage{
		Message: model.Message{
			ID:        uuid.NewString(),
			Role:      model.RoleUser,
			Content:   input,
			Timestamp: time.Now().UTC(),
		},
	})
	t.state = TurnSubmitted
	return nil
}

// ShowPlaceholder adds the loading assistant placeholder. The UI delays this
// transition slightly to avoid flicker on fast replies; skipping it entirely
// is legal, so Resolve also accepts the Submitted state.
func (t *Turn) ShowPlaceholder() error {
	if t.state != TurnSubmitted {
		return fmt.Errorf("cannot show placeholder from state %s", t.state)
	}
	t.view = append(t.view, PendingMessage{
		Message: model.Message{
			ID:        uuid.NewString(),
			Role:      model.RoleAssistant,
			Timestamp: time.Now().UTC(),
		},
		Loading: true,
	})
	t.state = TurnAwaitingReply
	return nil
}

// Resolve replaces the placeholder with the real reply. The placeholder is
// targeted by its loading flag, not by position: concurrent UI updates can
// shift indices.
func (t *Turn) Resolve(content string) error {
	if t.state != TurnSubmitted && t.state != TurnAwaitingReply {
		return fmt.Errorf("cannot resolve from state %s", t.state)
	}

	resolved := false
	for i := range t.view {
		if t.view[i].Loading {
			t.view[i].Message.Content = content
			t.view[i].Loading = false
			resolved = true
			break
		}
	}
	if !resolved {
		// Fast reply, no placeholder was ever shown.
		t.view = append(t.view, PendingMessage{
			Message: model.Message{
				ID:        uuid.NewString(),
				Role:      model.RoleAssistant,
				Content:   content,
				Timestamp: time.Now().UTC(),
			},
		})
	}
	t.state = TurnResolved
	return nil
}

// Fail aborts the turn: the optimistic messages are withdrawn, no dangling
// placeholder survives, and Input still carries the user's text for
// resubmission.
func (t *Turn) Fail(err error) error {
	if t.state != TurnSubmitted && t.state != TurnAwaitingReply {
		return fmt.Errorf("cannot fail from state %s", t.state)
	}
	t.view = nil
	t.err = err
	t.state = TurnFailed
	return nil
}
