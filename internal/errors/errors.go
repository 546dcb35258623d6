package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Using sentinel errors allows services to return specific, recognizable error types
// without coupling them to implementation details like HTTP status codes. The API
// layer can then use `errors.Is()` to check for these specific errors and map
// them to the correct HTTP responses.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// business rule validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrPermission signifies that the authenticated user is not authorized
	// to perform the requested action, e.g. touching another user's session.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrUnauthenticated signifies that no authenticated user is attached to
	// the request. Owner-scoped operations fail with this before doing any
	// work; the client is expected to redirect to the sign-in flow.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSafetyBlocked signifies that the generation provider refused the
	// request on safety-policy grounds. Not retried; the user is asked to
	// rephrase.
	ErrSafetyBlocked = errors.New("generation blocked for safety reasons")

	// ErrRecitationBlocked signifies that the provider refused the request
	// because the response would recite copyrighted material.
	ErrRecitationBlocked = errors.New("generation blocked for recitation reasons")

	// ErrQuotaExhausted signifies that the provider reported resource
	// exhaustion. Not retried automatically.
	ErrQuotaExhausted = errors.New("generation quota exhausted")

	// ErrNoChats is the distinguished outcome of deleting all chats when the
	// owner has none. It is informational rather than a failure, but it is an
	// error value so callers can't mistake it for a completed deletion.
	ErrNoChats = errors.New("no chats to delete")

	// ErrInternal signifies an unexpected error on the server. This is a generic
	// error used to prevent leaking sensitive implementation details to the client.
	ErrInternal = errors.New("internal server error")
)
