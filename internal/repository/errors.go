package repository

import "errors"

// ErrNotFound is a repository-specific sentinel error. It is returned when a
// query for a single session finds no rows.
//
// The service layer checks for this error and translates it into the
// domain-level `app_errors.ErrNotFound`, decoupling the business logic from
// the data access implementation and from `sql.ErrNoRows`.
var ErrNotFound = errors.New("repository: not found")
