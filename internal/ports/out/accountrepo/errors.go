package accountrepo

import "errors"

var (
	// ErrNotFound indicates the requested account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrAlreadyExists indicates an account already exists with the provided ID.
	ErrAlreadyExists = errors.New("account already exists")

	// ErrEmailTaken indicates another account already uses the email (case-insensitive).
	ErrEmailTaken = errors.New("account email already in use")
)
