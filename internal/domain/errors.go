package domain

import "errors"

var (
	// ErrUserNotFound indicates the ledger has no signup event for the user.
	ErrUserNotFound = errors.New("user not found")

	// ErrSnapshotNotFound indicates no cached analytics row exists yet.
	ErrSnapshotNotFound = errors.New("analytics snapshot not found")

	// ErrInvalidInput indicates a caller-supplied parameter is out of range.
	ErrInvalidInput = errors.New("invalid input")
)
