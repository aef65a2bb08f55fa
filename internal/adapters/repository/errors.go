package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateID   = errors.New("record id already stored")
	ErrInvalidRecord = errors.New("invalid record")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrUnknownKind   = errors.New("unknown record kind")
)
