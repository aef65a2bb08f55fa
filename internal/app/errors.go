package service

import "errors"

// Sentinel error kinds for the service.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEncode       = errors.New("encode evaluation failed")
	ErrStore        = errors.New("store evaluation failed")
)
