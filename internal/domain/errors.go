package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid delivery status transition")

	ErrTaskNotFound     = errors.New("restock task not found or not assigned to this staff member")
	ErrNoDeliveredStock = errors.New("no delivered stock found for this product")
	ErrShelfNotFound    = errors.New("no shelf found for this product")
)
