package messaging

import "errors"

var (
	// ErrValidation is returned when a message has no text, image or voice clip.
	ErrValidation = errors.New("message content is required")
	// ErrNotFound is returned when the message or recipient does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a caller tries to delete someone else's message.
	ErrForbidden = errors.New("not authorized to delete this message")
)
