package chat

import "errors"

// Error codes for domain errors.
const (
	ErrCodeSelfBan   = "self_ban"
	ErrCodeNotBanned = "not_banned"
)

var (
	ErrDuplicateUsername = errors.New("username already connected")
	ErrEmptyUsername     = errors.New("username must not be empty")
)

// ChatError wraps a code and the human-readable reply sent to the
// offending client.
type ChatError struct {
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

func chatError(code, msg string) *ChatError {
	return &ChatError{Code: code, Message: msg}
}
