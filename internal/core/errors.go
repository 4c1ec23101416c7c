package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeInvalidRoomCode = "invalid_room_code"
	ErrCodeRoomExists      = "room_exists"
	ErrCodeRoomNotFound    = "room_not_found"
	ErrCodeNotAuthorized   = "not_authorized"
	ErrCodeNotInRoom       = "not_in_room"
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeBadRequest      = "bad_request"
)

var (
	ErrInvalidRoomCode = errors.New("invalid room code")
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomNotFound    = errors.New("room not found")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrNotInRoom       = errors.New("not in room")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
