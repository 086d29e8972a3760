package apperrors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrInsufficientTokens     = errors.New("insufficient tokens")
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrCorruptState           = errors.New("corrupt state")
	ErrMissingHistoryIndex    = errors.New("missing history index")
)
