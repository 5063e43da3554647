package leave

import "errors"

var (
	ErrNotFound            = errors.New("leave request not found")
	ErrTypeNotFound        = errors.New("leave type not found")
	ErrNotDraft            = errors.New("request is not a draft")
	ErrInsufficientBalance = errors.New("insufficient leave balance")
	ErrOverlap             = errors.New("overlapping leave request")
)
