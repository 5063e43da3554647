package workflow

import "errors"

var (
	ErrUnknownStatus     = errors.New("unknown status")
	ErrTerminalStatus    = errors.New("document is in a terminal status")
	ErrForbidden         = errors.New("actor may not act on this stage")
	ErrSelfApproval      = errors.New("document owner may not approve or reject it")
	ErrReasonRequired    = errors.New("a non-empty reason is required")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrVersionConflict   = errors.New("document was modified by another actor")
)
