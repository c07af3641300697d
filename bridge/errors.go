package bridge

import "errors"

// Error kinds surfaced by the client core. Callers match with errors.Is;
// the concrete cause is wrapped alongside.
var (
	ErrNotConnected       = errors.New("not connected to bridge")
	ErrConnectionFailed   = errors.New("bridge connection failed")
	ErrRequestFailed      = errors.New("bridge request failed")
	ErrSendFailed         = errors.New("message send failed")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrTapbackFailed      = errors.New("tapback send failed")
	ErrInvalidRecipient   = errors.New("conversation has no recipient")
)
