package protocol

import "errors"

// Error taxonomy for the codec layer. Registry conflicts are fatal at
// startup; everything else is per-envelope and non-fatal. Callers match
// with errors.Is; call sites wrap with enough context (type id, message
// id, byte lengths) to diagnose against the sender.
var (
	ErrDuplicateIdentifier = errors.New("duplicate type identifier")
	ErrUnknownType         = errors.New("unknown message type")
	ErrHeaderTooShort      = errors.New("header too short")
	ErrBodyLengthMismatch  = errors.New("body length mismatch")
	ErrEnvelopeTooLarge    = errors.New("envelope too large")
	ErrEncode              = errors.New("encode failed")
)
