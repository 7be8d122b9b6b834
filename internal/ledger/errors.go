package ledger

import "errors"

var (
	ErrDuplicateParticipant     = errors.New("participant already exists")
	ErrParticipantNotFound      = errors.New("participant not found")
	ErrInvalidParticipantSet    = errors.New("participants must match the ledger exactly")
	ErrInsufficientParticipants = errors.New("at least two participants are required")
	ErrSerialization            = errors.New("malformed ledger document")
	ErrIndexOutOfRange          = errors.New("transaction index out of range")
	ErrInvalidName              = errors.New("participant name must not be empty")
	ErrInvalidAmount            = errors.New("amount must be a positive number")
	ErrInvalidWeight            = errors.New("weight must be positive")
)
