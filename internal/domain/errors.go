package domain

import "errors"

var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrParticipantNotFound       = errors.New("participant not found")
	ErrMatchNotFound             = errors.New("match not found")
	ErrParticipantAlreadyMatched = errors.New("participant already matched")
	ErrAlreadyRegistered         = errors.New("participant already registered")
	ErrNotWhitelisted            = errors.New("email not in whitelist")
	ErrMatchingBusy              = errors.New("matching is busy")
)
