package services

import "errors"

// Sentinel errors for the bet lifecycle. Adapters map these onto their
// protocol's logical error codes; none of them should surface as a raw
// transport error on a provider channel.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateBet        = errors.New("duplicate bet")
	ErrNotFound            = errors.New("not found")
	ErrAlreadySettled      = errors.New("bet already settled")
	ErrOddsChanged         = errors.New("odds changed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
