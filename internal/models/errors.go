package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrEventNotFound = errors.New("event not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidSeason = errors.New("invalid season")
	ErrInvalidRound  = errors.New("invalid round")
)
