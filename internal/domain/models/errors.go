package models

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidDateTime = errors.New("invalid birth date or time")
	ErrInvalidLocation = errors.New("invalid coordinates")
	ErrEphemeris       = errors.New("ephemeris evaluation failed")
	ErrOutOfRange      = errors.New("date outside supported ephemeris range")
	ErrHouseSystem     = errors.New("house division failed")
)
