package usecase

import "errors"

// ErrUnavailable is returned when an optional backend (queue, broker) is not configured.
var ErrUnavailable = errors.New("feature not configured")
