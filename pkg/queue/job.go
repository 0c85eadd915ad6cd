package queue

import (
	"context"
	"encoding/json"
	"errors"
)

// Job handles every queue message of one Type.
type Job interface {
	// Name identifies the job in logs.
	Name() string
	Type() string
	// Handle processes one payload. A nil return acknowledges the message,
	// an error schedules a retry unless it is Permanent.
	Handle(ctx context.Context, payload json.RawMessage) error
}

type messageIDKey struct{}

// MessageID returns the id of the queue message a Job is handling. The id
// stays the same across retries of that message.
func MessageID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(messageIDKey{}).(string)
	return id, ok && id != ""
}

// WithMessageID returns ctx carrying the message id read by MessageID.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, messageIDKey{}, id)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as one a retry cannot fix, such as a malformed
// payload. The message goes straight to the dead-letter list.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err, or anything it wraps, came from Permanent.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}
