// Package messaging implements direct messages between teachers and
// students: sending, thread retrieval, per-correspondent conversation
// summaries, and the unread-to-read transition.
package messaging

import "fmt"

// ValidationError reports invalid caller input: a missing body, a missing
// recipient, or an attempt to message oneself. The caller can recover by
// correcting the request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NotFoundError reports that a referenced message or user does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ForbiddenError reports that the authenticated user does not hold the
// required relationship to the message, e.g. marking read without being
// the receiver.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}
