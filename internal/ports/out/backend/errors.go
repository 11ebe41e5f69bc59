// Package backend holds the error type shared by adapters that talk to the external
// data/auth collaborator.
package backend

import "fmt"

// Error is a failure reported by the external collaborator. Message carries the
// collaborator's own error text so it can be shown to the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}
