// File: /state/status.go
package state

import (
	"inkwell-api/store"
)

// Status mirrors the three phases of an asynchronous mutation (pending,
// fulfilled, rejected) into loading/error fields on the owning cache.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// humanMessage maps a failed operation to the message stored on the cache.
// Index-missing errors never get here; they are absorbed by the fetch
// fallback. The raw error text is the last resort.
func humanMessage(err error) string {
	switch store.CodeOf(err) {
	case store.PermissionDenied, store.Unauthenticated:
		return "You do not have permission to perform this action."
	case store.Unavailable:
		return "The service is temporarily unavailable. Check your connection and try again."
	case store.ResourceExhausted:
		return "Too many requests. Please try again in a moment."
	case store.NotFound:
		return "The requested item no longer exists."
	default:
		return err.Error()
	}
}
