// Package entity defines the audit event record.
package entity

import "time"

// Event is an append-only audit record. UserID is nil for anonymous events.
type Event struct {
	ID        string
	Timestamp time.Time
	Event     string
	UserID    *string
	Details   map[string]any
}
