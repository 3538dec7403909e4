// Package dto はauditフィーチャーのレスポンス形式を定義します。
package dto

import (
	"time"

	"kurukshetra_backend/internal/feature/audit/domain/entity"
)

// EventResponse is one audit event as returned by the admin listing.
type EventResponse struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	UserID    *string        `json:"userId"`
	Details   map[string]any `json:"details,omitempty"`
}

// ListResponse wraps the listing.
type ListResponse struct {
	Events []EventResponse `json:"events"`
	Count  int             `json:"count"`
}

// FromEvents converts entities into the response body.
func FromEvents(events []entity.Event) ListResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, EventResponse{
			ID:        e.ID,
			Timestamp: e.Timestamp,
			Event:     e.Event,
			UserID:    e.UserID,
			Details:   e.Details,
		})
	}
	return ListResponse{Events: out, Count: len(out)}
}
