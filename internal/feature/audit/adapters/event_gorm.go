// Package adapters はauditフィーチャーの永続化実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"kurukshetra_backend/internal/feature/audit/domain/entity"
	"kurukshetra_backend/internal/feature/audit/usecase"
)

// maxListLimit caps List regardless of the requested limit.
const maxListLimit = 500

// eventModel is the audit_events row. Details are stored as JSON text.
type eventModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Timestamp time.Time `gorm:"index;not null"`
	Event     string    `gorm:"size:64;index;not null"`
	UserID    *string   `gorm:"size:32;index"`
	Details   string    `gorm:"type:text"`
}

func (eventModel) TableName() string { return "audit_events" }

// GormModels returns the models to migrate for the audit sink.
func GormModels() []any {
	return []any{&eventModel{}}
}

// eventGorm はusecase.SinkのGORM実装です。
type eventGorm struct {
	db *gorm.DB
}

var _ usecase.Sink = (*eventGorm)(nil)

// NewEventGorm creates the relational audit sink.
func NewEventGorm(db *gorm.DB) *eventGorm {
	return &eventGorm{db: db}
}

// Save appends e. There is no uniqueness beyond the generated ID.
func (r *eventGorm) Save(ctx context.Context, e *entity.Event) error {
	details := ""
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = string(b)
	}
	m := &eventModel{ID: e.ID, Timestamp: e.Timestamp, Event: e.Event, UserID: e.UserID, Details: details}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// List returns up to limit events, newest first.
func (r *eventGorm) List(ctx context.Context, limit int) ([]entity.Event, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	var rows []eventModel
	if err := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}

	out := make([]entity.Event, 0, len(rows))
	for _, m := range rows {
		e := entity.Event{ID: m.ID, Timestamp: m.Timestamp, Event: m.Event, UserID: m.UserID}
		if m.Details != "" {
			if err := json.Unmarshal([]byte(m.Details), &e.Details); err != nil {
				slog.Warn("corrupt audit details", "id", m.ID, "error", err)
			}
		}
		out = append(out, e)
	}
	return out, nil
}
