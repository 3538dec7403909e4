// Package usecase implements the fire-and-forget audit recorder.
package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kurukshetra_backend/internal/feature/audit/domain/entity"
)

// defaultBuffer is the queue length used when NewRecorder gets a non-positive size.
const defaultBuffer = 256

// Sink persists audit events.
type Sink interface {
	Save(ctx context.Context, e *entity.Event) error
	List(ctx context.Context, limit int) ([]entity.Event, error)
}

// DropObserver is notified when an event is discarded.
type DropObserver interface {
	AuditDropped()
}

// Recorder queues events for a background writer. Record never blocks:
// when the queue is full or the recorder is closed the event is dropped.
type Recorder struct {
	sink    Sink
	drops   DropObserver
	now     func() time.Time
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan *entity.Event
	done   chan struct{}
}

// NewRecorder starts the background writer. drops may be nil.
func NewRecorder(sink Sink, buffer int, drops DropObserver) *Recorder {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	r := &Recorder{
		sink:    sink,
		drops:   drops,
		now:     time.Now,
		timeout: 5 * time.Second,
		queue:   make(chan *entity.Event, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record は監査イベントをキューに積みます。呼び出し元のcontextのキャンセルは書き込みに影響しません。
func (r *Recorder) Record(_ context.Context, event, userID string, details map[string]any) {
	e := &entity.Event{
		ID:        uuid.NewString(),
		Timestamp: r.now().UTC(),
		Event:     event,
		Details:   details,
	}
	if userID != "" {
		e.UserID = &userID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped(e, "closed")
		return
	}
	select {
	case r.queue <- e:
	default:
		r.dropped(e, "queue full")
	}
}

func (r *Recorder) dropped(e *entity.Event, reason string) {
	slog.Warn("audit event dropped", "event", e.Event, "reason", reason)
	if r.drops != nil {
		r.drops.AuditDropped()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.sink.Save(ctx, e); err != nil {
			slog.Error("audit write failed", "event", e.Event, "error", err)
		}
		cancel()
	}
}

// List returns the most recent events, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]entity.Event, error) {
	return r.sink.List(ctx, limit)
}

// Close stops accepting events and waits until queued events are written or ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
