// Package audit records moderation command outcomes.
package audit

import (
	"context"
	"time"

	"github.com/campuscommons/campuscommons/internal/platform/id"
	"github.com/campuscommons/campuscommons/internal/services/spaces/storage"
)

// OutcomeOK marks a command that validated and committed.
const OutcomeOK = "OK"

// Emitter appends moderation audit events to a store.
type Emitter struct {
	store       storage.AuditStore
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewEmitter creates a new audit emitter.
func NewEmitter(store storage.AuditStore) *Emitter {
	return &Emitter{store: store, clock: time.Now, idGenerator: id.NewID}
}

// Emit records an audit event. It is a no-op when the store is nil.
func (e *Emitter) Emit(ctx context.Context, event storage.AuditEvent) error {
	if e == nil || e.store == nil {
		return nil
	}
	if event.ID == "" {
		generator := e.idGenerator
		if generator == nil {
			generator = id.NewID
		}
		generated, err := generator()
		if err != nil {
			return err
		}
		event.ID = generated
	}
	if event.CreatedAt.IsZero() {
		if e.clock == nil {
			event.CreatedAt = time.Now().UTC()
		} else {
			event.CreatedAt = e.clock().UTC()
		}
	}
	return e.store.AppendAuditEvent(ctx, event)
}
