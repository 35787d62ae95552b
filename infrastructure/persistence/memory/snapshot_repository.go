package memory

import (
	"context"
	"sync"
	"time"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/aggregates"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/google/uuid"
)

// SnapshotRepository is an in-memory SnapshotRepository used in development
// and tests. Semantics mirror the DynamoDB implementation: ids are assigned
// at save time, expired snapshots read as not found, and views extend expiry.
type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*aggregates.Snapshot

	ttl           time.Duration
	viewExtension time.Duration
}

// NewSnapshotRepository creates a new in-memory snapshot repository
func NewSnapshotRepository(ttl, viewExtension time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		snapshots:     make(map[string]*aggregates.Snapshot),
		ttl:           ttl,
		viewExtension: viewExtension,
	}
}

// Save assigns the snapshot an id and expiry and stores it
func (r *SnapshotRepository) Save(ctx context.Context, snap *aggregates.Snapshot) (*aggregates.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *snap
	stored.ID = uuid.New().String()
	stored.CreatedAt = time.Now()
	stored.ExpiresAt = stored.CreatedAt.Add(r.ttl)
	stored.ViewCount = 0

	r.snapshots[stored.ID] = &stored
	return &stored, nil
}

// Load retrieves a snapshot; missing and expired ids read the same
func (r *SnapshotRepository) Load(ctx context.Context, id string) (*aggregates.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[id]
	if !ok || time.Now().After(snap.ExpiresAt) {
		return nil, pkgerrors.NewNotFoundError("snapshot")
	}

	copied := *snap
	return &copied, nil
}

// RecordView increments the view counter and extends the expiry
func (r *SnapshotRepository) RecordView(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.snapshots[id]
	if !ok {
		return pkgerrors.NewNotFoundError("snapshot")
	}

	snap.ViewCount++
	if extended := time.Now().Add(r.viewExtension); extended.After(snap.ExpiresAt) {
		snap.ExpiresAt = extended
	}
	return nil
}

// Delete removes a snapshot
func (r *SnapshotRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshots[id]; !ok {
		return pkgerrors.NewNotFoundError("snapshot")
	}
	delete(r.snapshots, id)
	return nil
}

var _ ports.SnapshotRepository = (*SnapshotRepository)(nil)
