package repository

import (
	"context"
	"sync"

	"guildkeeper/models"
)

// InviteSnapshotRepository stores the last fetched invite list per guild
type InviteSnapshotRepository struct {
	mu        sync.RWMutex
	doc       jsonDocument[map[string]models.InviteSnapshot]
	snapshots map[string]models.InviteSnapshot
}

// NewInviteSnapshotRepository loads the invite tracker document from store
func NewInviteSnapshotRepository(ctx context.Context, store DocumentStore) (*InviteSnapshotRepository, error) {
	r := &InviteSnapshotRepository{
		doc:       jsonDocument[map[string]models.InviteSnapshot]{store: store, name: InviteTrackerDocument},
		snapshots: make(map[string]models.InviteSnapshot),
	}
	if err := r.doc.load(ctx, &r.snapshots); err != nil {
		return nil, err
	}
	if r.snapshots == nil {
		r.snapshots = make(map[string]models.InviteSnapshot)
	}
	return r, nil
}

// Get returns a copy of the guild's snapshot; an unknown guild yields an
// empty snapshot
func (r *InviteSnapshotRepository) Get(ctx context.Context, guildID string) (models.InviteSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.snapshots[guildID]
	if !ok {
		return models.InviteSnapshot{}, nil
	}
	return snapshot.Clone(), nil
}

// Replace overwrites the guild's whole snapshot and flushes
func (r *InviteSnapshotRepository) Replace(ctx context.Context, guildID string, snapshot models.InviteSnapshot) error {
	if snapshot == nil {
		snapshot = models.InviteSnapshot{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[guildID] = snapshot.Clone()
	return r.doc.flush(ctx, r.snapshots)
}

// Remove deletes one invite code from the guild's snapshot. It reports
// whether the code was present; nothing is written when it was not.
func (r *InviteSnapshotRepository) Remove(ctx context.Context, guildID, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot, ok := r.snapshots[guildID]
	if !ok {
		return false, nil
	}
	if _, ok := snapshot[code]; !ok {
		return false, nil
	}

	delete(snapshot, code)
	return true, r.doc.flush(ctx, r.snapshots)
}
