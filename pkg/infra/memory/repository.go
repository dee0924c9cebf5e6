// Package memory is an in-process run repository used when no Firestore
// project is configured. History does not survive a restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

// Repository is a mutex-guarded in-memory run store
type Repository struct {
	mu      sync.RWMutex
	records map[string]*model.RunRecord
}

// New creates an empty in-memory repository
func New() *Repository {
	return &Repository{
		records: make(map[string]*model.RunRecord),
	}
}

// Put stores or overwrites a run record
func (r *Repository) Put(_ context.Context, record *model.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *record
	clone.Steps = append([]model.StepResult(nil), record.Steps...)
	r.records[record.ID] = &clone
	return nil
}

// Get retrieves a run record by ID. Returns nil without error when the
// record does not exist.
func (r *Repository) Get(_ context.Context, id string) (*model.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	clone.Steps = append([]model.StepResult(nil), record.Steps...)
	return &clone, nil
}

// List returns the most recent run records, newest first
func (r *Repository) List(_ context.Context, limit int) ([]*model.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.RunRecord, 0, len(r.records))
	for _, record := range r.records {
		clone := *record
		clone.Steps = append([]model.StepResult(nil), record.Steps...)
		records = append(records, &clone)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
