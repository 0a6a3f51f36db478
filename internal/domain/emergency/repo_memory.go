package emergency

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryRepo keeps the session's patients in process memory.
type MemoryRepo struct {
	mu       sync.RWMutex
	patients map[uuid.UUID]*Patient
	order    []uuid.UUID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (r *MemoryRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, exists := r.patients[p.ID]; exists {
		return fmt.Errorf("patient %s already exists", p.ID)
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	r.patients[p.ID] = p.Clone()
	r.order = append(r.order, p.ID)
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (r *MemoryRepo) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[p.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	r.patients[p.ID] = p.Clone()
	return nil
}

// List returns the most recent tickets first.
func (r *MemoryRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := len(r.order)
	var items []*Patient
	for i := total - 1 - offset; i >= 0 && len(items) < limit; i-- {
		items = append(items, r.patients[r.order[i]].Clone())
	}
	return items, total, nil
}

func (r *MemoryRepo) ListByStatus(_ context.Context, statuses ...Status) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := lo.FilterMap(r.order, func(id uuid.UUID, _ int) (*Patient, bool) {
		p := r.patients[id]
		if len(statuses) > 0 && !lo.Contains(statuses, p.Status) {
			return nil, false
		}
		return p.Clone(), true
	})
	return items, nil
}
