package memory

import (
	"context"
	"sync"

	"github.com/jwalitptl/dental-admin/internal/model"
)

const defaultActivityCapacity = 500

// ActivityRing keeps the most recent entries, newest first on List
type ActivityRing struct {
	mu      sync.Mutex
	entries []*model.ActivityEntry
	next    int
	full    bool
}

func NewActivityRing(capacity int) *ActivityRing {
	if capacity <= 0 {
		capacity = defaultActivityCapacity
	}
	return &ActivityRing{entries: make([]*model.ActivityEntry, capacity)}
}

func (r *ActivityRing) Create(_ context.Context, e *model.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	r.entries[r.next] = &cp
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *ActivityRing) List(_ context.Context, limit int) ([]*model.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.next
	if r.full {
		n = len(r.entries)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*model.ActivityEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.entries)) % len(r.entries)
		cp := *r.entries[idx]
		out = append(out, &cp)
	}
	return out, nil
}
