package taxonomyrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

// Repo is an in-memory implementation of taxonomyrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.EntryID]taxonomyrepo.Entry
}

// NewRepo returns a repository holding the given entries.
func NewRepo(seed ...taxonomyrepo.Entry) *Repo {
	r := &Repo{m: make(map[domain.EntryID]taxonomyrepo.Entry, len(seed))}
	for _, e := range seed {
		r.m[e.ID] = cloneEntry(e)
	}
	return r
}

func (r *Repo) List(ctx context.Context) ([]taxonomyrepo.Entry, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]taxonomyrepo.Entry, 0, len(r.m))
	for _, e := range r.m {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repo) Insert(ctx context.Context, e taxonomyrepo.Entry) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[e.ID]; ok {
		return taxonomyrepo.ErrAlreadyExists
	}
	r.m[e.ID] = cloneEntry(e)
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.EntryID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}

func cloneEntry(e taxonomyrepo.Entry) taxonomyrepo.Entry {
	out := e
	out.Activity = cloneStringPtr(e.Activity)
	out.Option = cloneStringPtr(e.Option)
	return out
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
