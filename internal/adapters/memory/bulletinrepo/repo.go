package bulletinrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
)

// Repo is an in-memory implementation of bulletinrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.BulletinID]bulletinrepo.Bulletin
}

func NewRepo(seed ...bulletinrepo.Bulletin) *Repo {
	r := &Repo{m: make(map[domain.BulletinID]bulletinrepo.Bulletin, len(seed))}
	for _, b := range seed {
		r.m[b.ID] = b
	}
	return r
}

func (r *Repo) List(ctx context.Context) ([]bulletinrepo.Bulletin, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]bulletinrepo.Bulletin, 0, len(r.m))
	for _, b := range r.m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repo) Insert(ctx context.Context, b bulletinrepo.Bulletin) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[b.ID]; ok {
		return bulletinrepo.ErrAlreadyExists
	}
	r.m[b.ID] = b
	return nil
}

func (r *Repo) Delete(ctx context.Context, id domain.BulletinID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
	return nil
}
