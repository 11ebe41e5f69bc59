package registrationrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
)

// Repo is an in-memory implementation of registrationrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.RegistrationID]registrationrepo.Registration
}

// NewRepo returns a repository holding the given records.
func NewRepo(seed ...registrationrepo.Registration) *Repo {
	r := &Repo{m: make(map[domain.RegistrationID]registrationrepo.Registration, len(seed))}
	for _, rec := range seed {
		r.m[rec.ID] = cloneRegistration(rec)
	}
	return r
}

func (r *Repo) Insert(ctx context.Context, rec registrationrepo.Registration) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[rec.ID]; ok {
		return registrationrepo.ErrAlreadyExists
	}
	r.m[rec.ID] = cloneRegistration(rec)
	return nil
}

func (r *Repo) ListByUser(ctx context.Context, userID domain.UserID) ([]registrationrepo.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registrationrepo.Registration, 0)
	for _, v := range r.m {
		if v.UserID == userID {
			out = append(out, cloneRegistration(v))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *Repo) ListAll(ctx context.Context) ([]registrationrepo.Registration, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]registrationrepo.Registration, 0, len(r.m))
	for _, v := range r.m {
		out = append(out, cloneRegistration(v))
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(rs []registrationrepo.Registration) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID > rs[j].ID
		}
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}

func cloneRegistration(r registrationrepo.Registration) registrationrepo.Registration {
	out := r
	if r.Option != nil {
		v := *r.Option
		out.Option = &v
	}
	if r.Notes != nil {
		v := *r.Notes
		out.Notes = &v
	}
	return out
}
