package permissionrepo

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Repo is an in-memory implementation of permissionrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	admins map[domain.LoginID]bool
}

// NewRepo returns a repository in which every login in admins is an administrator.
func NewRepo(admins ...domain.LoginID) *Repo {
	r := &Repo{admins: make(map[domain.LoginID]bool, len(admins))}
	for _, a := range admins {
		r.admins[a] = true
	}
	return r
}

func (r *Repo) IsAdmin(ctx context.Context, loginID domain.LoginID) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admins[loginID], nil
}

func (r *Repo) SetAdmin(ctx context.Context, loginID domain.LoginID, isAdmin bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[loginID] = isAdmin
	return nil
}
