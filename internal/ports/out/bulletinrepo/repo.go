package bulletinrepo

import (
	"context"
	"errors"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// ErrAlreadyExists indicates a bulletin with the provided ID already exists.
var ErrAlreadyExists = errors.New("bulletin already exists")

type Bulletin struct {
	ID        domain.BulletinID
	Title     string
	Body      string
	CreatedAt time.Time
}

// Repository provides access to bulletins.
//
// List returns bulletins ordered by CreatedAt descending (ID descending breaks ties).
type Repository interface {
	List(ctx context.Context) ([]Bulletin, error)
	Insert(ctx context.Context, b Bulletin) error
	// Delete removes the bulletin with the given id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id domain.BulletinID) error
}
