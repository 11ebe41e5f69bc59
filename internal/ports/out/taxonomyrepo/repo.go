package taxonomyrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Entry is the persistence shape of the activity_hierarchy collection.
type Entry struct {
	ID       domain.EntryID
	Location string
	// Activity is nil for a location-only entry.
	Activity *string
	// Option is nil for a location-only or activity-only entry.
	Option *string

	CreatedAt time.Time
}

// Repository provides access to taxonomy entries.
//
// List returns entries ordered by CreatedAt ascending (ID breaks ties).
type Repository interface {
	List(ctx context.Context) ([]Entry, error)
	Insert(ctx context.Context, e Entry) error
	// Delete removes the entry with the given id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id domain.EntryID) error
}
