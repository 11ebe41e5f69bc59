package registrationrepo

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Registration is the persistence shape of the notes collection.
type Registration struct {
	ID      domain.RegistrationID
	UserID  domain.UserID
	LoginID domain.LoginID

	Location string
	Activity string
	Option   *string

	SubmitterName string
	IDSuffix      string
	Phone         string

	Participants int
	TripDate     time.Time
	Notes        *string

	CreatedAt time.Time
}

// Repository provides access to submitted registrations. Records are never updated.
//
// List methods return records ordered by CreatedAt descending (ID descending breaks ties).
type Repository interface {
	Insert(ctx context.Context, r Registration) error
	ListByUser(ctx context.Context, userID domain.UserID) ([]Registration, error)
	ListAll(ctx context.Context) ([]Registration, error)
}
