package domain

import "time"

// Registration is a submitted sign-up record. It is immutable once created.
type Registration struct {
	ID      RegistrationID
	UserID  UserID
	LoginID LoginID

	Location string
	Activity string
	Option   *string

	SubmitterName string
	IDSuffix      string
	Phone         string

	Participants int
	TripDate     time.Time // date-only semantics at the edges
	Notes        *string

	CreatedAt time.Time
}
