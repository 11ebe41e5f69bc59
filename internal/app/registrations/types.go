package registrations

import "time"

type SubmitInput struct {
	Location string
	Activity string
	Option   *string

	Phone        string
	Participants int
	// TripDate is a calendar date; the zero value means it was not provided.
	TripDate time.Time
	Notes    *string
}
