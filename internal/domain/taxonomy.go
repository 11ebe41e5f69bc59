package domain

import "time"

// TaxonomyEntry is one node of the location → activity → option tree.
//
// Activity == nil marks a location-only entry; Option == nil (with Activity set) marks an
// activity-only entry under its location.
type TaxonomyEntry struct {
	ID       EntryID
	Location string
	Activity *string
	Option   *string

	CreatedAt time.Time
}
