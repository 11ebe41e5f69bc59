package taxonomy

import (
	"errors"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

var (
	ErrUnknownLocation  = errors.New("unknown location")
	ErrUnknownActivity  = errors.New("activity not offered at location")
	ErrUnknownOption    = errors.New("option not offered for activity")
	ErrOptionRequired   = errors.New("option required")
	ErrOptionNotAllowed = errors.New("activity has no options")
)

// Selection is the chosen (location, activity, option) triple of a registration form.
//
// Changing an upstream field clears everything below it: a combination that was valid can
// become invalid as soon as the location or activity changes.
type Selection struct {
	Location string
	Activity string
	Option   string
}

// WithLocation selects location. Activity and option are cleared when the location changes.
func (s Selection) WithLocation(location string) Selection {
	if location == s.Location {
		return s
	}
	return Selection{Location: location}
}

// WithActivity selects activity. The option is cleared when the activity changes.
func (s Selection) WithActivity(activity string) Selection {
	if activity == s.Activity {
		return s
	}
	return Selection{Location: s.Location, Activity: activity}
}

// WithOption selects option.
func (s Selection) WithOption(option string) Selection {
	s.Option = option
	return s
}

// Validate checks the selection against entries.
//
// The location must exist and offer the activity. When the pair has options one of them must be
// chosen; when it has none the option must be empty.
func (s Selection) Validate(entries []domain.TaxonomyEntry) error {
	if !contains(Locations(entries), s.Location) {
		return ErrUnknownLocation
	}
	if !contains(ActivitiesFor(entries, s.Location), s.Activity) {
		return ErrUnknownActivity
	}
	opts := OptionsFor(entries, s.Location, s.Activity)
	switch {
	case len(opts) == 0 && s.Option != "":
		return ErrOptionNotAllowed
	case len(opts) > 0 && s.Option == "":
		return ErrOptionRequired
	case len(opts) > 0 && !contains(opts, s.Option):
		return ErrUnknownOption
	}
	return nil
}
