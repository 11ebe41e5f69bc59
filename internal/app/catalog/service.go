// Package catalog serves the activity taxonomy and its administrator edits.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/taxonomy"
	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

type Service struct {
	repo  taxonomyrepo.Repository
	perms permissionrepo.Repository
	clk   clockport.Clock

	newEntryID func() domain.EntryID
}

func NewService(repo taxonomyrepo.Repository, perms permissionrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:  repo,
		perms: perms,
		clk:   clk,
		newEntryID: func() domain.EntryID {
			return domain.EntryID(uuid.NewString())
		},
	}
}

// ListEntries returns every entry, oldest first.
func (s *Service) ListEntries(ctx context.Context) ([]domain.TaxonomyEntry, error) {
	es, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.TaxonomyEntry, 0, len(es))
	for _, e := range es {
		out = append(out, toDomain(e))
	}
	return out, nil
}

func (s *Service) Locations(ctx context.Context) ([]string, error) {
	es, err := s.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.Locations(es), nil
}

func (s *Service) Activities(ctx context.Context, location string) ([]string, error) {
	es, err := s.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.ActivitiesFor(es, location), nil
}

func (s *Service) Options(ctx context.Context, location, activity string) ([]string, error) {
	es, err := s.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	return taxonomy.OptionsFor(es, location, activity), nil
}

type AddEntryInput struct {
	Location string
	Activity *string
	Option   *string
}

// AddEntry appends one entry. An option-bearing entry must belong to an existing
// (location, activity) pair.
func (s *Service) AddEntry(ctx context.Context, caller domain.Principal, in AddEntryInput) (domain.TaxonomyEntry, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.TaxonomyEntry{}, err
	}

	location := domain.NormalizeHumanName(in.Location)
	activity := domain.NormalizeOptionalName(in.Activity)
	option := domain.NormalizeOptionalName(in.Option)
	if location == "" {
		return domain.TaxonomyEntry{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid location", Details: map[string]any{"location": "must be non-empty"}}
	}
	if option != nil && activity == nil {
		return domain.TaxonomyEntry{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid option", Details: map[string]any{"option": "requires an activity"}}
	}

	if option != nil {
		es, err := s.ListEntries(ctx)
		if err != nil {
			return domain.TaxonomyEntry{}, err
		}
		if !containsString(taxonomy.ActivitiesFor(es, location), *activity) {
			return domain.TaxonomyEntry{}, &Error{
				Status:  422,
				Code:    "VALIDATION_ERROR",
				Message: "invalid option",
				Details: map[string]any{"activity": "add the activity under this location before its options"},
			}
		}
	}

	e := taxonomyrepo.Entry{
		ID:        s.newEntryID(),
		Location:  location,
		Activity:  activity,
		Option:    option,
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		if errors.Is(err, taxonomyrepo.ErrAlreadyExists) {
			return domain.TaxonomyEntry{}, &Error{Status: 409, Code: "ENTRY_ID_CONFLICT", Message: "taxonomy entry id conflict"}
		}
		return domain.TaxonomyEntry{}, err
	}
	return toDomain(e), nil
}

// DeleteEntry removes one entry by id. Deleting a missing id succeeds.
func (s *Service) DeleteEntry(ctx context.Context, caller domain.Principal, id domain.EntryID, confirmed bool) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !confirmed {
		return &Error{Status: 422, Code: "CONFIRMATION_REQUIRED", Message: "deleting a taxonomy entry requires confirm=true"}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) requireAdmin(ctx context.Context, caller domain.Principal) error {
	ok, err := s.perms.IsAdmin(ctx, caller.LoginID)
	if err != nil {
		return err
	}
	if !ok {
		return &Error{Status: 403, Code: "FORBIDDEN", Message: "administrator access required"}
	}
	return nil
}

func toDomain(e taxonomyrepo.Entry) domain.TaxonomyEntry {
	return domain.TaxonomyEntry{
		ID:        e.ID,
		Location:  e.Location,
		Activity:  e.Activity,
		Option:    e.Option,
		CreatedAt: e.CreatedAt,
	}
}

func containsString(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
