package registrations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/taxonomy"
	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/export"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

type Service struct {
	repo     registrationrepo.Repository
	taxonomy taxonomyrepo.Repository
	perms    permissionrepo.Repository
	writer   export.Writer
	clk      clockport.Clock

	newRegistrationID func() domain.RegistrationID

	// MaxParticipants bounds the party size of one registration.
	MaxParticipants int
}

func NewService(repo registrationrepo.Repository, tax taxonomyrepo.Repository, perms permissionrepo.Repository, writer export.Writer, clk clockport.Clock) *Service {
	return &Service{
		repo:     repo,
		taxonomy: tax,
		perms:    perms,
		writer:   writer,
		clk:      clk,
		newRegistrationID: func() domain.RegistrationID {
			return domain.RegistrationID(uuid.NewString())
		},
		MaxParticipants: 50,
	}
}

// CheckRequired reports missing or out-of-range fields of in without consulting any repository.
func (s *Service) CheckRequired(in SubmitInput) error {
	details := map[string]any{}
	if domain.NormalizeHumanName(in.Location) == "" {
		details["location"] = "required"
	}
	if domain.NormalizeHumanName(in.Activity) == "" {
		details["activity"] = "required"
	}
	if strings.TrimSpace(in.Phone) == "" {
		details["phone"] = "required"
	}
	if in.TripDate.IsZero() {
		details["tripDate"] = "required"
	}
	if in.Participants < 1 {
		details["participants"] = "must be at least 1"
	} else if s.MaxParticipants > 0 && in.Participants > s.MaxParticipants {
		details["participants"] = fmt.Sprintf("must be at most %d", s.MaxParticipants)
	}
	if len(details) > 0 {
		return &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "missing or invalid fields", Details: details}
	}
	return nil
}

// Submit records a registration for the caller.
//
// Required fields are checked before any repository is consulted; the selection is then checked
// against the current taxonomy. Nothing is written unless both checks pass.
func (s *Service) Submit(ctx context.Context, caller domain.Principal, in SubmitInput) (domain.Registration, error) {
	if err := s.CheckRequired(in); err != nil {
		return domain.Registration{}, err
	}
	location := domain.NormalizeHumanName(in.Location)
	activity := domain.NormalizeHumanName(in.Activity)
	option := domain.NormalizeOptionalName(in.Option)
	phone := strings.TrimSpace(in.Phone)

	entries, err := s.taxonomy.List(ctx)
	if err != nil {
		return domain.Registration{}, err
	}
	sel := taxonomy.Selection{}.WithLocation(location).WithActivity(activity)
	if option != nil {
		sel = sel.WithOption(*option)
	}
	if err := sel.Validate(toTaxonomy(entries)); err != nil {
		return domain.Registration{}, selectionError(err)
	}

	var notes *string
	if in.Notes != nil {
		if n := strings.TrimSpace(*in.Notes); n != "" {
			notes = &n
		}
	}

	login := string(caller.LoginID)
	r := registrationrepo.Registration{
		ID:            s.newRegistrationID(),
		UserID:        caller.UserID,
		LoginID:       caller.LoginID,
		Location:      location,
		Activity:      activity,
		Option:        option,
		SubmitterName: identity.DisplayName(login),
		IDSuffix:      identity.IDSuffix(login),
		Phone:         phone,
		Participants:  in.Participants,
		TripDate:      in.TripDate,
		Notes:         notes,
		CreatedAt:     s.clk.Now(),
	}
	if err := s.repo.Insert(ctx, r); err != nil {
		if errors.Is(err, registrationrepo.ErrAlreadyExists) {
			return domain.Registration{}, &Error{Status: 409, Code: "REGISTRATION_ID_CONFLICT", Message: "registration id conflict"}
		}
		return domain.Registration{}, err
	}
	return toDomain(r), nil
}

// ListMine returns the caller's registrations, newest first.
func (s *Service) ListMine(ctx context.Context, caller domain.Principal) ([]domain.Registration, error) {
	rs, err := s.repo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return toDomainList(rs), nil
}

// ListAll returns every registration, newest first. Administrators only.
func (s *Service) ListAll(ctx context.Context, caller domain.Principal) ([]domain.Registration, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	rs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toDomainList(rs), nil
}

// Export writes every registration to w in the configured document format.
func (s *Service) Export(ctx context.Context, caller domain.Principal, w io.Writer) error {
	rs, err := s.ListAll(ctx, caller)
	if err != nil {
		return err
	}
	if err := s.writer.WriteRegistrations(w, rs); err != nil {
		return fmt.Errorf("export registrations: %w", err)
	}
	return nil
}

// ExportFormat reports the content type and file extension Export produces.
func (s *Service) ExportFormat() (contentType, ext string) {
	return s.writer.ContentType(), s.writer.FileExtension()
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

func selectionError(err error) error {
	field := "option"
	switch {
	case errors.Is(err, taxonomy.ErrUnknownLocation):
		field = "location"
	case errors.Is(err, taxonomy.ErrUnknownActivity):
		field = "activity"
	}
	return &Error{
		Status:  422,
		Code:    "INVALID_SELECTION",
		Message: "selection is not offered",
		Details: map[string]any{field: err.Error()},
	}
}

func toTaxonomy(es []taxonomyrepo.Entry) []domain.TaxonomyEntry {
	out := make([]domain.TaxonomyEntry, 0, len(es))
	for _, e := range es {
		out = append(out, domain.TaxonomyEntry{ID: e.ID, Location: e.Location, Activity: e.Activity, Option: e.Option, CreatedAt: e.CreatedAt})
	}
	return out
}

func toDomainList(rs []registrationrepo.Registration) []domain.Registration {
	out := make([]domain.Registration, 0, len(rs))
	for _, r := range rs {
		out = append(out, toDomain(r))
	}
	return out
}

func toDomain(r registrationrepo.Registration) domain.Registration {
	return domain.Registration{
		ID:            r.ID,
		UserID:        r.UserID,
		LoginID:       r.LoginID,
		Location:      r.Location,
		Activity:      r.Activity,
		Option:        r.Option,
		SubmitterName: r.SubmitterName,
		IDSuffix:      r.IDSuffix,
		Phone:         r.Phone,
		Participants:  r.Participants,
		TripDate:      r.TripDate,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
	}
}
