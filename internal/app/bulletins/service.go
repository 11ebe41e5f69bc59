package bulletins

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
	clockport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/clock"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
)

type Service struct {
	repo  bulletinrepo.Repository
	perms permissionrepo.Repository
	clk   clockport.Clock

	newBulletinID func() domain.BulletinID

	// MaxTitleLen bounds the title length in characters.
	MaxTitleLen int
}

func NewService(repo bulletinrepo.Repository, perms permissionrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo:  repo,
		perms: perms,
		clk:   clk,
		newBulletinID: func() domain.BulletinID {
			return domain.BulletinID(uuid.NewString())
		},
		MaxTitleLen: 120,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Bulletin, error) {
	bs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Bulletin, 0, len(bs))
	for _, b := range bs {
		out = append(out, toDomain(b))
	}
	return out, nil
}

func (s *Service) Post(ctx context.Context, caller domain.Principal, title, body string) (domain.Bulletin, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return domain.Bulletin{}, err
	}

	title = domain.NormalizeHumanName(title)
	body = strings.TrimSpace(body)
	details := map[string]any{}
	switch {
	case title == "":
		details["title"] = "must be non-empty"
	case s.MaxTitleLen > 0 && len([]rune(title)) > s.MaxTitleLen:
		details["title"] = "too long"
	}
	if body == "" {
		details["body"] = "must be non-empty"
	}
	if len(details) > 0 {
		return domain.Bulletin{}, &Error{Status: 422, Code: "VALIDATION_ERROR", Message: "invalid bulletin", Details: details}
	}

	b := bulletinrepo.Bulletin{
		ID:        s.newBulletinID(),
		Title:     title,
		Body:      body,
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.Insert(ctx, b); err != nil {
		if errors.Is(err, bulletinrepo.ErrAlreadyExists) {
			return domain.Bulletin{}, &Error{Status: 409, Code: "BULLETIN_ID_CONFLICT", Message: "bulletin id conflict"}
		}
		return domain.Bulletin{}, err
	}
	return toDomain(b), nil
}

// Delete removes a bulletin. Deleting a missing id succeeds.
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id domain.BulletinID, confirmed bool) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if !confirmed {
		return &Error{Status: 422, Code: "CONFIRMATION_REQUIRED", Message: "deleting a bulletin requires confirm=true"}
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

func toDomain(b bulletinrepo.Bulletin) domain.Bulletin {
	return domain.Bulletin{ID: b.ID, Title: b.Title, Body: b.Body, CreatedAt: b.CreatedAt}
}
