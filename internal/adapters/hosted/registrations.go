package hosted

import (
	"context"
	"time"

	"github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
)

type noteRow struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	LoginID       string     `json:"login_id"`
	Location      string     `json:"location"`
	Activity      string     `json:"activity"`
	Option        *string    `json:"option"`
	SubmitterName string     `json:"submitter_name"`
	IDSuffix      string     `json:"id_suffix"`
	Phone         string     `json:"phone"`
	Participants  int        `json:"participants"`
	TripDate      types.Date `json:"trip_date"`
	Notes         *string    `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RegistrationRepo implements registrationrepo.Repository over the notes collection.
type RegistrationRepo struct {
	c *Client
}

func NewRegistrationRepo(c *Client) *RegistrationRepo { return &RegistrationRepo{c: c} }

func (r *RegistrationRepo) Insert(ctx context.Context, rec registrationrepo.Registration) error {
	row := noteRow{
		ID:            string(rec.ID),
		UserID:        string(rec.UserID),
		LoginID:       string(rec.LoginID),
		Location:      rec.Location,
		Activity:      rec.Activity,
		Option:        rec.Option,
		SubmitterName: rec.SubmitterName,
		IDSuffix:      rec.IDSuffix,
		Phone:         rec.Phone,
		Participants:  rec.Participants,
		TripDate:      types.Date{Time: rec.TripDate},
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
	}
	resp, err := r.c.Rest(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post(RestPath(Notes))
	if err := r.c.Check("insert registration", resp, err); err != nil {
		if IsConflict(err) {
			return registrationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *RegistrationRepo) ListByUser(ctx context.Context, userID domain.UserID) ([]registrationrepo.Registration, error) {
	return r.list(ctx, "list registrations by user", map[string]string{"user_id": "eq." + string(userID)})
}

func (r *RegistrationRepo) ListAll(ctx context.Context) ([]registrationrepo.Registration, error) {
	return r.list(ctx, "list registrations", nil)
}

func (r *RegistrationRepo) list(ctx context.Context, op string, filters map[string]string) ([]registrationrepo.Registration, error) {
	var rows []noteRow
	resp, err := r.c.Rest(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc,id.desc").
		SetQueryParams(filters).
		SetResult(&rows).
		Get(RestPath(Notes))
	if err := r.c.Check(op, resp, err); err != nil {
		return nil, err
	}
	out := make([]registrationrepo.Registration, 0, len(rows))
	for _, row := range rows {
		out = append(out, registrationrepo.Registration{
			ID:            domain.RegistrationID(row.ID),
			UserID:        domain.UserID(row.UserID),
			LoginID:       domain.LoginID(row.LoginID),
			Location:      row.Location,
			Activity:      row.Activity,
			Option:        row.Option,
			SubmitterName: row.SubmitterName,
			IDSuffix:      row.IDSuffix,
			Phone:         row.Phone,
			Participants:  row.Participants,
			TripDate:      row.TripDate.Time,
			Notes:         row.Notes,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}
