package hosted

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

type entryRow struct {
	ID        string    `json:"id"`
	Location  string    `json:"location"`
	Activity  *string   `json:"activity"`
	Option    *string   `json:"option"`
	CreatedAt time.Time `json:"created_at"`
}

// TaxonomyRepo implements taxonomyrepo.Repository over the activity_hierarchy collection.
type TaxonomyRepo struct {
	c *Client
}

func NewTaxonomyRepo(c *Client) *TaxonomyRepo { return &TaxonomyRepo{c: c} }

func (r *TaxonomyRepo) List(ctx context.Context) ([]taxonomyrepo.Entry, error) {
	var rows []entryRow
	resp, err := r.c.Rest(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.asc,id.asc").
		SetResult(&rows).
		Get(RestPath(ActivityHierarchy))
	if err := r.c.Check("list taxonomy", resp, err); err != nil {
		return nil, err
	}
	out := make([]taxonomyrepo.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, taxonomyrepo.Entry{
			ID:        domain.EntryID(row.ID),
			Location:  row.Location,
			Activity:  row.Activity,
			Option:    row.Option,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *TaxonomyRepo) Insert(ctx context.Context, e taxonomyrepo.Entry) error {
	resp, err := r.c.Rest(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(entryRow{
			ID:        string(e.ID),
			Location:  e.Location,
			Activity:  e.Activity,
			Option:    e.Option,
			CreatedAt: e.CreatedAt,
		}).
		Post(RestPath(ActivityHierarchy))
	if err := r.c.Check("insert taxonomy entry", resp, err); err != nil {
		if IsConflict(err) {
			return taxonomyrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *TaxonomyRepo) Delete(ctx context.Context, id domain.EntryID) error {
	resp, err := r.c.Rest(ctx).
		SetQueryParam("id", "eq."+string(id)).
		Delete(RestPath(ActivityHierarchy))
	return r.c.Check("delete taxonomy entry", resp, err)
}
