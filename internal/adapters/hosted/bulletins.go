package hosted

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
)

type bulletinRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// BulletinRepo implements bulletinrepo.Repository over the bulletins collection.
type BulletinRepo struct {
	c *Client
}

func NewBulletinRepo(c *Client) *BulletinRepo { return &BulletinRepo{c: c} }

func (r *BulletinRepo) List(ctx context.Context) ([]bulletinrepo.Bulletin, error) {
	var rows []bulletinRow
	resp, err := r.c.Rest(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc,id.desc").
		SetResult(&rows).
		Get(RestPath(Bulletins))
	if err := r.c.Check("list bulletins", resp, err); err != nil {
		return nil, err
	}
	out := make([]bulletinrepo.Bulletin, 0, len(rows))
	for _, row := range rows {
		out = append(out, bulletinrepo.Bulletin{
			ID:        domain.BulletinID(row.ID),
			Title:     row.Title,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *BulletinRepo) Insert(ctx context.Context, b bulletinrepo.Bulletin) error {
	resp, err := r.c.Rest(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(bulletinRow{ID: string(b.ID), Title: b.Title, Body: b.Body, CreatedAt: b.CreatedAt}).
		Post(RestPath(Bulletins))
	if err := r.c.Check("insert bulletin", resp, err); err != nil {
		if IsConflict(err) {
			return bulletinrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *BulletinRepo) Delete(ctx context.Context, id domain.BulletinID) error {
	resp, err := r.c.Rest(ctx).
		SetQueryParam("id", "eq."+string(id)).
		Delete(RestPath(Bulletins))
	return r.c.Check("delete bulletin", resp, err)
}
