package hosted

import (
	"context"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

type permissionRow struct {
	LoginID string `json:"login_id"`
	IsAdmin bool   `json:"is_admin"`
}

// PermissionRepo implements permissionrepo.Repository over the user_permissions collection.
type PermissionRepo struct {
	c *Client
}

func NewPermissionRepo(c *Client) *PermissionRepo { return &PermissionRepo{c: c} }

func (r *PermissionRepo) IsAdmin(ctx context.Context, loginID domain.LoginID) (bool, error) {
	var rows []permissionRow
	resp, err := r.c.Rest(ctx).
		SetQueryParam("select", "is_admin").
		SetQueryParam("login_id", "eq."+string(loginID)).
		SetResult(&rows).
		Get(RestPath(UserPermissions))
	if err := r.c.Check("read permissions", resp, err); err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].IsAdmin, nil
}

func (r *PermissionRepo) SetAdmin(ctx context.Context, loginID domain.LoginID, isAdmin bool) error {
	resp, err := r.c.Rest(ctx).
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody(permissionRow{LoginID: string(loginID), IsAdmin: isAdmin}).
		Post(RestPath(UserPermissions))
	return r.c.Check("write permissions", resp, err)
}
