package permissionrepo

import (
	"context"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Repository reads and writes the per-login admin flag (user_permissions collection).
type Repository interface {
	// IsAdmin reports the admin flag for loginID. A login without a record is not an admin.
	IsAdmin(ctx context.Context, loginID domain.LoginID) (bool, error)
	// SetAdmin creates or overwrites the flag for loginID.
	SetAdmin(ctx context.Context, loginID domain.LoginID, isAdmin bool) error
}
