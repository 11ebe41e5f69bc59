package bulletinrepo

import (
	"testing"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/testutil"
	bulletinrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
)

func TestContract_PostgresBulletinRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunBulletinRepo(t, func(t *testing.T) (bulletinrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
