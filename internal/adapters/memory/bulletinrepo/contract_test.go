package bulletinrepo

import (
	"testing"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/contracttest"
	bulletinrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
)

func TestContract_BulletinRepo(t *testing.T) {
	contracttest.RunBulletinRepo(t, func(t *testing.T) (bulletinrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
