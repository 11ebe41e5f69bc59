package registrationrepo

import (
	"testing"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/testutil"
	registrationrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
)

func TestContract_PostgresRegistrationRepo(t *testing.T) {
	pool := testutil.OpenMigratedPool(t)

	contracttest.RunRegistrationRepo(t, func(t *testing.T) (registrationrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(pool), nil
	})
}
