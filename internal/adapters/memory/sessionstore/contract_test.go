package sessionstore

import (
	"testing"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/contracttest"
	sessionstoreport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
)

func TestContract_SessionStore(t *testing.T) {
	contracttest.RunSessionStore(t, func(t *testing.T) (sessionstoreport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
