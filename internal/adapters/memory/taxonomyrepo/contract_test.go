package taxonomyrepo

import (
	"testing"

	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/contracttest"
	taxonomyrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

func TestContract_TaxonomyRepo(t *testing.T) {
	contracttest.RunTaxonomyRepo(t, func(t *testing.T) (taxonomyrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
