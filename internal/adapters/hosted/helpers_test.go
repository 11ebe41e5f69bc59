package hosted_test

import (
	"time"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
)

func registrationRecord(id string, option *string) registrationrepo.Registration {
	return registrationrepo.Registration{
		ID:            domain.RegistrationID(id),
		UserID:        "u-1",
		LoginID:       "0041@signup.invalid",
		Location:      "Taroko",
		Activity:      "Gorge walk",
		Option:        option,
		SubmitterName: "A",
		IDSuffix:      "0000",
		Phone:         "0912345678",
		Participants:  2,
		TripDate:      time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Unix(100, 0).UTC(),
	}
}
