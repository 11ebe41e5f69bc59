package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

type SignInRequest struct {
	Name     string `json:"name"`
	IDSuffix string `json:"idSuffix"`
	Password string `json:"password"`
}

type User struct {
	UserID      string `json:"userId"`
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName"`
	IDSuffix    string `json:"idSuffix"`
	IsAdmin     bool   `json:"isAdmin"`
}

type SignInResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

type MeResponse struct {
	User User `json:"user"`
}

type TaxonomyEntry struct {
	EntryID   string                    `json:"entryId"`
	Location  string                    `json:"location"`
	Activity  nullable.Nullable[string] `json:"activity"`
	Option    nullable.Nullable[string] `json:"option"`
	CreatedAt time.Time                 `json:"createdAt"`
}

type TaxonomyResponse struct {
	Entries []TaxonomyEntry `json:"entries"`
}

type AddEntryRequest struct {
	Location string  `json:"location"`
	Activity *string `json:"activity,omitempty"`
	Option   *string `json:"option,omitempty"`
}

type EntryResponse struct {
	Entry TaxonomyEntry `json:"entry"`
}

type LocationsResponse struct {
	Locations []string `json:"locations"`
}

type ActivitiesResponse struct {
	Location   string   `json:"location"`
	Activities []string `json:"activities"`
}

type OptionsResponse struct {
	Location string   `json:"location"`
	Activity string   `json:"activity"`
	Options  []string `json:"options"`
}

type Bulletin struct {
	BulletinID string    `json:"bulletinId"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}

type BulletinsResponse struct {
	Bulletins []Bulletin `json:"bulletins"`
}

type PostBulletinRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type BulletinResponse struct {
	Bulletin Bulletin `json:"bulletin"`
}

type SubmitRegistrationRequest struct {
	Location     string              `json:"location"`
	Activity     string              `json:"activity"`
	Option       *string             `json:"option,omitempty"`
	Phone        string              `json:"phone"`
	Participants int                 `json:"participants"`
	TripDate     *openapi_types.Date `json:"tripDate,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

type Registration struct {
	RegistrationID string                    `json:"registrationId"`
	UserID         string                    `json:"userId"`
	Location       string                    `json:"location"`
	Activity       string                    `json:"activity"`
	Option         nullable.Nullable[string] `json:"option"`
	SubmitterName  string                    `json:"submitterName"`
	IDSuffix       string                    `json:"idSuffix"`
	Phone          string                    `json:"phone"`
	Participants   int                       `json:"participants"`
	TripDate       openapi_types.Date        `json:"tripDate"`
	Notes          nullable.Nullable[string] `json:"notes"`
	CreatedAt      time.Time                 `json:"createdAt"`
}

type RegistrationResponse struct {
	Registration Registration `json:"registration"`
}

type RegistrationsResponse struct {
	Registrations []Registration `json:"registrations"`
}

func nullableString(p *string) nullable.Nullable[string] {
	if p == nil {
		return nullable.NewNullNullable[string]()
	}
	return nullable.NewNullableWithValue(*p)
}

func userFromDomain(u domain.User) User {
	return User{
		UserID:      string(u.ID),
		LoginID:     string(u.LoginID),
		DisplayName: u.DisplayName,
		IDSuffix:    u.IDSuffix,
		IsAdmin:     u.IsAdmin,
	}
}

func entryFromDomain(e domain.TaxonomyEntry) TaxonomyEntry {
	return TaxonomyEntry{
		EntryID:   string(e.ID),
		Location:  e.Location,
		Activity:  nullableString(e.Activity),
		Option:    nullableString(e.Option),
		CreatedAt: e.CreatedAt,
	}
}

func bulletinFromDomain(b domain.Bulletin) Bulletin {
	return Bulletin{
		BulletinID: string(b.ID),
		Title:      b.Title,
		Body:       b.Body,
		CreatedAt:  b.CreatedAt,
	}
}

func registrationFromDomain(r domain.Registration) Registration {
	return Registration{
		RegistrationID: string(r.ID),
		UserID:         string(r.UserID),
		Location:       r.Location,
		Activity:       r.Activity,
		Option:         nullableString(r.Option),
		SubmitterName:  r.SubmitterName,
		IDSuffix:       r.IDSuffix,
		Phone:          r.Phone,
		Participants:   r.Participants,
		TripDate:       openapi_types.Date{Time: r.TripDate},
		Notes:          nullableString(r.Notes),
		CreatedAt:      r.CreatedAt,
	}
}

func registrationsFromDomain(rs []domain.Registration) []Registration {
	out := make([]Registration, 0, len(rs))
	for _, r := range rs {
		out = append(out, registrationFromDomain(r))
	}
	return out
}
