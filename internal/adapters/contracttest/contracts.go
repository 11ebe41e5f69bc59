package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	bulletinrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
	idempotencyport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/idempotency"
	permissionrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/permissionrepo"
	registrationrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/registrationrepo"
	sessionstoreport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/sessionstore"
	taxonomyrepoport "github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

type CleanupFunc = func()

type TaxonomyRepoFactory func(t *testing.T) (taxonomyrepoport.Repository, CleanupFunc)
type RegistrationRepoFactory func(t *testing.T) (registrationrepoport.Repository, CleanupFunc)
type BulletinRepoFactory func(t *testing.T) (bulletinrepoport.Repository, CleanupFunc)
type PermissionRepoFactory func(t *testing.T) (permissionrepoport.Repository, CleanupFunc)
type SessionStoreFactory func(t *testing.T) (sessionstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func strPtr(s string) *string { return &s }

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		Subject:  domain.UserID(uuid.NewString()),
		Method:   "POST",
		Route:    "/registrations",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "sha-1"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get other fingerprint: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func RunTaxonomyRepo(t *testing.T, newRepo TaxonomyRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Unix(1000, 0).UTC()
	loc := "Loc " + uuid.NewString()[:8]
	locID := domain.EntryID(uuid.NewString())
	actID := domain.EntryID(uuid.NewString())
	optID := domain.EntryID(uuid.NewString())

	for _, e := range []taxonomyrepoport.Entry{
		{ID: optID, Location: loc, Activity: strPtr("Hike"), Option: strPtr("Short"), CreatedAt: base.Add(2 * time.Second)},
		{ID: locID, Location: loc, CreatedAt: base},
		{ID: actID, Location: loc, Activity: strPtr("Hike"), CreatedAt: base.Add(time.Second)},
	} {
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("Insert(%s): %v", e.ID, err)
		}
	}

	if err := repo.Insert(ctx, taxonomyrepoport.Entry{ID: locID, Location: loc, CreatedAt: base}); !errors.Is(err, taxonomyrepoport.ErrAlreadyExists) {
		t.Fatalf("Insert duplicate err=%v, want %v", err, taxonomyrepoport.ErrAlreadyExists)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	mine := filterEntries(list, loc)
	if len(mine) != 3 {
		t.Fatalf("List returned %d entries for %q, want 3: %#v", len(mine), loc, mine)
	}
	if mine[0].ID != locID || mine[1].ID != actID || mine[2].ID != optID {
		t.Fatalf("unexpected ordering: %#v", mine)
	}
	if mine[0].Activity != nil || mine[0].Option != nil {
		t.Fatalf("location-only entry grew fields: %#v", mine[0])
	}
	if mine[1].Activity == nil || *mine[1].Activity != "Hike" || mine[1].Option != nil {
		t.Fatalf("activity-only entry mismatch: %#v", mine[1])
	}
	if mine[2].Option == nil || *mine[2].Option != "Short" {
		t.Fatalf("option entry mismatch: %#v", mine[2])
	}
	if !mine[0].CreatedAt.Equal(base) {
		t.Fatalf("CreatedAt=%v, want %v", mine[0].CreatedAt, base)
	}

	if err := repo.Delete(ctx, optID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, optID); err != nil {
		t.Fatalf("Delete missing err=%v, want nil", err)
	}
	list, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	if got := filterEntries(list, loc); len(got) != 2 {
		t.Fatalf("List after delete returned %d entries, want 2", len(got))
	}
}

func filterEntries(es []taxonomyrepoport.Entry, location string) []taxonomyrepoport.Entry {
	var out []taxonomyrepoport.Entry
	for _, e := range es {
		if e.Location == location {
			out = append(out, e)
		}
	}
	return out
}

func RunRegistrationRepo(t *testing.T, newRepo RegistrationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Unix(2000, 0).UTC()
	trip := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	alice := domain.UserID(uuid.NewString())
	bob := domain.UserID(uuid.NewString())

	mk := func(user domain.UserID, at time.Time) registrationrepoport.Registration {
		return registrationrepoport.Registration{
			ID:            domain.RegistrationID(uuid.NewString()),
			UserID:        user,
			LoginID:       domain.LoginID("login-" + string(user)),
			Location:      "Taroko",
			Activity:      "Gorge walk",
			SubmitterName: "Alice",
			IDSuffix:      "1234",
			Phone:         "0912345678",
			Participants:  2,
			TripDate:      trip,
			CreatedAt:     at,
		}
	}

	first := mk(alice, base)
	first.Option = strPtr("Shakadang")
	first.Notes = strPtr("vegetarian lunch")
	second := mk(alice, base.Add(time.Minute))
	other := mk(bob, base.Add(30*time.Second))

	for _, r := range []registrationrepoport.Registration{first, second, other} {
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s): %v", r.ID, err)
		}
	}
	if err := repo.Insert(ctx, first); !errors.Is(err, registrationrepoport.ErrAlreadyExists) {
		t.Fatalf("Insert duplicate err=%v, want %v", err, registrationrepoport.ErrAlreadyExists)
	}

	mine, err := repo.ListByUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != second.ID || mine[1].ID != first.ID {
		t.Fatalf("unexpected ListByUser result: %#v", mine)
	}
	got := mine[1]
	if got.Option == nil || *got.Option != "Shakadang" || got.Notes == nil || *got.Notes != "vegetarian lunch" {
		t.Fatalf("optional fields not round-tripped: %#v", got)
	}
	if mine[0].Option != nil || mine[0].Notes != nil {
		t.Fatalf("nil optional fields came back set: %#v", mine[0])
	}
	if !got.TripDate.Equal(trip) || got.Participants != 2 || got.Phone != "0912345678" || got.IDSuffix != "1234" {
		t.Fatalf("scalar fields not round-tripped: %#v", got)
	}

	none, err := repo.ListByUser(ctx, domain.UserID(uuid.NewString()))
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByUser(unknown) = %d records, err=%v; want 0, nil", len(none), err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	var order []domain.RegistrationID
	for _, r := range all {
		switch r.ID {
		case first.ID, second.ID, other.ID:
			order = append(order, r.ID)
		}
	}
	want := []domain.RegistrationID{second.ID, other.ID, first.ID}
	if len(order) != len(want) {
		t.Fatalf("ListAll missing records: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ListAll order=%v, want %v", order, want)
		}
	}
}

func RunBulletinRepo(t *testing.T, newRepo BulletinRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	base := time.Unix(3000, 0).UTC()
	older := bulletinrepoport.Bulletin{ID: domain.BulletinID(uuid.NewString()), Title: "Older", Body: "first", CreatedAt: base}
	newer := bulletinrepoport.Bulletin{ID: domain.BulletinID(uuid.NewString()), Title: "Newer", Body: "second", CreatedAt: base.Add(time.Hour)}

	if err := repo.Insert(ctx, older); err != nil {
		t.Fatalf("Insert older: %v", err)
	}
	if err := repo.Insert(ctx, newer); err != nil {
		t.Fatalf("Insert newer: %v", err)
	}
	if err := repo.Insert(ctx, older); !errors.Is(err, bulletinrepoport.ErrAlreadyExists) {
		t.Fatalf("Insert duplicate err=%v, want %v", err, bulletinrepoport.ErrAlreadyExists)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	idx := map[domain.BulletinID]int{}
	for i, b := range list {
		idx[b.ID] = i
	}
	io, okO := idx[older.ID]
	in, okN := idx[newer.ID]
	if !okO || !okN || in > io {
		t.Fatalf("unexpected List ordering: %#v", list)
	}
	if list[in].Title != "Newer" || list[in].Body != "second" || !list[in].CreatedAt.Equal(newer.CreatedAt) {
		t.Fatalf("bulletin not round-tripped: %#v", list[in])
	}

	if err := repo.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, older.ID); err != nil {
		t.Fatalf("Delete missing err=%v, want nil", err)
	}
	list, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List after delete: %v", err)
	}
	for _, b := range list {
		if b.ID == older.ID {
			t.Fatalf("deleted bulletin still listed")
		}
	}
}

func RunPermissionRepo(t *testing.T, newRepo PermissionRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	login := domain.LoginID(uuid.NewString() + "@signup.invalid")
	if ok, err := repo.IsAdmin(ctx, login); err != nil || ok {
		t.Fatalf("IsAdmin(missing) = %v, %v; want false, nil", ok, err)
	}
	if err := repo.SetAdmin(ctx, login, true); err != nil {
		t.Fatalf("SetAdmin(true): %v", err)
	}
	if ok, err := repo.IsAdmin(ctx, login); err != nil || !ok {
		t.Fatalf("IsAdmin after grant = %v, %v; want true, nil", ok, err)
	}
	if err := repo.SetAdmin(ctx, login, true); err != nil {
		t.Fatalf("SetAdmin(true) again: %v", err)
	}
	if err := repo.SetAdmin(ctx, login, false); err != nil {
		t.Fatalf("SetAdmin(false): %v", err)
	}
	if ok, err := repo.IsAdmin(ctx, login); err != nil || ok {
		t.Fatalf("IsAdmin after revoke = %v, %v; want false, nil", ok, err)
	}
}

func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Now().UTC().Truncate(time.Second)
	sess := sessionstoreport.Session{
		Token:         uuid.NewString(),
		UserID:        domain.UserID(uuid.NewString()),
		LoginID:       domain.LoginID("0041@signup.invalid"),
		ProviderToken: "provider-token",
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Hour),
	}

	if _, err := store.Get(ctx, sess.Token, now); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get(missing) err=%v, want %v", err, sessionstoreport.ErrNotFound)
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, sess.Token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != sess.UserID || got.LoginID != sess.LoginID || got.ProviderToken != sess.ProviderToken {
		t.Fatalf("unexpected session: %#v", got)
	}
	if !got.ExpiresAt.Equal(sess.ExpiresAt) {
		t.Fatalf("ExpiresAt=%v, want %v", got.ExpiresAt, sess.ExpiresAt)
	}

	if _, err := store.Get(ctx, sess.Token, sess.ExpiresAt); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get(at expiry) err=%v, want %v", err, sessionstoreport.ErrNotFound)
	}

	live := sess
	live.Token = uuid.NewString()
	if err := store.Put(ctx, live); err != nil {
		t.Fatalf("Put live: %v", err)
	}
	if err := store.Delete(ctx, live.Token); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, live.Token); err != nil {
		t.Fatalf("Delete missing err=%v, want nil", err)
	}
	if _, err := store.Get(ctx, live.Token, now); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get(deleted) err=%v, want %v", err, sessionstoreport.ErrNotFound)
	}
}
