// Package seed loads the fallback-mode dataset: a nested YAML taxonomy flattened into
// taxonomy entries, plus bulletins and administrator logins.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/bulletinrepo"
	"github.com/Overland-East-Bay/activity-signup-api/internal/ports/out/taxonomyrepo"
)

//go:embed default.yaml
var defaultYAML []byte

// seedNamespace makes seeded ids stable across restarts.
var seedNamespace = uuid.MustParse("2b7f3c1d-8e4a-4f6b-9c2d-1a5e7b9d3f80")

// Epoch is the CreatedAt of the first seeded record; later records are one second apart.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type file struct {
	Taxonomy []struct {
		Location   string `yaml:"location"`
		Activities []struct {
			Name    string   `yaml:"name"`
			Options []string `yaml:"options"`
		} `yaml:"activities"`
	} `yaml:"taxonomy"`
	Bulletins []struct {
		Title string `yaml:"title"`
		Body  string `yaml:"body"`
	} `yaml:"bulletins"`
	Admins []struct {
		Name     string `yaml:"name"`
		IDSuffix string `yaml:"id_suffix"`
	} `yaml:"admins"`
}

// Dataset is the flattened seed, ready to hand to the memory repositories.
type Dataset struct {
	Entries   []taxonomyrepo.Entry
	Bulletins []bulletinrepo.Bulletin
	Admins    []domain.LoginID
}

// Load reads the dataset at path, or the embedded default when path is empty.
func Load(path string) (Dataset, error) {
	if path == "" {
		return Parse(defaultYAML)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading seed file: %w", err)
	}
	return Parse(b)
}

// Parse decodes a YAML dataset.
//
// Every location yields a location-only entry, every activity an activity-only entry, and every
// option its own entry, so the flattened list keeps the tree shape.
func Parse(b []byte) (Dataset, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Dataset{}, fmt.Errorf("decoding seed: %w", err)
	}

	var ds Dataset
	tick := 0
	next := func() time.Time {
		t := Epoch.Add(time.Duration(tick) * time.Second)
		tick++
		return t
	}

	for _, loc := range f.Taxonomy {
		location := domain.NormalizeHumanName(loc.Location)
		if location == "" {
			return Dataset{}, fmt.Errorf("seed taxonomy: empty location")
		}
		ds.Entries = append(ds.Entries, taxonomyrepo.Entry{
			ID:        entryID(location),
			Location:  location,
			CreatedAt: next(),
		})
		for _, act := range loc.Activities {
			activity := domain.NormalizeHumanName(act.Name)
			if activity == "" {
				return Dataset{}, fmt.Errorf("seed taxonomy: empty activity under %q", location)
			}
			ds.Entries = append(ds.Entries, taxonomyrepo.Entry{
				ID:        entryID(location, activity),
				Location:  location,
				Activity:  &activity,
				CreatedAt: next(),
			})
			for i, opt := range act.Options {
				option := domain.NormalizeHumanName(opt)
				if option == "" {
					return Dataset{}, fmt.Errorf("seed taxonomy: empty option under %q/%q", location, activity)
				}
				a := activity
				ds.Entries = append(ds.Entries, taxonomyrepo.Entry{
					ID:        entryID(location, activity, option, fmt.Sprint(i)),
					Location:  location,
					Activity:  &a,
					Option:    &option,
					CreatedAt: next(),
				})
			}
		}
	}

	seen := make(map[domain.EntryID]struct{}, len(ds.Entries))
	for _, e := range ds.Entries {
		if _, ok := seen[e.ID]; ok {
			return Dataset{}, fmt.Errorf("seed taxonomy: %q listed twice", entryPath(e))
		}
		seen[e.ID] = struct{}{}
	}

	for i, b := range f.Bulletins {
		ds.Bulletins = append(ds.Bulletins, bulletinrepo.Bulletin{
			ID:        domain.BulletinID(uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("bulletin/%d", i))).String()),
			Title:     b.Title,
			Body:      b.Body,
			CreatedAt: next(),
		})
	}

	for _, a := range f.Admins {
		name := domain.NormalizeHumanName(a.Name)
		if name == "" || !identity.ValidSuffix(a.IDSuffix) {
			return Dataset{}, fmt.Errorf("seed admins: invalid admin %q/%q", a.Name, a.IDSuffix)
		}
		ds.Admins = append(ds.Admins, domain.LoginID(identity.Address(name, a.IDSuffix)))
	}

	return ds, nil
}

// entryID derives a stable id from the entry's path. Parts are length-prefixed so that labels
// containing the separator cannot collide with a deeper path.
func entryID(path ...string) domain.EntryID {
	key := "taxonomy"
	for _, p := range path {
		key += fmt.Sprintf("/%d:%s", len(p), p)
	}
	return domain.EntryID(uuid.NewSHA1(seedNamespace, []byte(key)).String())
}

func entryPath(e taxonomyrepo.Entry) string {
	p := e.Location
	if e.Activity != nil {
		p += " / " + *e.Activity
	}
	if e.Option != nil {
		p += " / " + *e.Option
	}
	return p
}
