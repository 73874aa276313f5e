package ephemeris

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
	"gopkg.in/yaml.v3"
)

// fixtureFile is the YAML layout of a phase table.
//
//	new_moons:
//	  - 2020-01-24T21:42:00Z
//	full_moons:
//	  - 2020-01-10T19:21:00Z
type fixtureFile struct {
	NewMoons  []time.Time `yaml:"new_moons"`
	FullMoons []time.Time `yaml:"full_moons"`
}

// Fixture answers queries from precomputed tables of phase instants.
// Queries that fall outside a table return ErrOutOfRange rather than guessing.
type Fixture struct {
	name      string
	newMoons  []time.Time
	fullMoons []time.Time
}

// NewFixture builds a Fixture from unordered instant lists.
func NewFixture(name string, newMoons, fullMoons []time.Time) *Fixture {
	return &Fixture{
		name:      name,
		newMoons:  sortedUTC(newMoons),
		fullMoons: sortedUTC(fullMoons),
	}
}

// LoadFixture reads a YAML phase table from path.
func LoadFixture(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFixtureLoad, err)
	}
	defer func() { _ = f.Close() }()

	fx, err := DecodeFixture(path, f)
	if err != nil {
		return nil, err
	}

	slog.Debug(config.MsgFixtureLoaded,
		config.LogKeyComponent, config.CompEphemeris,
		config.LogKeyFile, path,
		config.LogKeyNewMoons, len(fx.newMoons),
		config.LogKeyFullMoons, len(fx.fullMoons),
	)
	return fx, nil
}

// DecodeFixture parses a YAML phase table.
func DecodeFixture(name string, r io.Reader) (*Fixture, error) {
	var file fixtureFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFixtureParse, err)
	}
	if len(file.NewMoons) == 0 && len(file.FullMoons) == 0 {
		return nil, fmt.Errorf("%s: %s holds no instants", config.ErrFixtureParse, name)
	}
	return NewFixture(name, file.NewMoons, file.FullMoons), nil
}

func (f *Fixture) Name() string { return "fixture:" + f.name }

func (f *Fixture) PreviousNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	// First index with instant >= t; the answer sits just before it.
	i := sort.Search(len(f.newMoons), func(i int) bool { return !f.newMoons[i].Before(t) })
	if i == 0 || i == len(f.newMoons) {
		// The last entry only proves there is nothing in between when a later one exists.
		return time.Time{}, outOfRange(t)
	}
	return f.newMoons[i-1], nil
}

func (f *Fixture) NextNewMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return f.next(ctx, f.newMoons, t)
}

func (f *Fixture) NextFullMoon(ctx context.Context, t time.Time) (time.Time, error) {
	return f.next(ctx, f.fullMoons, t)
}

func (f *Fixture) next(ctx context.Context, table []time.Time, t time.Time) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	i := sort.Search(len(table), func(i int) bool { return table[i].After(t) })
	if i == 0 || i == len(table) {
		return time.Time{}, outOfRange(t)
	}
	return table[i], nil
}

func outOfRange(t time.Time) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, t.UTC().Format(time.RFC3339))
}

func sortedUTC(in []time.Time) []time.Time {
	out := make([]time.Time, len(in))
	for i, t := range in {
		out[i] = t.UTC()
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}
