package render_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/render"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func translator(t *testing.T, lang string) *i18n.Translator {
	t.Helper()
	cat, err := i18n.LoadCatalog()
	require.NoError(t, err)
	tr, err := cat.Translator(lang)
	require.NoError(t, err)
	return tr
}

func report2020(t *testing.T) *engine.YearReport {
	t.Helper()
	fx, err := ephemeris.LoadFixture("../ephemeris/testdata/moons_2020.yaml")
	require.NoError(t, err)
	report, err := (&engine.Generator{Gateway: fx, Workers: 4}).Generate(context.Background(), 2020)
	require.NoError(t, err)
	return report
}

// -----------------------------------------------------------------------------
// Substitution
// -----------------------------------------------------------------------------

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name  string
		tpl   string
		frags map[string]string
		want  string
	}{
		{
			name:  "Simple",
			tpl:   "<h1><!-- TITLE --> <!-- YEAR --></h1>",
			frags: map[string]string{"TITLE": "Moons", "YEAR": "2020"},
			want:  "<h1>Moons 2020</h1>",
		},
		{
			name:  "RepeatedPlaceholder",
			tpl:   "<!-- YEAR -->/<!-- YEAR -->",
			frags: map[string]string{"YEAR": "2020"},
			want:  "2020/2020",
		},
		{
			name:  "UnknownPlaceholderKept",
			tpl:   "<!-- NOPE --><!-- YEAR -->",
			frags: map[string]string{"YEAR": "2020"},
			want:  "<!-- NOPE -->2020",
		},
		{
			// A fragment that looks like a placeholder is not expanded again.
			name:  "SinglePass",
			tpl:   "<!-- A -->",
			frags: map[string]string{"A": "<!-- B -->", "B": "expanded"},
			want:  "<!-- B -->",
		},
		{
			name:  "EmptyFragment",
			tpl:   "a<!-- FOOTER_SECTION -->b",
			frags: map[string]string{"FOOTER_SECTION": ""},
			want:  "ab",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Substitute(tt.tpl, tt.frags))
		})
	}
}

// -----------------------------------------------------------------------------
// Day Markup
// -----------------------------------------------------------------------------

func TestDayMarkup_Vector(t *testing.T) {
	d := engine.DayDescriptor{Year: 2020, Month: time.March, Day: 9, Lunation: 0.5}
	out := render.DayMarkup(d, render.Options{})

	assert.True(t, strings.HasPrefix(out, `<svg width="100%" viewBox="0 0 100 100">`), out)
	assert.Equal(t, 2, strings.Count(out, "<path "))
	assert.Contains(t, out, `class="light"`)
	assert.Contains(t, out, `class="shadow"`)
	assert.NotContains(t, out, "mask")
}

func TestDayMarkup_Mask(t *testing.T) {
	d := engine.DayDescriptor{Year: 2020, Month: time.March, Day: 9, Lunation: 0.25}
	out := render.DayMarkup(d, render.Options{MoonImage: "img/moon.png"})

	assert.Contains(t, out, `<mask id="mask_03_09" maskUnits="objectBoundingBox" maskContentUnits="objectBoundingBox">`)
	assert.Contains(t, out, `<img src="img/moon.png" width="90%"`)
	assert.Contains(t, out, "mask: url(#mask_03_09); -webkit-mask: url(#mask_03_09);")
	assert.Contains(t, out, `class="lightMask"`)
	assert.Contains(t, out, `class="shadowMask"`)
}

func TestDayClass(t *testing.T) {
	assert.Equal(t, "day", render.DayClass(engine.DayDescriptor{}))
	assert.Equal(t, "day fullMoon blueMoon", render.DayClass(engine.DayDescriptor{FullMoon: true, BlueMoon: true}))
	assert.Equal(t, "day newMoon blackMoon", render.DayClass(engine.DayDescriptor{NewMoon: true, BlackMoon: true}))
}

// -----------------------------------------------------------------------------
// Event Lists
// -----------------------------------------------------------------------------

func TestEventLines(t *testing.T) {
	paris := time.FixedZone("CEST", 2*3600)
	events := []engine.MoonEvent{
		{Instant: time.Date(2020, 10, 1, 21, 5, 0, 0, time.UTC), Kind: engine.FullMoon},
		// Rendered in UTC whatever the instant's location.
		{Instant: time.Date(2020, 10, 31, 15, 49, 0, 0, paris), Kind: engine.FullMoon, SecondInMonth: true},
	}

	lines := render.EventLines(events, translator(t, "en"))
	assert.Equal(t, []render.EventLine{
		{Text: "01 Oct 21:05"},
		{Text: "31 Oct 13:49", SecondInMonth: true},
	}, lines)

	fr := render.EventLines(events[:1], translator(t, "fr"))
	assert.Equal(t, "01 "+translator(t, "fr").MonthAbbr(time.October)+" 21:05", fr[0].Text)
}

// -----------------------------------------------------------------------------
// Fragments & Document
// -----------------------------------------------------------------------------

func TestFragments_2020(t *testing.T) {
	report := report2020(t)
	frags := render.Fragments(report, render.Options{}, translator(t, "en"))

	assert.Equal(t, "2020", frags[config.KeyYear])
	assert.Equal(t, "Lunar Calendar", frags[config.KeyTitle])
	assert.Equal(t, "February", frags["MONTH_02"])
	assert.Contains(t, frags, "MOON_02_29")
	assert.NotContains(t, frags, "MOON_02_30")
	assert.Equal(t, "day fullMoon blueMoon", frags["DAYCLASS_10_31"])

	assert.Equal(t, 12, strings.Count(frags[config.KeyNewMoons], "<span"))
	assert.Equal(t, 13, strings.Count(frags[config.KeyFullMoons], "<span"))
	assert.Equal(t, 1, strings.Count(frags[config.KeyFullMoons], `class="blueMoon"`))
	assert.Contains(t, frags[config.KeyFullMoons], `<span class="blueMoon">31 Oct 14:49</span>`)
	assert.NotContains(t, frags[config.KeyNewMoons], `class="blackMoon"`)

	assert.Contains(t, frags[config.KeyNewMoonsSection], "New Moons")
	assert.Contains(t, frags[config.KeyFooterSection], "<footer>")

	grid := frags[config.KeyGrid]
	assert.Equal(t, 13, strings.Count(grid, "<tr>"), "header row plus one row per month")
	assert.Equal(t, 366, strings.Count(grid, `<td class="day`))
	assert.Equal(t, 12*31-366, strings.Count(grid, "<td></td>"))
}

func TestFragments_Succinct(t *testing.T) {
	report := report2020(t)
	frags := render.Fragments(report, render.Options{Succinct: true}, translator(t, "en"))

	assert.Empty(t, frags[config.KeyNewMoonsSection])
	assert.Empty(t, frags[config.KeyFullMoonsSection])
	assert.Empty(t, frags[config.KeyFooterSection])
	// The raw lists stay available to custom templates.
	assert.NotEmpty(t, frags[config.KeyFullMoons])
}

func TestFragments_MaskIDsUnique(t *testing.T) {
	report := report2020(t)
	frags := render.Fragments(report, render.Options{MoonImage: "moon.png"}, translator(t, "en"))

	grid := frags[config.KeyGrid]
	assert.Equal(t, 366, strings.Count(grid, "<mask id="))
	assert.Equal(t, 1, strings.Count(grid, `id="mask_12_31"`))
	assert.Equal(t, 1, strings.Count(grid, `id="mask_02_29"`))
}

func TestDocument(t *testing.T) {
	report := report2020(t)
	tr := translator(t, "fr")

	first, err := render.Document(report, render.Options{}, tr)
	require.NoError(t, err)
	second, err := render.Document(report, render.Options{}, tr)
	require.NoError(t, err)
	assert.Equal(t, first, second, "rendering must be deterministic")

	out := string(first)
	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, "2020")
	assert.Contains(t, out, tr.Msg(config.TKeyTitle))
	assert.NotContains(t, out, "<!-- CALENDAR_GRID -->")
	assert.NotContains(t, out, "<!-- FOOTER_SECTION -->")

	succinct, err := render.Document(report, render.Options{Succinct: true}, tr)
	require.NoError(t, err)
	assert.NotContains(t, string(succinct), "<footer>")
	assert.NotContains(t, string(succinct), `<section class="events">`)
}

func TestDocument_CustomTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.html")
	require.NoError(t, os.WriteFile(path, []byte("<p><!-- YEAR -->:<!-- MOON_10_31 --></p>"), 0o600))

	out, err := render.Document(report2020(t), render.Options{Template: path}, translator(t, "en"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<p>2020:<svg"), string(out))
}

func TestDocument_MissingTemplate(t *testing.T) {
	_, err := render.Document(report2020(t), render.Options{Template: filepath.Join(t.TempDir(), "nope.html")}, translator(t, "en"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTemplateRead)
}
