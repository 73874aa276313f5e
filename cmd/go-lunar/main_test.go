package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/ephemeris"
)

const fixturePath = "../../internal/ephemeris/testdata/moons_2020.yaml"

func run(t *testing.T, args ...string) (int, string) {
	t.Helper()
	code, stdout, _ := runCapture(t, args...)
	return code, stdout
}

func runCapture(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runMain(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunMain_GeneratesFiles(t *testing.T) {
	dir := t.TempDir()
	html := filepath.Join(dir, "moons.html")
	ics := filepath.Join(dir, "moons.ics")

	code, out := run(t, "2020", "--fixture", fixturePath, "-o", html, "--ics="+ics, "--lang", "fr", "-S")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.Contains(t, out, html)

	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<!DOCTYPE html>")
	assert.NotContains(t, string(page), "<footer>", "succinct mode")

	info, err := os.Stat(html)
	require.NoError(t, err)
	assert.Equal(t, config.FilePermOutput, info.Mode().Perm())

	feed, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.Equal(t, 25, strings.Count(string(feed), "BEGIN:VEVENT"))
}

func TestRunMain_YearFlag(t *testing.T) {
	html := filepath.Join(t.TempDir(), "out.html")

	code, _ := run(t, "-y", "2020", "--fixture", fixturePath, "-o", html, "-i", "moon.png")
	require.Equal(t, config.ExitCodeSuccess, code)

	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), `id="mask_01_01"`)
	assert.Contains(t, string(page), `src="moon.png"`)
}

func TestRunMain_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"MissingYear", nil, config.ErrYearRequired},
		{"NotAnInteger", []string{"twenty"}, config.ErrYearNotInteger},
		{"OutOfRange", []string{"99999"}, config.ErrInvalidYear},
		{"TooManyArgs", []string{"2020", "2021"}, "accepts at most 1 arg"},
		{"UnknownFlag", []string{"2020", "--nope"}, "unknown flag"},
		{"NoWorkers", []string{"2020", "--workers", "0"}, config.ErrWorkers},
		{"ServeMissingYear", []string{"serve"}, config.ErrYearRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCapture(t, tt.args...)
			assert.Equal(t, config.ExitCodeError, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, tt.wantErr)
			assert.Contains(t, errOut, "Usage:")
		})
	}
}

// TestRunMain_ErrorsUseOwnWriter runs twice in one process: the failure of
// the second run must land in the second run's stderr.
func TestRunMain_ErrorsUseOwnWriter(t *testing.T) {
	html := filepath.Join(t.TempDir(), "out.html")
	code, _, firstErr := runCapture(t, "2020", "--fixture", fixturePath, "-o", html)
	require.Equal(t, config.ExitCodeSuccess, code)

	code, _, secondErr := runCapture(t)
	assert.Equal(t, config.ExitCodeError, code)
	assert.Contains(t, secondErr, config.ErrYearRequired)
	assert.NotContains(t, firstErr, config.ErrYearRequired)
}

func TestRunMain_RuntimeErrorIsLogged(t *testing.T) {
	code, out, errOut := runCapture(t, "2020", "--fixture", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, config.ExitCodeError, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, config.ErrAppFailed)
	assert.Contains(t, errOut, config.ErrFixtureLoad)
	assert.NotContains(t, errOut, "Usage:")
}

func TestRunMain_DefaultICSName(t *testing.T) {
	fixture, err := filepath.Abs(fixturePath)
	require.NoError(t, err)
	t.Chdir(t.TempDir())

	code, _ := run(t, "2020", "--fixture", fixture, "--ics")
	require.Equal(t, config.ExitCodeSuccess, code)
	assert.FileExists(t, "lunar_calendar_2020.html")
	assert.FileExists(t, "lunar_calendar_2020.ics")
}

func TestRunMain_Version(t *testing.T) {
	for _, flag := range []string{"--" + config.FlagVersion, "-" + config.FlagShortVersion} {
		code, out := run(t, flag)
		assert.Equal(t, config.ExitCodeSuccess, code)
		assert.Equal(t, versionString(), out)
		assert.Contains(t, out, config.AppName)
		assert.Contains(t, out, config.Commit)
	}
}

func TestRunMain_UnsupportedLanguage(t *testing.T) {
	html := filepath.Join(t.TempDir(), "out.html")
	code, _ := run(t, "2020", "--fixture", fixturePath, "-o", html, "--lang", "tlh")
	assert.Equal(t, config.ExitCodeError, code)
	assert.NoFileExists(t, html)
}

func TestRunMain_EnvironmentDefaults(t *testing.T) {
	t.Setenv(config.EnvPrefix+"FIXTURE", fixturePath)
	t.Setenv(config.EnvPrefix+"LANG", "fr")
	html := filepath.Join(t.TempDir(), "out.html")

	code, _ := run(t, "2020", "-o", html)
	require.Equal(t, config.ExitCodeSuccess, code)

	page, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Août")
}

func TestSelectGateway(t *testing.T) {
	gw, err := selectGateway(config.Settings{})
	require.NoError(t, err)
	assert.IsType(t, &ephemeris.Meeus{}, gw)

	gw, err = selectGateway(config.Settings{EphemerisURL: "https://ephemeris.example.org/api"})
	require.NoError(t, err)
	assert.IsType(t, &ephemeris.HTTP{}, gw)

	// A fixture wins over a remote service.
	gw, err = selectGateway(config.Settings{Fixture: fixturePath, EphemerisURL: "https://ephemeris.example.org"})
	require.NoError(t, err)
	assert.IsType(t, &ephemeris.Fixture{}, gw)

	_, err = selectGateway(config.Settings{EphemerisURL: "ftp://ephemeris.example.org"})
	assert.Error(t, err)
}

func TestRenderOptions(t *testing.T) {
	o := &options{settings: config.Settings{MoonImage: "default.png"}}
	assert.Empty(t, o.renderOptions().MoonImage)

	o.moon = true
	assert.Equal(t, "default.png", o.renderOptions().MoonImage)

	o.image = "custom.png"
	assert.Equal(t, "custom.png", o.renderOptions().MoonImage)
}
