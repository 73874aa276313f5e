package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings holds the runtime defaults that can be supplied through the
// environment. Command-line flags take precedence over every field.
type Settings struct {
	Language     string `env:"LANG"          envDefault:"en"`
	MoonImage    string `env:"MOON_IMAGE"    envDefault:"data/supermoon_l3_bw.png"`
	Template     string `env:"TEMPLATE"`
	Fixture      string `env:"FIXTURE"`
	EphemerisURL string `env:"EPHEMERIS_URL"`
	Workers      int    `env:"WORKERS"       envDefault:"4"`
	Port         string `env:"PORT"          envDefault:"18090"`
	Debug        bool   `env:"DEBUG"`
}

// LoadSettings reads Settings from GO_LUNAR_* environment variables.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Prefix: EnvPrefix}); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", ErrEnvParse, err)
	}
	if s.Workers < 1 {
		return Settings{}, fmt.Errorf("%s: %s: %d", ErrEnvParse, ErrWorkers, s.Workers)
	}
	return s, nil
}
