// Package i18n provides the localized month names and labels of the calendar.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-lunar/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves message keys for one language.
type Translator struct {
	lang      string
	localizer *goi18n.Localizer
}

// Catalog holds every embedded locale.
type Catalog struct {
	bundle    *goi18n.Bundle
	languages []string
}

// LoadCatalog registers the embedded locale files.
// Files that do not follow the active.<lang>.json pattern are skipped.
func LoadCatalog() (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc(config.LocaleFormat, json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var langs []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocalePrefix) || !strings.HasSuffix(name, config.LocaleSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, config.LocalePrefix), config.LocaleSuffix)
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocalesDir+"/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		langs = append(langs, langCode)

		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	slices.Sort(langs)
	return &Catalog{bundle: bundle, languages: langs}, nil
}

// Languages returns the available language codes, sorted.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.languages)
}

// Translator returns a Translator for lang, a BCP 47 tag such as "fr" or "fr-CA".
// Regional variants fall back to their base language.
func (c *Catalog) Translator(lang string) (*Translator, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", config.ErrUnsupportedLang, lang, err)
	}
	base, _ := tag.Base()
	if !slices.Contains(c.languages, base.String()) {
		return nil, fmt.Errorf("%s: %q (available: %s)", config.ErrUnsupportedLang, lang, strings.Join(c.languages, ", "))
	}
	return &Translator{
		lang:      base.String(),
		localizer: goi18n.NewLocalizer(c.bundle, base.String()),
	}, nil
}

// Lang returns the resolved language code.
func (t *Translator) Lang() string {
	if t == nil {
		return ""
	}
	return t.lang
}

// Msg translates key, returning the key itself when no translation exists.
func (t *Translator) Msg(key string) string {
	if t == nil || t.localizer == nil {
		return key
	}
	msg, err := t.localizer.Localize(&goi18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// MonthName returns the full name of m.
func (t *Translator) MonthName(m time.Month) string {
	return t.Msg(fmt.Sprintf(config.FormatTKeyMonth, int(m)))
}

// MonthAbbr returns the abbreviated name of m.
func (t *Translator) MonthAbbr(m time.Month) string {
	return t.Msg(fmt.Sprintf(config.FormatTKeyMonAbbr, int(m)))
}
