// Package render turns a YearReport into the HTML calendar document.
//
// A template holds placeholders of the form <!-- KEY -->. Fragments builds
// the full key/value mapping once, and Substitute replaces every placeholder
// in a single pass, so fragment values are never rescanned.
package render

import (
	_ "embed"
	"fmt"
	"html"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
	"github.com/tartampluch/go-lunar/internal/i18n"
	"github.com/tartampluch/go-lunar/internal/phase"
)

//go:embed template.html
var defaultTemplate string

// Options controls the document layout.
type Options struct {
	// MoonImage, when set, draws each day as a mask over this image instead
	// of a vector disc.
	MoonImage string

	// Succinct leaves the event lists and the footer out.
	Succinct bool

	// Template is the path of an HTML template. Empty selects the embedded one.
	Template string
}

// EventLine is one entry of an event list.
type EventLine struct {
	Text          string
	SecondInMonth bool
}

// DayMarkup returns the markup drawing the moon of one day.
func DayMarkup(d engine.DayDescriptor, opts Options) string {
	if opts.MoonImage == "" {
		return fmt.Sprintf(`<svg width="100%%" viewBox="0 0 %s %s">%s</svg>`,
			num(config.ViewBoxSize), num(config.ViewBoxSize),
			phase.RenderPath(d.Lunation, config.ViewBoxSize))
	}

	id := fmt.Sprintf(config.FormatMaskID, int(d.Month), d.Day)
	return fmt.Sprintf(`<svg width="0" height="0"><mask id="%s" maskUnits="objectBoundingBox" maskContentUnits="objectBoundingBox">%s</mask></svg>`+
		`<img src="%s" width="90%%" style="mask: url(#%s); -webkit-mask: url(#%s);"></img>`,
		id, phase.RenderMask(d.Lunation), html.EscapeString(opts.MoonImage), id, id)
}

// DayClass returns the CSS classes of a day cell.
func DayClass(d engine.DayDescriptor) string {
	classes := []string{config.ClassDay}
	if d.NewMoon {
		classes = append(classes, config.ClassNewMoon)
	}
	if d.FullMoon {
		classes = append(classes, config.ClassFullMoon)
	}
	if d.BlackMoon {
		classes = append(classes, config.ClassBlackMoon)
	}
	if d.BlueMoon {
		classes = append(classes, config.ClassBlueMoon)
	}
	return strings.Join(classes, " ")
}

// EventLines formats events as "DD Mon HH:MM" in UTC with a localized
// month abbreviation.
func EventLines(events []engine.MoonEvent, tr *i18n.Translator) []EventLine {
	out := make([]EventLine, len(events))
	for i, e := range events {
		t := e.Instant.UTC()
		out[i] = EventLine{
			Text:          fmt.Sprintf(config.FormatEventDate, t.Day(), abbr(tr, t.Month()), t.Format(config.FormatEventTime)),
			SecondInMonth: e.SecondInMonth,
		}
	}
	return out
}

// eventSpans renders lines as spans; repeated moons get repeatedClass.
func eventSpans(lines []EventLine, repeatedClass string) string {
	var b strings.Builder
	for _, l := range lines {
		class := ""
		if l.SecondInMonth {
			class = repeatedClass
		}
		fmt.Fprintf(&b, `<span class="%s">%s</span>`, class, html.EscapeString(l.Text))
	}
	return b.String()
}

// Fragments builds the value of every placeholder for report.
func Fragments(report *engine.YearReport, opts Options, tr *i18n.Translator) map[string]string {
	frags := map[string]string{
		config.KeyYear:  strconv.Itoa(report.Year),
		config.KeyTitle: html.EscapeString(tr.Msg(config.TKeyTitle)),
	}

	for m := time.January; m <= time.December; m++ {
		frags[fmt.Sprintf(config.FormatMonthKey, int(m))] = html.EscapeString(name(tr, m))
	}
	for _, d := range report.Days {
		frags[fmt.Sprintf(config.FormatMoonKey, int(d.Month), d.Day)] = DayMarkup(d, opts)
		frags[fmt.Sprintf(config.FormatDayClassKey, int(d.Month), d.Day)] = DayClass(d)
	}

	frags[config.KeyGrid] = grid(report, opts, tr)

	newMoons := eventSpans(EventLines(report.NewMoons, tr), config.ClassBlackMoon)
	fullMoons := eventSpans(EventLines(report.FullMoons, tr), config.ClassBlueMoon)
	frags[config.KeyNewMoons] = newMoons
	frags[config.KeyFullMoons] = fullMoons

	if opts.Succinct {
		frags[config.KeyNewMoonsSection] = ""
		frags[config.KeyFullMoonsSection] = ""
		frags[config.KeyFooterSection] = ""
	} else {
		frags[config.KeyNewMoonsSection] = section(tr.Msg(config.TKeyNewMoons), newMoons)
		frags[config.KeyFullMoonsSection] = section(tr.Msg(config.TKeyFullMoons), fullMoons)
		frags[config.KeyFooterSection] = "<footer>" + html.EscapeString(tr.Msg(config.TKeyFooter)) + "</footer>"
	}
	return frags
}

// Substitute replaces every <!-- KEY --> of tpl with its fragment.
// Unknown placeholders are left untouched.
func Substitute(tpl string, fragments map[string]string) string {
	keys := slices.Sorted(maps.Keys(fragments))
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf(config.FormatPlaceholder, k), fragments[k])
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// Document renders the complete HTML document of report.
func Document(report *engine.YearReport, opts Options, tr *i18n.Translator) ([]byte, error) {
	tpl := defaultTemplate
	if opts.Template != "" {
		raw, err := os.ReadFile(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrTemplateRead, err)
		}
		tpl = string(raw)
	}

	doc := Substitute(tpl, Fragments(report, opts, tr))

	slog.Debug(config.MsgDocRendered,
		config.LogKeyComponent, config.CompRender,
		config.LogKeyYear, report.Year,
		config.LogKeyLang, tr.Lang(),
		config.LogKeySizeBytes, len(doc),
	)
	return []byte(doc), nil
}

// grid lays the year out as one row per month and one column per day.
func grid(report *engine.YearReport, opts Options, tr *i18n.Translator) string {
	var b strings.Builder
	b.WriteString(`<table class="calendar"><tr><th></th>`)
	for day := 1; day <= config.GridColumns; day++ {
		fmt.Fprintf(&b, "<th>%d</th>", day)
	}
	b.WriteString("</tr>")

	i := 0
	for m := time.January; m <= time.December; m++ {
		fmt.Fprintf(&b, `<tr><th class="month">%s</th>`, html.EscapeString(name(tr, m)))
		for day := 1; day <= config.GridColumns; day++ {
			if i < len(report.Days) && report.Days[i].Month == m && report.Days[i].Day == day {
				d := report.Days[i]
				fmt.Fprintf(&b, `<td class="%s">%s</td>`, DayClass(d), DayMarkup(d, opts))
				i++
				continue
			}
			b.WriteString("<td></td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func section(title, body string) string {
	return fmt.Sprintf(`<section class="events"><h2>%s</h2><p>%s</p></section>`, html.EscapeString(title), body)
}

func name(tr *i18n.Translator, m time.Month) string {
	if tr == nil {
		return m.String()
	}
	return tr.MonthName(m)
}

func abbr(tr *i18n.Translator, m time.Month) string {
	if tr == nil {
		return m.String()[:3]
	}
	return tr.MonthAbbr(m)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
