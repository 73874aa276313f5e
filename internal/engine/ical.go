package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-lunar/internal/config"
)

// EncodeICS renders the report's moon events as an iCalendar feed.
// UIDs are derived from kind and instant so re-exports update events in
// place instead of duplicating them.
func (g *Generator) EncodeICS(report *YearReport) ([]byte, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: suggest a refresh interval.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	var now time.Time
	if g.Clock != nil {
		now = g.Clock.Now()
	} else {
		now = RealClock{}.Now()
	}
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, e := range mergeEvents(report.NewMoons, report.FullMoons) {
		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, eventUID(e))
		event.Props.SetText(config.PropSummary, eventSummary(e))

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDateTime(e.Instant.UTC())
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	// An empty VCALENDAR fails encoding; serve the stub so clients keep the feed.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// mergeEvents interleaves two chronological lists into one.
func mergeEvents(a, b []MoonEvent) []MoonEvent {
	out := make([]MoonEvent, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Instant.Before(a[i].Instant) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

func eventSummary(e MoonEvent) string {
	switch {
	case e.Kind == NewMoon && e.SecondInMonth:
		return config.SummaryBlackMoon
	case e.Kind == NewMoon:
		return config.SummaryNewMoon
	case e.SecondInMonth:
		return config.SummaryBlueMoon
	default:
		return config.SummaryFullMoon
	}
}

func eventUID(e MoonEvent) string {
	hash := sha256.Sum256([]byte(e.Kind.String() + "|" + e.Instant.UTC().Format(time.RFC3339)))
	return fmt.Sprintf(config.FormatEventUID, e.Kind, hash[:config.EventUIDHashLength], config.ICalDomain)
}
