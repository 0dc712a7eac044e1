package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

// Endpoint is one side of a materialized occurrence. Floating endpoints are
// anchored in the expansion's fallback location for ordering only; the zone
// label stays empty. Date-only endpoints have no usable time of day.
type Endpoint struct {
	Time     time.Time
	Zone     string
	Floating bool
	DateOnly bool
}

// Span is one concrete instance of a (possibly recurring) event.
type Span struct {
	Start Endpoint
	End   Endpoint
}

// Expand materializes up to max instances per event, honoring RRULE, RDATE,
// EXDATE and RECURRENCE-ID overrides. A rule the expander cannot parse
// contributes only the base instance. The result is unordered and unfiltered;
// the caller decides what to do with date-only spans.
func Expand(cal *ical.Calendar, fallback *time.Location, max int, logger *logrus.Logger) []Span {
	if fallback == nil {
		fallback = time.UTC
	}
	if logger == nil {
		logger = logrus.New()
	}
	if max <= 0 {
		return nil
	}

	overrides := make(map[string]map[int64]*ical.Component)
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		rid, ok := parsePropTime(comp.Props.Get(ical.PropRecurrenceID), fallback)
		if !ok {
			continue
		}
		uid := propValue(comp, ical.PropUID)
		if overrides[uid] == nil {
			overrides[uid] = make(map[int64]*ical.Component)
		}
		overrides[uid][rid.t.Unix()] = comp
	}

	var spans []Span
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		if comp.Props.Get(ical.PropRecurrenceID) != nil {
			continue
		}
		uid := propValue(comp, ical.PropUID)
		spans = append(spans, expandEvent(comp, overrides[uid], fallback, max, logger)...)
	}
	return spans
}

func expandEvent(comp *ical.Component, overrides map[int64]*ical.Component, fallback *time.Location, max int, logger *logrus.Logger) []Span {
	start, ok := parsePropTime(comp.Props.Get(ical.PropDateTimeStart), fallback)
	if !ok {
		return nil
	}
	duration := eventDuration(comp, start, fallback)

	starts := occurrenceStarts(comp, start, fallback, max, logger)

	var spans []Span
	for _, t := range starts {
		if override, ok := overrides[t.Unix()]; ok {
			if span, ok := overrideSpan(override, fallback); ok {
				spans = append(spans, span)
			}
			continue
		}
		spans = append(spans, Span{
			Start: Endpoint{Time: t, Zone: start.zone, Floating: start.floating, DateOnly: start.dateOnly},
			End:   Endpoint{Time: t.Add(duration), Zone: start.zone, Floating: start.floating, DateOnly: start.dateOnly},
		})
	}
	return spans
}

// occurrenceStarts resolves the first max start instants of the event,
// deduplicated and in emission order.
func occurrenceStarts(comp *ical.Component, start timeValue, fallback *time.Location, max int, logger *logrus.Logger) []time.Time {
	rruleProp := comp.Props.Get(ical.PropRecurrenceRule)
	hasRDate := len(comp.Props.Values(ical.PropRecurrenceDates)) > 0
	if rruleProp == nil && !hasRDate {
		return []time.Time{start.t}
	}

	var set rrule.Set
	if rruleProp != nil {
		opt, err := rrule.StrToROption(rruleProp.Value)
		if err != nil {
			logger.WithError(err).WithField("rrule", rruleProp.Value).
				Debug("unparseable recurrence rule, keeping base instance only")
			return []time.Time{start.t}
		}
		opt.Dtstart = start.t
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			logger.WithError(err).WithField("rrule", rruleProp.Value).
				Debug("invalid recurrence rule, keeping base instance only")
			return []time.Time{start.t}
		}
		set.RRule(r)
	} else {
		set.DTStart(start.t)
		set.RDate(start.t)
	}

	loc := start.t.Location()
	for _, prop := range comp.Props.Values(ical.PropRecurrenceDates) {
		for _, value := range strings.Split(prop.Value, ",") {
			if v, ok := parseTimeValue(value, prop.Params.Get(ical.ParamTimezoneID), loc); ok {
				set.RDate(v.t.In(loc))
			}
		}
	}
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		for _, value := range strings.Split(prop.Value, ",") {
			if v, ok := parseTimeValue(value, prop.Params.Get(ical.ParamTimezoneID), loc); ok {
				set.ExDate(v.t.In(loc))
			}
		}
	}

	seen := make(map[int64]bool, max)
	var starts []time.Time
	next := set.Iterator()
	for len(starts) < max {
		t, ok := next()
		if !ok {
			break
		}
		if seen[t.Unix()] {
			continue
		}
		seen[t.Unix()] = true
		starts = append(starts, t)
	}
	return starts
}

func overrideSpan(comp *ical.Component, fallback *time.Location) (Span, bool) {
	start, ok := parsePropTime(comp.Props.Get(ical.PropDateTimeStart), fallback)
	if !ok {
		return Span{}, false
	}
	duration := eventDuration(comp, start, fallback)
	return Span{
		Start: Endpoint{Time: start.t, Zone: start.zone, Floating: start.floating, DateOnly: start.dateOnly},
		End:   Endpoint{Time: start.t.Add(duration), Zone: start.zone, Floating: start.floating, DateOnly: start.dateOnly},
	}, true
}

func eventDuration(comp *ical.Component, start timeValue, fallback *time.Location) time.Duration {
	if prop := comp.Props.Get(ical.PropDuration); prop != nil {
		if d, err := parseISODuration(prop.Value); err == nil {
			return d
		}
	}
	if end, ok := parsePropTime(comp.Props.Get(ical.PropDateTimeEnd), fallback); ok {
		if d := end.t.Sub(start.t); d > 0 {
			return d
		}
	}
	return 0
}

func propValue(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}
