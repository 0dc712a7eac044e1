package convert

import (
	"sort"

	"github.com/emersion/go-ical"

	"calconv/internal/calendar"
)

// occurrenceLayout renders without leading zeros and with a lowercase
// meridiem, e.g. "Tue Mar 3, 2026 9:05am".
const occurrenceLayout = "Mon Jan 2, 2006 3:04pm"

// expandOccurrences materializes, orders and formats the first
// MaxOccurrences instances of the calendar's events. Instances without a
// concrete start/end time of day (all-day values) are excluded rather than
// reported as errors. The sort on start instants is stable, so equal starts
// keep expansion emission order.
func expandOccurrences(cal *ical.Calendar, opts Options) []Occurrence {
	spans := calendar.Expand(cal, opts.fallbackZone(), opts.MaxOccurrences, opts.Logger)

	kept := spans[:0]
	for _, span := range spans {
		if span.Start.DateOnly || span.End.DateOnly || span.Start.Time.IsZero() || span.End.Time.IsZero() {
			opts.Logger.Debug("skipping occurrence without a concrete date-time pair")
			continue
		}
		kept = append(kept, span)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Time.Before(kept[j].Start.Time)
	})
	if len(kept) > opts.MaxOccurrences {
		kept = kept[:opts.MaxOccurrences]
	}

	occurrences := make([]Occurrence, 0, len(kept))
	for _, span := range kept {
		occurrences = append(occurrences, Occurrence{
			From: formatEndpoint(span.Start),
			To:   formatEndpoint(span.End),
		})
	}
	return occurrences
}

// formatEndpoint renders one side of an occurrence in the instant's own
// zone. Floating instants get the literal label "Floating"; English
// abbreviations and the 12-hour clock are fixed, not locale-driven.
func formatEndpoint(e calendar.Endpoint) string {
	zone := e.Zone
	if e.Floating || zone == "" {
		zone = "Floating"
	}
	return e.Time.Format(occurrenceLayout) + " (" + zone + ")"
}
