// Package calendar converts between iCalendar documents and their JSCalendar
// counterpart, and expands recurring events into concrete occurrences.
package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

const productID = "-//calconv//EN"

// Decode parses an iCalendar document. Pasted text usually arrives with bare
// newlines, so line endings are normalized to the CRLF the grammar requires.
func Decode(text string) (*ical.Calendar, error) {
	return ical.NewDecoder(strings.NewReader(crlf(text))).Decode()
}

func crlf(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}

// Encode serializes a calendar, guaranteeing VERSION and PRODID are present.
func Encode(cal *ical.Calendar) (string, error) {
	if cal.Props.Get(ical.PropVersion) == nil {
		cal.Props.SetText(ical.PropVersion, "2.0")
	}
	if cal.Props.Get(ical.PropProductID) == nil {
		cal.Props.SetText(ical.PropProductID, productID)
	}
	var buf strings.Builder
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const (
	icalDateTimeUTC = "20060102T150405Z"
	icalDateTime    = "20060102T150405"
	icalDate        = "20060102"
	localDateTime   = "2006-01-02T15:04:05"
	utcDateTime     = "2006-01-02T15:04:05Z"
)

// timeValue is a decoded DTSTART/DTEND/EXDATE value. Floating values carry
// no zone label and are anchored in the supplied fallback location for
// ordering only. Date-only values have no usable time component.
type timeValue struct {
	t        time.Time
	zone     string
	floating bool
	dateOnly bool
}

// parseTimeValue decodes one iCalendar date or date-time value. A TZID the
// host cannot resolve downgrades the value to floating rather than failing.
func parseTimeValue(value, tzid string, fallback *time.Location) (timeValue, bool) {
	value = strings.TrimSpace(value)
	if fallback == nil {
		fallback = time.UTC
	}

	if len(value) == len(icalDate) {
		if t, err := time.ParseInLocation(icalDate, value, fallback); err == nil {
			return timeValue{t: t, dateOnly: true, floating: tzid == ""}, true
		}
		return timeValue{}, false
	}

	if strings.HasSuffix(value, "Z") {
		if t, err := time.Parse(icalDateTimeUTC, value); err == nil {
			return timeValue{t: t, zone: "UTC"}, true
		}
		return timeValue{}, false
	}

	loc := fallback
	zone := ""
	floating := true
	if tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
			zone = tzid
			floating = false
		}
	}
	if t, err := time.ParseInLocation(icalDateTime, value, loc); err == nil {
		return timeValue{t: t, zone: zone, floating: floating}, true
	}
	return timeValue{}, false
}

func parsePropTime(prop *ical.Prop, fallback *time.Location) (timeValue, bool) {
	if prop == nil {
		return timeValue{}, false
	}
	v, ok := parseTimeValue(prop.Value, prop.Params.Get(ical.ParamTimezoneID), fallback)
	if !ok {
		return timeValue{}, false
	}
	if prop.Params.Get(ical.ParamValue) == "DATE" {
		v.dateOnly = true
	}
	return v, true
}
