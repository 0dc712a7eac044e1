// Package convert is the format conversion core: detection, conversion
// dispatch, round-trip verification and recurrence expansion.
package convert

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"calconv/internal/calendar"
	"calconv/internal/contact"
)

// DefaultMaxOccurrences caps the occurrence table when no limit is
// configured.
const DefaultMaxOccurrences = 25

// Options tune a conversion. The zero value is usable.
type Options struct {
	// MaxOccurrences caps the expanded occurrence list; zero means
	// DefaultMaxOccurrences.
	MaxOccurrences int

	// DefaultZone is the IANA zone used to anchor floating date-times for
	// ordering. Empty (or unloadable) means UTC. Display always labels
	// floating instants "Floating".
	DefaultZone string

	// Logger receives debug diagnostics. Nil means silent.
	Logger *logrus.Logger
}

// Occurrence is one expanded event instance, formatted for display.
type Occurrence struct {
	From string
	To   string
}

// Result is the outcome of a successful (or round-trip-degraded) conversion.
type Result struct {
	Source      SourceFormat
	Output      string
	RoundTrip   string
	Occurrences []Occurrence
}

func (o Options) normalize() Options {
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = DefaultMaxOccurrences
	}
	if o.Logger == nil {
		o.Logger = logrus.New()
		o.Logger.SetOutput(io.Discard)
	}
	return o
}

func (o Options) fallbackZone() *time.Location {
	if o.DefaultZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.DefaultZone)
	if err != nil {
		o.Logger.WithError(err).WithField("zone", o.DefaultZone).
			Debug("unloadable default zone, falling back to UTC")
		return time.UTC
	}
	return loc
}

// Convert runs the full pipeline on one pasted document: detect, parse,
// convert to the counterpart format, expand occurrences for calendar input,
// and verify by converting back.
//
// Empty or whitespace-only input returns (nil, nil): the caller clears its
// output silently. A round-trip failure returns BOTH the partial result
// (source, primary output and occurrences, with RoundTrip empty) and the
// error; the primary conversion demonstrably succeeded and is not discarded.
// Every other failure returns (nil, error).
func Convert(input string, opts Options) (*Result, *Error) {
	opts = opts.normalize()

	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	source, derr := Detect(input)
	if derr != nil {
		return nil, derr
	}
	opts.Logger.WithField("format", source.String()).Debug("detected input format")

	switch source {
	case ICalendar:
		return convertICalendar(input, opts)
	case JSCalendar:
		return convertJSCalendar(input, opts)
	case VCard:
		return convertVCard(input, opts)
	default:
		return convertJSContact(input, opts)
	}
}

func convertICalendar(input string, opts Options) (*Result, *Error) {
	cal, err := calendar.Decode(input)
	if err != nil {
		return nil, errInvalidLine(err.Error())
	}

	group := calendar.FromCalendar(cal)
	output, err := group.MarshalPretty()
	if err != nil {
		return nil, errParse(JSCalendar, err)
	}

	result := &Result{
		Source: ICalendar,
		Output: output,
		// The original parsed calendar drives expansion, not the
		// round-tripped one.
		Occurrences: expandOccurrences(cal, opts),
	}

	back, ok := group.Calendar()
	if !ok {
		return result, errRoundTrip()
	}
	roundTrip, err := calendar.Encode(back)
	if err != nil {
		return result, errRoundTrip()
	}
	result.RoundTrip = roundTrip
	return result, nil
}

func convertJSCalendar(input string, opts Options) (*Result, *Error) {
	group, err := calendar.ParseGroup(input)
	if err != nil {
		return nil, errParse(JSCalendar, err)
	}

	// The primary conversion and the round-trip verification share the
	// JSCalendar->iCalendar direction, so a semantic gap here already means
	// a conversion defect rather than bad input.
	cal, ok := group.Calendar()
	if !ok {
		return nil, errRoundTrip()
	}
	output, err := calendar.Encode(cal)
	if err != nil {
		return nil, errRoundTrip()
	}

	result := &Result{
		Source: JSCalendar,
		Output: output,
		// JSCalendar input expands from the converted calendar.
		Occurrences: expandOccurrences(cal, opts),
	}

	roundTrip, err := calendar.FromCalendar(cal).MarshalPretty()
	if err != nil {
		return result, errRoundTrip()
	}
	result.RoundTrip = roundTrip
	return result, nil
}

func convertVCard(input string, opts Options) (*Result, *Error) {
	card, err := contact.Decode(input)
	if err != nil {
		return nil, errInvalidLine(err.Error())
	}

	jscard := contact.FromVCard(card)
	output, err := jscard.MarshalPretty()
	if err != nil {
		return nil, errParse(JSContact, err)
	}

	result := &Result{Source: VCard, Output: output}

	back, ok := jscard.VCard()
	if !ok {
		return result, errRoundTrip()
	}
	roundTrip, err := contact.Encode(back)
	if err != nil {
		return result, errRoundTrip()
	}
	result.RoundTrip = roundTrip
	return result, nil
}

func convertJSContact(input string, opts Options) (*Result, *Error) {
	jscard, err := contact.ParseCard(input)
	if err != nil {
		return nil, errParse(JSContact, err)
	}

	card, ok := jscard.VCard()
	if !ok {
		return nil, errRoundTrip()
	}
	output, err := contact.Encode(card)
	if err != nil {
		return nil, errRoundTrip()
	}

	result := &Result{Source: JSContact, Output: output}

	roundTrip, err := contact.FromVCard(card).MarshalPretty()
	if err != nil {
		return result, errRoundTrip()
	}
	result.RoundTrip = roundTrip
	return result, nil
}
