package convert

import "fmt"

// Kind classifies a conversion failure.
type Kind int

const (
	KindUnrecognizedFormat Kind = iota
	KindInvalidSyntax
	KindStructuralError
	KindUnterminatedInput
	KindOversizedInput
	KindUnexpectedEnd
	KindRoundTripFailure
)

// Error is the single error type surfaced by a conversion attempt. Error()
// renders the exact user-facing message; Kind supports matching in callers
// and tests.
type Error struct {
	Kind Kind

	// Detail carries the offending line, component name, or parser message,
	// depending on Kind.
	Detail string

	// Expected and Found are set for structural component-end mismatches.
	Expected string
	Found    string

	jsonObject bool
	cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnrecognizedFormat:
		if e.jsonObject {
			return "This does not look like a valid JSCalendar or JSContact."
		}
		return "Unrecognized format. Please provide a valid iCalendar, JSCalendar, vCard or JSContact file."
	case KindInvalidSyntax:
		return e.Detail
	case KindStructuralError:
		return fmt.Sprintf("Unexpected component end: expected %s, found %s", e.Expected, e.Found)
	case KindUnterminatedInput:
		return "Unterminated component: " + e.Detail
	case KindOversizedInput:
		return "Too many components"
	case KindUnexpectedEnd:
		return "Unexpected end of file"
	case KindRoundTripFailure:
		return "Looks like you've found a bug in the conversion. Please report it."
	}
	return "unknown conversion error"
}

func (e *Error) Unwrap() error { return e.cause }

func errUnrecognized() *Error {
	return &Error{Kind: KindUnrecognizedFormat}
}

func errUnrecognizedJSON() *Error {
	return &Error{Kind: KindUnrecognizedFormat, jsonObject: true}
}

func errInvalidLine(line string) *Error {
	return &Error{Kind: KindInvalidSyntax, Detail: "Invalid line found: " + line}
}

func errParse(f SourceFormat, cause error) *Error {
	return &Error{
		Kind:   KindInvalidSyntax,
		Detail: fmt.Sprintf("Failed to parse %s: %v", f, cause),
		cause:  cause,
	}
}

func errComponentEnd(expected, found string) *Error {
	return &Error{Kind: KindStructuralError, Expected: expected, Found: found}
}

func errUnterminated(component string) *Error {
	return &Error{Kind: KindUnterminatedInput, Detail: component}
}

func errTooManyComponents() *Error {
	return &Error{Kind: KindOversizedInput}
}

func errUnexpectedEnd() *Error {
	return &Error{Kind: KindUnexpectedEnd}
}

func errRoundTrip() *Error {
	return &Error{Kind: KindRoundTripFailure}
}
