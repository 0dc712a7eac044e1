package convert

import "strings"

const (
	maxComponents    = 512
	maxComponentNest = 16
)

// scanLegacy performs a structural pass over a BEGIN:/END: delimited document
// without interpreting property values. It disambiguates VCALENDAR from VCARD
// (the two share one line grammar, so detection has to walk the component
// tree anyway) and classifies structural defects: mismatched END, missing
// END, oversized documents, and lines that are not properties at all.
func scanLegacy(text string) (SourceFormat, *Error) {
	var (
		stack      []string
		root       string
		components int
	)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			continue
		}
		// Folded continuation lines belong to the previous property.
		if line[0] == ' ' || line[0] == '\t' {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return 0, errInvalidLine(line)
		}
		// Strip property parameters (NAME;PARAM=X:value).
		if i := strings.Index(name, ";"); i >= 0 {
			name = name[:i]
		}
		name = strings.ToUpper(strings.TrimSpace(name))

		switch name {
		case "BEGIN":
			component := strings.ToUpper(strings.TrimSpace(value))
			if component == "" {
				return 0, errUnexpectedEnd()
			}
			components++
			if components > maxComponents || len(stack) >= maxComponentNest {
				return 0, errTooManyComponents()
			}
			if root == "" {
				root = component
			}
			stack = append(stack, component)
		case "END":
			component := strings.ToUpper(strings.TrimSpace(value))
			if len(stack) == 0 {
				// An END after the root already closed has no component to
				// mismatch against; it is simply not a valid line here.
				return 0, errInvalidLine(line)
			}
			top := stack[len(stack)-1]
			if top != component {
				return 0, errComponentEnd(top, component)
			}
			stack = stack[:len(stack)-1]
		default:
			if len(stack) == 0 {
				// Properties outside any component.
				return 0, errInvalidLine(line)
			}
		}
	}

	if len(stack) > 0 {
		return 0, errUnterminated(stack[len(stack)-1])
	}
	if root == "" {
		return 0, errUnexpectedEnd()
	}

	switch root {
	case "VCALENDAR":
		return ICalendar, nil
	case "VCARD":
		return VCard, nil
	}
	return 0, errUnrecognized()
}
