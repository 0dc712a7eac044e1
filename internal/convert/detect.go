package convert

import "strings"

// Detect classifies raw input into one of the four source formats without
// fully parsing it. The legacy family is the exception: its structural scan
// is what disambiguates calendar from contact, so a structurally broken
// document yields the structural error rather than UnrecognizedFormat.
//
// JSON detection is a deliberate substring heuristic, matching the quoted
// top-level @type discriminators ("Group" for JSCalendar, "Card" for
// JSContact). Full JSON parsing happens in the conversion step.
func Detect(text string) (SourceFormat, *Error) {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "BEGIN:"):
		return scanLegacy(text)
	case strings.HasPrefix(text, "{"):
		if strings.Contains(text, `"Group"`) {
			return JSCalendar, nil
		}
		if strings.Contains(text, `"Card"`) {
			return JSContact, nil
		}
		return 0, errUnrecognizedJSON()
	}
	return 0, errUnrecognized()
}
