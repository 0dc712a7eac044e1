package convert

// SourceFormat identifies one of the four supported input formats.
type SourceFormat int

const (
	ICalendar SourceFormat = iota
	JSCalendar
	VCard
	JSContact
)

func (f SourceFormat) String() string {
	switch f {
	case ICalendar:
		return "iCalendar"
	case JSCalendar:
		return "JSCalendar"
	case VCard:
		return "vCard"
	case JSContact:
		return "JSContact"
	}
	return "unknown"
}

// Counterpart returns the paired format in the other representation of the
// same domain. It is involutive: f.Counterpart().Counterpart() == f.
func (f SourceFormat) Counterpart() SourceFormat {
	switch f {
	case ICalendar:
		return JSCalendar
	case JSCalendar:
		return ICalendar
	case VCard:
		return JSContact
	default:
		return VCard
	}
}

// IsCalendar reports whether the format belongs to the calendar domain.
func (f SourceFormat) IsCalendar() bool {
	return f == ICalendar || f == JSCalendar
}

// IsJSON reports whether the format is one of the JSON representations.
func (f SourceFormat) IsJSON() bool {
	return f == JSCalendar || f == JSContact
}
