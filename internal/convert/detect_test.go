package convert

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  SourceFormat
	}{
		{
			name:  "icalendar",
			input: "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:x\nEND:VEVENT\nEND:VCALENDAR",
			want:  ICalendar,
		},
		{
			name:  "vcard",
			input: "BEGIN:VCARD\nFN:Jane\nEND:VCARD",
			want:  VCard,
		},
		{
			name:  "jscalendar by discriminator",
			input: `{"@type": "Group", "entries": []}`,
			want:  JSCalendar,
		},
		{
			name:  "jscontact by discriminator",
			input: `{"@type": "Card"}`,
			want:  JSContact,
		},
		{
			name:  "leading whitespace ignored",
			input: "\n\n  BEGIN:VCARD\nFN:Jane\nEND:VCARD",
			want:  VCard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Detect(tt.input)
			if err != nil {
				t.Fatalf("Detect() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Detect() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	t.Parallel()

	input := "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:x\nEND:VEVENT\nEND:VCALENDAR"
	first, err1 := Detect(input)
	second, err2 := Detect(input)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if first != second {
		t.Fatalf("detection not stable: %s then %s", first, second)
	}
}

func TestDetectErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		wantKind    Kind
		wantMessage string
	}{
		{
			name:        "plain text",
			input:       "hello world",
			wantKind:    KindUnrecognizedFormat,
			wantMessage: "Unrecognized format. Please provide a valid iCalendar, JSCalendar, vCard or JSContact file.",
		},
		{
			name:        "json object without discriminator",
			input:       "{}",
			wantKind:    KindUnrecognizedFormat,
			wantMessage: "This does not look like a valid JSCalendar or JSContact.",
		},
		{
			name:        "mismatched component end",
			input:       "BEGIN:VCALENDAR\nEND:VCARD",
			wantKind:    KindStructuralError,
			wantMessage: "Unexpected component end: expected VCALENDAR, found VCARD",
		},
		{
			name:        "unterminated component",
			input:       "BEGIN:VCALENDAR\nBEGIN:VEVENT\nSUMMARY:x\nEND:VEVENT",
			wantKind:    KindUnterminatedInput,
			wantMessage: "Unterminated component: VCALENDAR",
		},
		{
			name:        "bare begin",
			input:       "BEGIN:",
			wantKind:    KindUnexpectedEnd,
			wantMessage: "Unexpected end of file",
		},
		{
			name:        "line without a colon",
			input:       "BEGIN:VCALENDAR\nnot a property\nEND:VCALENDAR",
			wantKind:    KindInvalidSyntax,
			wantMessage: "Invalid line found: not a property",
		},
		{
			name:        "end after root closed",
			input:       "BEGIN:VCALENDAR\nEND:VCALENDAR\nEND:VCALENDAR",
			wantKind:    KindInvalidSyntax,
			wantMessage: "Invalid line found: END:VCALENDAR",
		},
		{
			name:        "unknown root component",
			input:       "BEGIN:VTODOLIST\nEND:VTODOLIST",
			wantKind:    KindUnrecognizedFormat,
			wantMessage: "Unrecognized format. Please provide a valid iCalendar, JSCalendar, vCard or JSContact file.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Detect(tt.input)
			if err == nil {
				t.Fatal("Detect() succeeded, want error")
			}
			if err.Kind != tt.wantKind {
				t.Fatalf("Kind = %v, want %v", err.Kind, tt.wantKind)
			}
			if err.Error() != tt.wantMessage {
				t.Fatalf("message = %q, want %q", err.Error(), tt.wantMessage)
			}
		})
	}
}

func TestDetectTooManyComponents(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("BEGIN:VCALENDAR\n")
	for range 600 {
		b.WriteString("BEGIN:VEVENT\nEND:VEVENT\n")
	}
	b.WriteString("END:VCALENDAR")

	_, err := Detect(b.String())
	if err == nil {
		t.Fatal("Detect() succeeded, want error")
	}
	if err.Kind != KindOversizedInput {
		t.Fatalf("Kind = %v, want KindOversizedInput", err.Kind)
	}
	if err.Error() != "Too many components" {
		t.Fatalf("message = %q", err.Error())
	}
}
