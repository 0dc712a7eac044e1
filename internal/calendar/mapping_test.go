package calendar

import (
	"strings"
	"testing"
	"time"
)

const teamCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
X-WR-CALNAME:Team calendar
BEGIN:VEVENT
UID:standup@example.com
SUMMARY:Standup
DESCRIPTION:Daily sync
LOCATION:Room 4
STATUS:CONFIRMED
SEQUENCE:2
CATEGORIES:work,meetings
DTSTART;TZID=Europe/Berlin:20260901T093000
DTEND;TZID=Europe/Berlin:20260901T094500
RRULE:FREQ=WEEKLY;COUNT=8;BYDAY=TU,TH
EXDATE;TZID=Europe/Berlin:20260908T093000
ORGANIZER;CN=Alice:mailto:alice@example.com
ATTENDEE;CN=Bob;PARTSTAT=ACCEPTED:mailto:bob@example.com
BEGIN:VALARM
ACTION:DISPLAY
TRIGGER:-PT15M
END:VALARM
END:VEVENT
END:VCALENDAR`

func TestFromCalendar(t *testing.T) {
	t.Parallel()

	cal, err := Decode(teamCalendar)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	group := FromCalendar(cal)
	if group.Type != "Group" {
		t.Fatalf("Type = %q, want Group", group.Type)
	}
	if group.Title != "Team calendar" {
		t.Fatalf("Title = %q", group.Title)
	}
	if len(group.Entries) != 1 {
		t.Fatalf("Entries = %d, want 1", len(group.Entries))
	}

	event := group.Entries[0]
	if event.UID != "standup@example.com" {
		t.Fatalf("UID = %q", event.UID)
	}
	if event.Title != "Standup" {
		t.Fatalf("Title = %q", event.Title)
	}
	if event.Description != "Daily sync" {
		t.Fatalf("Description = %q", event.Description)
	}
	if event.Location != "Room 4" {
		t.Fatalf("Location = %q", event.Location)
	}
	if event.Status != "confirmed" {
		t.Fatalf("Status = %q, want confirmed", event.Status)
	}
	if event.Sequence != 2 {
		t.Fatalf("Sequence = %d", event.Sequence)
	}
	if !event.Keywords["work"] || !event.Keywords["meetings"] {
		t.Fatalf("Keywords = %v", event.Keywords)
	}

	if event.Start != "2026-09-01T09:30:00" {
		t.Fatalf("Start = %q", event.Start)
	}
	if event.TimeZone != "Europe/Berlin" {
		t.Fatalf("TimeZone = %q", event.TimeZone)
	}
	if event.ShowWithoutTime {
		t.Fatal("ShowWithoutTime set on a timed event")
	}
	if event.Duration != "PT15M" {
		t.Fatalf("Duration = %q, want PT15M", event.Duration)
	}

	if len(event.RecurrenceRules) != 1 {
		t.Fatalf("RecurrenceRules = %d, want 1", len(event.RecurrenceRules))
	}
	rule := event.RecurrenceRules[0]
	if rule.Frequency != "weekly" || rule.Count != 8 {
		t.Fatalf("rule = %+v", rule)
	}
	if len(rule.ByDay) != 2 || rule.ByDay[0].Day != "tu" || rule.ByDay[1].Day != "th" {
		t.Fatalf("ByDay = %+v", rule.ByDay)
	}

	override, ok := event.RecurrenceOverrides["2026-09-08T09:30:00"]
	if !ok || !override.Excluded {
		t.Fatalf("RecurrenceOverrides = %+v", event.RecurrenceOverrides)
	}

	if len(event.Participants) != 2 {
		t.Fatalf("Participants = %d, want 2", len(event.Participants))
	}
	owner := event.Participants["p1"]
	if owner.Email != "alice@example.com" || !owner.Roles["owner"] || owner.Name != "Alice" {
		t.Fatalf("owner = %+v", owner)
	}
	attendee := event.Participants["p2"]
	if attendee.Email != "bob@example.com" || !attendee.Roles["attendee"] {
		t.Fatalf("attendee = %+v", attendee)
	}
	if attendee.ParticipationStatus != "accepted" {
		t.Fatalf("ParticipationStatus = %q", attendee.ParticipationStatus)
	}

	alert, ok := event.Alerts["a1"]
	if !ok || alert.Trigger.Offset != "-PT15M" || alert.Action != "display" {
		t.Fatalf("Alerts = %+v", event.Alerts)
	}
}

func TestGroupCalendarRoundTrip(t *testing.T) {
	t.Parallel()

	cal, err := Decode(teamCalendar)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	back, ok := FromCalendar(cal).Calendar()
	if !ok {
		t.Fatal("Calendar() reported a semantic gap")
	}

	encoded, err := Encode(back)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	for _, want := range []string{
		"X-WR-CALNAME:Team calendar",
		"SUMMARY:Standup",
		"DTSTART;TZID=Europe/Berlin:20260901T093000",
		"DURATION:PT15M",
		"RRULE:FREQ=WEEKLY;COUNT=8;BYDAY=TU,TH",
		"EXDATE;TZID=Europe/Berlin:20260908T093000",
		"ORGANIZER;CN=Alice:mailto:alice@example.com",
		"PARTSTAT=ACCEPTED",
		"TRIGGER:-PT15M",
	} {
		if !strings.Contains(encoded, want) {
			t.Fatalf("encoded calendar is missing %q:\n%s", want, encoded)
		}
	}
}

func TestFromCalendarHTMLDescription(t *testing.T) {
	t.Parallel()

	input := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:html@example.com
SUMMARY:Launch
X-ALT-DESC;FMTTYPE=text/html:<b>Bold</b> meeting notes
DTSTART:20260102T100000Z
END:VEVENT
END:VCALENDAR`

	group := FromCalendar(decodeT(t, input))
	if len(group.Entries) != 1 {
		t.Fatalf("Entries = %d, want 1", len(group.Entries))
	}
	if got := group.Entries[0].Description; got != "**Bold** meeting notes" {
		t.Fatalf("Description = %q, want the HTML converted to text", got)
	}
}

func TestFromCalendarPlainDescriptionWinsOverHTML(t *testing.T) {
	t.Parallel()

	input := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:both@example.com
DESCRIPTION:Plain text
X-ALT-DESC;FMTTYPE=text/html:<b>Ignored</b>
DTSTART:20260102T100000Z
END:VEVENT
END:VCALENDAR`

	group := FromCalendar(decodeT(t, input))
	if got := group.Entries[0].Description; got != "Plain text" {
		t.Fatalf("Description = %q, want the plain DESCRIPTION", got)
	}
}

func TestParseGroup(t *testing.T) {
	t.Parallel()

	group, err := ParseGroup(`{"@type": "Group", "entries": [{"@type": "Event", "title": "One"}]}`)
	if err != nil {
		t.Fatalf("ParseGroup() error: %v", err)
	}
	if len(group.Entries) != 1 || group.Entries[0].Title != "One" {
		t.Fatalf("group = %+v", group)
	}

	if _, err := ParseGroup(`{"@type": "Card", "entries": []}`); err == nil {
		t.Fatal("a non-Group @type must not parse")
	}
	if _, err := ParseGroup(`{"@type": "Group", "entries": [{"@type": "Task"}]}`); err == nil {
		t.Fatal("a non-Event entry must not parse")
	}
	if _, err := ParseGroup(`{"@type": "Group", "entries": []} trailing`); err == nil {
		t.Fatal("trailing content after the object must not parse")
	}
}

func TestGroupCalendarSemanticGaps(t *testing.T) {
	t.Parallel()

	if _, ok := (&Group{Type: "Group"}).Calendar(); ok {
		t.Fatal("a group without entries has no legacy equivalent")
	}

	group := &Group{
		Type:    "Group",
		Entries: []*Event{{Type: "Event", Title: "No start"}},
	}
	if _, ok := group.Calendar(); ok {
		t.Fatal("an entry without a start has no legacy equivalent")
	}
}

func TestEventComponentDateForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "utc",
			event: Event{Start: "2026-01-02T10:00:00", TimeZone: "UTC"},
			want:  "DTSTART:20260102T100000Z",
		},
		{
			name:  "zoned",
			event: Event{Start: "2026-01-02T10:00:00", TimeZone: "Asia/Tokyo"},
			want:  "DTSTART;TZID=Asia/Tokyo:20260102T100000",
		},
		{
			name:  "floating",
			event: Event{Start: "2026-01-02T10:00:00"},
			want:  "DTSTART:20260102T100000",
		},
		{
			name:  "all day",
			event: Event{Start: "2026-12-24T00:00:00", ShowWithoutTime: true},
			want:  "DTSTART;VALUE=DATE:20261224",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			group := &Group{Type: "Group", Entries: []*Event{&tt.event}}
			cal, ok := group.Calendar()
			if !ok {
				t.Fatal("Calendar() reported a semantic gap")
			}
			encoded, err := Encode(cal)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			if !strings.Contains(encoded, tt.want) {
				t.Fatalf("missing %q:\n%s", tt.want, encoded)
			}
		})
	}
}

func TestRRuleTextRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;COUNT=8;BYDAY=TU,TH",
		"FREQ=MONTHLY;INTERVAL=2;BYDAY=1TH",
		"FREQ=YEARLY;UNTIL=20301231T000000Z",
	}
	for _, text := range tests {
		rule, ok := parseRRuleText(text)
		if !ok {
			t.Fatalf("parseRRuleText(%q) failed", text)
		}
		if got := formatRRuleText(rule); got != text {
			t.Fatalf("round trip of %q = %q", text, got)
		}
	}
}

func TestParseRRuleText(t *testing.T) {
	t.Parallel()

	rule, ok := parseRRuleText("FREQ=WEEKLY;INTERVAL=2;COUNT=5;BYDAY=MO,-1FR")
	if !ok {
		t.Fatal("parseRRuleText failed")
	}
	if rule.Frequency != "weekly" || rule.Interval != 2 || rule.Count != 5 {
		t.Fatalf("rule = %+v", rule)
	}
	if len(rule.ByDay) != 2 {
		t.Fatalf("ByDay = %+v", rule.ByDay)
	}
	if rule.ByDay[0].Day != "mo" || rule.ByDay[0].NthOfPeriod != 0 {
		t.Fatalf("ByDay[0] = %+v", rule.ByDay[0])
	}
	if rule.ByDay[1].Day != "fr" || rule.ByDay[1].NthOfPeriod != -1 {
		t.Fatalf("ByDay[1] = %+v", rule.ByDay[1])
	}

	if _, ok := parseRRuleText("INTERVAL=2"); ok {
		t.Fatal("a rule without FREQ must not parse")
	}
}

func TestISODurations(t *testing.T) {
	t.Parallel()

	parse := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"PT45S", 45 * time.Second},
		{"PT1H", time.Hour},
		{"PT1H30M", 90 * time.Minute},
		{"P1D", 24 * time.Hour},
		{"P1DT12H", 36 * time.Hour},
		{"P2W", 14 * 24 * time.Hour},
	}
	for _, tt := range parse {
		got, err := parseISODuration(tt.in)
		if err != nil {
			t.Fatalf("parseISODuration(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseISODuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := parseISODuration("1H"); err == nil {
		t.Fatal("a duration without the P prefix must not parse")
	}

	format := []struct {
		in   time.Duration
		want string
	}{
		{0, "PT0S"},
		{time.Hour, "PT1H"},
		{90 * time.Minute, "PT1H30M"},
		{24 * time.Hour, "P1D"},
		{36 * time.Hour, "PT36H"},
	}
	for _, tt := range format {
		if got := formatISODuration(tt.in); got != tt.want {
			t.Fatalf("formatISODuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
