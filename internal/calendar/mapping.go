package calendar

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/emersion/go-ical"
)

// FromCalendar maps an iCalendar document to its JSCalendar Group. The
// mapping is total: every structurally valid calendar produces a group.
func FromCalendar(cal *ical.Calendar) *Group {
	group := &Group{Type: "Group"}

	if prop := cal.Props.Get("X-WR-CALNAME"); prop != nil {
		group.Title = prop.Value
	}

	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		group.Entries = append(group.Entries, eventFromComponent(comp))
	}
	return group
}

func eventFromComponent(comp *ical.Component) *Event {
	event := &Event{Type: "Event"}

	if prop := comp.Props.Get(ical.PropUID); prop != nil {
		event.UID = prop.Value
	}
	if prop := comp.Props.Get(ical.PropSummary); prop != nil {
		event.Title = prop.Value
	}
	if prop := comp.Props.Get(ical.PropDescription); prop != nil {
		event.Description = prop.Value
	} else if prop := comp.Props.Get("X-ALT-DESC"); prop != nil {
		event.Description = htmlToText(prop.Value)
	}
	if prop := comp.Props.Get(ical.PropLocation); prop != nil {
		event.Location = prop.Value
	}
	if prop := comp.Props.Get(ical.PropStatus); prop != nil {
		event.Status = strings.ToLower(prop.Value)
	}
	if prop := comp.Props.Get(ical.PropSequence); prop != nil {
		event.Sequence, _ = strconv.Atoi(prop.Value)
	}
	if prop := comp.Props.Get(ical.PropCreated); prop != nil {
		if t, err := time.Parse(icalDateTimeUTC, prop.Value); err == nil {
			event.Created = t.Format(utcDateTime)
		}
	}
	if prop := comp.Props.Get(ical.PropLastModified); prop != nil {
		if t, err := time.Parse(icalDateTimeUTC, prop.Value); err == nil {
			event.Updated = t.Format(utcDateTime)
		}
	}
	for _, prop := range comp.Props.Values(ical.PropCategories) {
		for _, cat := range strings.Split(prop.Value, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				if event.Keywords == nil {
					event.Keywords = make(map[string]bool)
				}
				event.Keywords[cat] = true
			}
		}
	}

	start, haveStart := parsePropTime(comp.Props.Get(ical.PropDateTimeStart), time.UTC)
	if haveStart {
		if start.dateOnly {
			event.ShowWithoutTime = true
			event.Start = start.t.Format("2006-01-02T00:00:00")
		} else {
			event.Start = start.t.Format(localDateTime)
		}
		event.TimeZone = start.zone
	}

	if prop := comp.Props.Get(ical.PropDuration); prop != nil {
		event.Duration = prop.Value
	} else if end, ok := parsePropTime(comp.Props.Get(ical.PropDateTimeEnd), time.UTC); ok && haveStart {
		if d := end.t.Sub(start.t); d > 0 {
			event.Duration = formatISODuration(d)
		}
	}

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil {
		if rule, ok := parseRRuleText(prop.Value); ok {
			event.RecurrenceRules = []RecurrenceRule{rule}
		}
	}
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		tzid := prop.Params.Get(ical.ParamTimezoneID)
		for _, value := range strings.Split(prop.Value, ",") {
			v, ok := parseTimeValue(value, tzid, time.UTC)
			if !ok {
				continue
			}
			if event.RecurrenceOverrides == nil {
				event.RecurrenceOverrides = make(map[string]Override)
			}
			event.RecurrenceOverrides[v.t.Format(localDateTime)] = Override{Excluded: true}
		}
	}

	participantID := 0
	addParticipant := func(prop *ical.Prop, role string) {
		participantID++
		p := Participant{
			Type:  "Participant",
			Email: strings.TrimPrefix(prop.Value, "mailto:"),
			Roles: map[string]bool{role: true},
		}
		if name := prop.Params.Get(ical.ParamCommonName); name != "" {
			p.Name = name
		}
		if kind := prop.Params.Get(ical.ParamCalendarUserType); kind != "" {
			p.Kind = strings.ToLower(kind)
		}
		if status := prop.Params.Get(ical.ParamParticipationStatus); status != "" {
			p.ParticipationStatus = strings.ToLower(status)
		}
		if event.Participants == nil {
			event.Participants = make(map[string]Participant)
		}
		event.Participants[fmt.Sprintf("p%d", participantID)] = p
	}
	if prop := comp.Props.Get(ical.PropOrganizer); prop != nil {
		addParticipant(prop, "owner")
	}
	for _, prop := range comp.Props.Values(ical.PropAttendee) {
		addParticipant(&prop, "attendee")
	}

	alertID := 0
	for _, child := range comp.Children {
		if child.Name != ical.CompAlarm {
			continue
		}
		trigger := child.Props.Get(ical.PropTrigger)
		if trigger == nil {
			continue
		}
		alertID++
		alert := Alert{
			Type:    "Alert",
			Trigger: Trigger{Type: "OffsetTrigger", Offset: trigger.Value},
		}
		if action := child.Props.Get(ical.PropAction); action != nil {
			alert.Action = strings.ToLower(action.Value)
		}
		if event.Alerts == nil {
			event.Alerts = make(map[string]Alert)
		}
		event.Alerts[fmt.Sprintf("a%d", alertID)] = alert
	}

	return event
}

// Calendar maps a group back to iCalendar. The second return is false when
// the value has no legacy equivalent: a group without entries, or an entry
// without a resolvable start. That absence is a semantic gap in the mapping,
// never a syntax error.
func (g *Group) Calendar() (*ical.Calendar, bool) {
	if len(g.Entries) == 0 {
		return nil, false
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	if g.Title != "" {
		cal.Props.SetText("X-WR-CALNAME", g.Title)
	}

	for _, event := range g.Entries {
		comp, ok := event.component()
		if !ok {
			return nil, false
		}
		cal.Children = append(cal.Children, comp)
	}
	return cal, true
}

func (e *Event) component() (*ical.Component, bool) {
	start, err := time.Parse(localDateTime, e.Start)
	if err != nil {
		return nil, false
	}

	comp := ical.NewComponent(ical.CompEvent)
	if e.UID != "" {
		comp.Props.SetText(ical.PropUID, e.UID)
	}
	if e.Title != "" {
		comp.Props.SetText(ical.PropSummary, e.Title)
	}
	if e.Description != "" {
		comp.Props.SetText(ical.PropDescription, e.Description)
	}
	if e.Location != "" {
		comp.Props.SetText(ical.PropLocation, e.Location)
	}
	if e.Status != "" {
		comp.Props.SetText(ical.PropStatus, strings.ToUpper(e.Status))
	}
	if e.Sequence > 0 {
		comp.Props.SetText(ical.PropSequence, strconv.Itoa(e.Sequence))
	}
	if e.Created != "" {
		if t, err := time.Parse(utcDateTime, e.Created); err == nil {
			comp.Props.SetText(ical.PropCreated, t.Format(icalDateTimeUTC))
		}
	}
	if e.Updated != "" {
		if t, err := time.Parse(utcDateTime, e.Updated); err == nil {
			comp.Props.SetText(ical.PropLastModified, t.Format(icalDateTimeUTC))
		}
	}
	if len(e.Keywords) > 0 {
		comp.Props.SetText(ical.PropCategories, strings.Join(slices.Sorted(maps.Keys(e.Keywords)), ","))
	}

	dtstart := ical.NewProp(ical.PropDateTimeStart)
	switch {
	case e.ShowWithoutTime:
		dtstart.Value = start.Format(icalDate)
		dtstart.Params.Set(ical.ParamValue, "DATE")
	case e.TimeZone == "UTC":
		dtstart.Value = start.Format(icalDateTimeUTC)
	case e.TimeZone != "":
		dtstart.Value = start.Format(icalDateTime)
		dtstart.Params.Set(ical.ParamTimezoneID, e.TimeZone)
	default:
		dtstart.Value = start.Format(icalDateTime)
	}
	comp.Props.Set(dtstart)

	if e.Duration != "" {
		comp.Props.SetText(ical.PropDuration, e.Duration)
	}

	if len(e.RecurrenceRules) > 0 {
		comp.Props.SetText(ical.PropRecurrenceRule, formatRRuleText(e.RecurrenceRules[0]))
	}
	if len(e.RecurrenceOverrides) > 0 {
		var excluded []string
		for _, key := range slices.Sorted(maps.Keys(e.RecurrenceOverrides)) {
			if !e.RecurrenceOverrides[key].Excluded {
				continue
			}
			t, err := time.Parse(localDateTime, key)
			if err != nil {
				continue
			}
			if e.TimeZone == "UTC" {
				excluded = append(excluded, t.Format(icalDateTimeUTC))
			} else {
				excluded = append(excluded, t.Format(icalDateTime))
			}
		}
		if len(excluded) > 0 {
			exdate := ical.NewProp(ical.PropExceptionDates)
			exdate.Value = strings.Join(excluded, ",")
			if e.TimeZone != "" && e.TimeZone != "UTC" {
				exdate.Params.Set(ical.ParamTimezoneID, e.TimeZone)
			}
			comp.Props.Set(exdate)
		}
	}

	for _, id := range slices.Sorted(maps.Keys(e.Participants)) {
		p := e.Participants[id]
		name := ical.PropAttendee
		if p.Roles["owner"] {
			name = ical.PropOrganizer
		}
		prop := ical.NewProp(name)
		prop.Value = "mailto:" + p.Email
		if p.Name != "" {
			prop.Params.Set(ical.ParamCommonName, p.Name)
		}
		if p.Kind != "" {
			prop.Params.Set(ical.ParamCalendarUserType, strings.ToUpper(p.Kind))
		}
		if p.ParticipationStatus != "" {
			prop.Params.Set(ical.ParamParticipationStatus, strings.ToUpper(p.ParticipationStatus))
		}
		comp.Props.Add(prop)
	}

	for _, id := range slices.Sorted(maps.Keys(e.Alerts)) {
		alert := e.Alerts[id]
		valarm := ical.NewComponent(ical.CompAlarm)
		valarm.Props.SetText(ical.PropTrigger, alert.Trigger.Offset)
		action := alert.Action
		if action == "" {
			action = "display"
		}
		valarm.Props.SetText(ical.PropAction, strings.ToUpper(action))
		comp.Children = append(comp.Children, valarm)
	}

	return comp, true
}

func htmlToText(html string) string {
	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(html)
	if err != nil {
		return html
	}
	return text
}

// parseRRuleText maps the RRULE properties the JSCalendar side models:
// FREQ, INTERVAL, COUNT, UNTIL and BYDAY.
func parseRRuleText(s string) (RecurrenceRule, bool) {
	rule := RecurrenceRule{Type: "RecurrenceRule"}
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "FREQ":
			rule.Frequency = strings.ToLower(value)
		case "INTERVAL":
			rule.Interval, _ = strconv.Atoi(value)
		case "COUNT":
			rule.Count, _ = strconv.Atoi(value)
		case "UNTIL":
			if t, err := time.Parse(icalDateTimeUTC, value); err == nil {
				rule.Until = t.Format(utcDateTime)
			} else if t, err := time.Parse(icalDateTime, value); err == nil {
				rule.Until = t.Format(localDateTime)
			}
		case "BYDAY":
			for _, day := range strings.Split(value, ",") {
				day = strings.TrimSpace(day)
				if len(day) < 2 {
					continue
				}
				nday := NDay{Type: "NDay", Day: strings.ToLower(day[len(day)-2:])}
				if len(day) > 2 {
					nday.NthOfPeriod, _ = strconv.Atoi(day[:len(day)-2])
				}
				rule.ByDay = append(rule.ByDay, nday)
			}
		}
	}
	if rule.Frequency == "" {
		return rule, false
	}
	return rule, true
}

func formatRRuleText(rule RecurrenceRule) string {
	parts := []string{"FREQ=" + strings.ToUpper(rule.Frequency)}
	if rule.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(rule.Interval))
	}
	if rule.Count > 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(rule.Count))
	}
	if rule.Until != "" {
		if t, err := time.Parse(utcDateTime, rule.Until); err == nil {
			parts = append(parts, "UNTIL="+t.Format(icalDateTimeUTC))
		} else if t, err := time.Parse(localDateTime, rule.Until); err == nil {
			parts = append(parts, "UNTIL="+t.Format(icalDateTime))
		}
	}
	if len(rule.ByDay) > 0 {
		var days []string
		for _, nday := range rule.ByDay {
			day := strings.ToUpper(nday.Day)
			if nday.NthOfPeriod != 0 {
				day = strconv.Itoa(nday.NthOfPeriod) + day
			}
			days = append(days, day)
		}
		parts = append(parts, "BYDAY="+strings.Join(days, ","))
	}
	return strings.Join(parts, ";")
}

// parseISODuration decodes an ISO 8601 duration (P1D, PT1H30M). An empty
// string is a zero duration.
func parseISODuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	rest, ok := strings.CutPrefix(s, "P")
	if !ok {
		return 0, fmt.Errorf("invalid duration: %s", s)
	}

	var d time.Duration
	if idx := strings.Index(rest, "W"); idx != -1 {
		weeks, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		d += time.Duration(weeks) * 7 * 24 * time.Hour
		rest = rest[idx+1:]
	}
	if idx := strings.Index(rest, "D"); idx != -1 {
		days, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		d += time.Duration(days) * 24 * time.Hour
		rest = rest[idx+1:]
	}
	rest = strings.TrimPrefix(rest, "T")
	if idx := strings.Index(rest, "H"); idx != -1 {
		hours, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		d += time.Duration(hours) * time.Hour
		rest = rest[idx+1:]
	}
	if idx := strings.Index(rest, "M"); idx != -1 {
		mins, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		d += time.Duration(mins) * time.Minute
		rest = rest[idx+1:]
	}
	if idx := strings.Index(rest, "S"); idx != -1 {
		secs, err := strconv.Atoi(rest[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		d += time.Duration(secs) * time.Second
	}
	return d, nil
}

func formatISODuration(d time.Duration) string {
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours >= 24 && hours%24 == 0 && mins == 0 && secs == 0 {
		return fmt.Sprintf("P%dD", hours/24)
	}

	result := "PT"
	if hours > 0 {
		result += fmt.Sprintf("%dH", hours)
	}
	if mins > 0 {
		result += fmt.Sprintf("%dM", mins)
	}
	if secs > 0 {
		result += fmt.Sprintf("%dS", secs)
	}
	if result == "PT" {
		return "PT0S"
	}
	return result
}
