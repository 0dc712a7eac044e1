package calendar

import (
	"encoding/json"
	"fmt"
)

// JSCalendar value types (RFC 8984), limited to the properties the mapping
// layer produces and consumes. A top-level Group wraps one or more Events.
type Group struct {
	Type    string   `json:"@type"`
	UID     string   `json:"uid,omitempty"`
	Title   string   `json:"title,omitempty"`
	Entries []*Event `json:"entries"`
}

type Event struct {
	Type                   string                 `json:"@type"`
	UID                    string                 `json:"uid,omitempty"`
	Title                  string                 `json:"title,omitempty"`
	Description            string                 `json:"description,omitempty"`
	DescriptionContentType string                 `json:"descriptionContentType,omitempty"`
	Location               string                 `json:"location,omitempty"`
	Start                  string                 `json:"start,omitempty"`
	TimeZone               string                 `json:"timeZone,omitempty"`
	ShowWithoutTime        bool                   `json:"showWithoutTime,omitempty"`
	Duration               string                 `json:"duration,omitempty"`
	Status                 string                 `json:"status,omitempty"`
	Created                string                 `json:"created,omitempty"`
	Updated                string                 `json:"updated,omitempty"`
	Sequence               int                    `json:"sequence,omitempty"`
	RecurrenceRules        []RecurrenceRule       `json:"recurrenceRules,omitempty"`
	RecurrenceOverrides    map[string]Override    `json:"recurrenceOverrides,omitempty"`
	Participants           map[string]Participant `json:"participants,omitempty"`
	Alerts                 map[string]Alert       `json:"alerts,omitempty"`
	Keywords               map[string]bool        `json:"keywords,omitempty"`
}

type RecurrenceRule struct {
	Type      string `json:"@type"`
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval,omitempty"`
	Count     int    `json:"count,omitempty"`
	Until     string `json:"until,omitempty"`
	ByDay     []NDay `json:"byDay,omitempty"`
}

type NDay struct {
	Type        string `json:"@type"`
	Day         string `json:"day"`
	NthOfPeriod int    `json:"nthOfPeriod,omitempty"`
}

// Override marks one recurrence instance; only exclusion is mapped (EXDATE).
type Override struct {
	Excluded bool `json:"excluded,omitempty"`
}

type Participant struct {
	Type                string          `json:"@type"`
	Name                string          `json:"name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Kind                string          `json:"kind,omitempty"`
	Roles               map[string]bool `json:"roles,omitempty"`
	ParticipationStatus string          `json:"participationStatus,omitempty"`
}

type Alert struct {
	Type    string  `json:"@type"`
	Trigger Trigger `json:"trigger"`
	Action  string  `json:"action,omitempty"`
}

type Trigger struct {
	Type   string `json:"@type"`
	Offset string `json:"offset"`
}

// ParseGroup decodes a JSCalendar document. The top-level object must be a
// Group; anything else is a parse failure, never a detection failure.
func ParseGroup(text string) (*Group, error) {
	var g Group
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return nil, err
	}
	if g.Type != "Group" {
		return nil, fmt.Errorf("unexpected @type %q, expected \"Group\"", g.Type)
	}
	for i, e := range g.Entries {
		if e == nil {
			return nil, fmt.Errorf("entry %d is null", i)
		}
		if e.Type != "Event" {
			return nil, fmt.Errorf("entry %d has @type %q, expected \"Event\"", i, e.Type)
		}
	}
	return &g, nil
}

// MarshalPretty renders the group as two-space-indented JSON.
func (g *Group) MarshalPretty() (string, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
