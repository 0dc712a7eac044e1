package contact

import (
	"encoding/json"
	"fmt"
)

// JSContact value types (RFC 9553), limited to the properties the mapping
// layer produces and consumes.
type Card struct {
	Type          string                 `json:"@type"`
	Version       string                 `json:"version,omitempty"`
	UID           string                 `json:"uid,omitempty"`
	Created       string                 `json:"created,omitempty"`
	Updated       string                 `json:"updated,omitempty"`
	Name          *Name                  `json:"name,omitempty"`
	Nicknames     map[string]Nickname    `json:"nicknames,omitempty"`
	Organizations map[string]Org         `json:"organizations,omitempty"`
	Titles        map[string]Title       `json:"titles,omitempty"`
	Emails        map[string]Email       `json:"emails,omitempty"`
	Phones        map[string]Phone       `json:"phones,omitempty"`
	Addresses     map[string]Address     `json:"addresses,omitempty"`
	Anniversaries map[string]Anniversary `json:"anniversaries,omitempty"`
	Notes         map[string]Note        `json:"notes,omitempty"`
	Links         map[string]Link        `json:"links,omitempty"`
}

type Name struct {
	Full       string          `json:"full,omitempty"`
	Components []NameComponent `json:"components,omitempty"`
}

type NameComponent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Nickname struct {
	Name string `json:"name"`
}

type Org struct {
	Name string `json:"name"`
}

type Title struct {
	Name string `json:"name"`
}

type Email struct {
	Address  string          `json:"address"`
	Contexts map[string]bool `json:"contexts,omitempty"`
	Pref     int             `json:"pref,omitempty"`
}

type Phone struct {
	Number   string          `json:"number"`
	Features map[string]bool `json:"features,omitempty"`
	Contexts map[string]bool `json:"contexts,omitempty"`
	Pref     int             `json:"pref,omitempty"`
}

type Address struct {
	Street   string          `json:"street,omitempty"`
	Locality string          `json:"locality,omitempty"`
	Region   string          `json:"region,omitempty"`
	Postcode string          `json:"postcode,omitempty"`
	Country  string          `json:"country,omitempty"`
	Contexts map[string]bool `json:"contexts,omitempty"`
}

type Anniversary struct {
	Kind string `json:"kind"`
	Date string `json:"date"`
}

type Note struct {
	Note string `json:"note"`
}

type Link struct {
	URI string `json:"uri"`
}

// ParseCard decodes a JSContact document. The top-level object must be a
// Card.
func ParseCard(text string) (*Card, error) {
	var c Card
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return nil, err
	}
	if c.Type != "Card" {
		return nil, fmt.Errorf("unexpected @type %q, expected \"Card\"", c.Type)
	}
	return &c, nil
}

// MarshalPretty renders the card as two-space-indented JSON.
func (c *Card) MarshalPretty() (string, error) {
	if c.Version == "" {
		c.Version = "1.0"
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
