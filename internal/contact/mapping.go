package contact

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
)

const (
	vcardUTCStamp = "20060102T150405Z"
	utcDateTime   = "2006-01-02T15:04:05Z"
)

// FromVCard maps a vCard to its JSContact Card. The mapping is total.
func FromVCard(card vcard.Card) *Card {
	c := &Card{Type: "Card", Version: "1.0"}

	if uid := card.Get(vcard.FieldUID); uid != nil {
		c.UID = uid.Value
	}
	if created := card.Get("CREATED"); created != nil {
		if t, err := time.Parse(vcardUTCStamp, created.Value); err == nil {
			c.Created = t.Format(utcDateTime)
		}
	}
	if rev := card.Get(vcard.FieldRevision); rev != nil {
		if t, err := time.Parse(vcardUTCStamp, rev.Value); err == nil {
			c.Updated = t.Format(utcDateTime)
		}
	}

	if fn := card.Get(vcard.FieldFormattedName); fn != nil {
		c.Name = &Name{Full: fn.Value}
	}
	if name := card.Name(); name != nil {
		if c.Name == nil {
			c.Name = &Name{}
		}
		add := func(kind, value string) {
			if value != "" {
				c.Name.Components = append(c.Name.Components, NameComponent{Kind: kind, Value: value})
			}
		}
		add("prefix", name.HonorificPrefix)
		add("given", name.GivenName)
		add("given2", name.AdditionalName)
		add("surname", name.FamilyName)
		add("suffix", name.HonorificSuffix)
	}

	for i, field := range card[vcard.FieldNickname] {
		if c.Nicknames == nil {
			c.Nicknames = make(map[string]Nickname)
		}
		c.Nicknames[fmt.Sprintf("n%d", i+1)] = Nickname{Name: field.Value}
	}
	for i, field := range card[vcard.FieldOrganization] {
		if c.Organizations == nil {
			c.Organizations = make(map[string]Org)
		}
		c.Organizations[fmt.Sprintf("o%d", i+1)] = Org{Name: strings.TrimSuffix(field.Value, ";")}
	}
	for i, field := range card[vcard.FieldTitle] {
		if c.Titles == nil {
			c.Titles = make(map[string]Title)
		}
		c.Titles[fmt.Sprintf("t%d", i+1)] = Title{Name: field.Value}
	}

	for i, field := range card[vcard.FieldEmail] {
		if c.Emails == nil {
			c.Emails = make(map[string]Email)
		}
		c.Emails[fmt.Sprintf("e%d", i+1)] = Email{
			Address:  field.Value,
			Contexts: contextsFromTypes(field.Params.Types()),
			Pref:     prefFromParams(field.Params),
		}
	}

	for i, field := range card[vcard.FieldTelephone] {
		if c.Phones == nil {
			c.Phones = make(map[string]Phone)
		}
		phone := Phone{
			Number:   field.Value,
			Contexts: contextsFromTypes(field.Params.Types()),
			Pref:     prefFromParams(field.Params),
		}
		for _, t := range field.Params.Types() {
			var feature string
			switch strings.ToLower(t) {
			case "cell":
				feature = "mobile"
			case "fax":
				feature = "fax"
			case "text":
				feature = "text"
			case "voice":
				feature = "voice"
			default:
				continue
			}
			if phone.Features == nil {
				phone.Features = make(map[string]bool)
			}
			phone.Features[feature] = true
		}
		c.Phones[fmt.Sprintf("ph%d", i+1)] = phone
	}

	for i, field := range card[vcard.FieldAddress] {
		// ADR is a seven-part semicolon list:
		// po-box;extended;street;locality;region;postcode;country
		parts := strings.Split(field.Value, ";")
		part := func(n int) string {
			if n < len(parts) {
				return parts[n]
			}
			return ""
		}
		if c.Addresses == nil {
			c.Addresses = make(map[string]Address)
		}
		c.Addresses[fmt.Sprintf("a%d", i+1)] = Address{
			Street:   part(2),
			Locality: part(3),
			Region:   part(4),
			Postcode: part(5),
			Country:  part(6),
			Contexts: contextsFromTypes(field.Params.Types()),
		}
	}

	for i, field := range card[vcard.FieldNote] {
		if c.Notes == nil {
			c.Notes = make(map[string]Note)
		}
		c.Notes[fmt.Sprintf("note%d", i+1)] = Note{Note: field.Value}
	}
	for i, field := range card[vcard.FieldURL] {
		if c.Links == nil {
			c.Links = make(map[string]Link)
		}
		c.Links[fmt.Sprintf("l%d", i+1)] = Link{URI: field.Value}
	}

	if bday := card.Get(vcard.FieldBirthday); bday != nil {
		c.addAnniversary("birth", bday.Value)
	}
	if anniv := card.Get(vcard.FieldAnniversary); anniv != nil {
		c.addAnniversary("wedding", anniv.Value)
	}

	return c
}

func (c *Card) addAnniversary(kind, date string) {
	if c.Anniversaries == nil {
		c.Anniversaries = make(map[string]Anniversary)
	}
	c.Anniversaries[fmt.Sprintf("k%d", len(c.Anniversaries)+1)] = Anniversary{
		Kind: kind,
		Date: normalizeDate(date),
	}
}

// VCard maps a card back to vCard. The second return is false when the value
// has no legacy equivalent: a card with neither a name nor any other mappable
// property. That absence is a semantic gap in the mapping, never a syntax
// error.
func (c *Card) VCard() (vcard.Card, bool) {
	card := make(vcard.Card)
	mapped := 0

	card.SetValue(vcard.FieldVersion, "4.0")
	if c.UID != "" {
		card.SetValue(vcard.FieldUID, c.UID)
		mapped++
	}
	if c.Created != "" {
		if t, err := time.Parse(utcDateTime, c.Created); err == nil {
			card.SetValue("CREATED", t.Format(vcardUTCStamp))
			mapped++
		}
	}
	if c.Updated != "" {
		if t, err := time.Parse(utcDateTime, c.Updated); err == nil {
			card.SetValue(vcard.FieldRevision, t.Format(vcardUTCStamp))
			mapped++
		}
	}

	if c.Name != nil {
		name := &vcard.Name{}
		for _, comp := range c.Name.Components {
			switch comp.Kind {
			case "prefix":
				name.HonorificPrefix = comp.Value
			case "given":
				name.GivenName = comp.Value
			case "given2":
				name.AdditionalName = comp.Value
			case "surname":
				name.FamilyName = comp.Value
			case "suffix":
				name.HonorificSuffix = comp.Value
			}
		}
		full := c.Name.Full
		if full == "" {
			full = strings.TrimSpace(name.GivenName + " " + name.FamilyName)
		}
		if full != "" {
			card.SetValue(vcard.FieldFormattedName, full)
			mapped++
		}
		if len(c.Name.Components) > 0 {
			card.AddName(name)
			mapped++
		}
	}

	for _, id := range slices.Sorted(maps.Keys(c.Nicknames)) {
		card.AddValue(vcard.FieldNickname, c.Nicknames[id].Name)
		mapped++
	}
	for _, id := range slices.Sorted(maps.Keys(c.Organizations)) {
		card.AddValue(vcard.FieldOrganization, c.Organizations[id].Name)
		mapped++
	}
	for _, id := range slices.Sorted(maps.Keys(c.Titles)) {
		card.AddValue(vcard.FieldTitle, c.Titles[id].Name)
		mapped++
	}

	for _, id := range slices.Sorted(maps.Keys(c.Emails)) {
		email := c.Emails[id]
		field := &vcard.Field{Value: email.Address, Params: make(vcard.Params)}
		addContextTypes(field, email.Contexts)
		if email.Pref > 0 {
			field.Params.Set(vcard.ParamPreferred, strconv.Itoa(email.Pref))
		}
		card.Add(vcard.FieldEmail, field)
		mapped++
	}

	for _, id := range slices.Sorted(maps.Keys(c.Phones)) {
		phone := c.Phones[id]
		field := &vcard.Field{Value: phone.Number, Params: make(vcard.Params)}
		for _, feature := range slices.Sorted(maps.Keys(phone.Features)) {
			if !phone.Features[feature] {
				continue
			}
			switch feature {
			case "mobile":
				field.Params.Add(vcard.ParamType, "CELL")
			case "fax", "text", "voice":
				field.Params.Add(vcard.ParamType, strings.ToUpper(feature))
			}
		}
		addContextTypes(field, phone.Contexts)
		if phone.Pref > 0 {
			field.Params.Set(vcard.ParamPreferred, strconv.Itoa(phone.Pref))
		}
		card.Add(vcard.FieldTelephone, field)
		mapped++
	}

	for _, id := range slices.Sorted(maps.Keys(c.Addresses)) {
		addr := c.Addresses[id]
		field := &vcard.Field{
			Value:  strings.Join([]string{"", "", addr.Street, addr.Locality, addr.Region, addr.Postcode, addr.Country}, ";"),
			Params: make(vcard.Params),
		}
		addContextTypes(field, addr.Contexts)
		card.Add(vcard.FieldAddress, field)
		mapped++
	}

	for _, id := range slices.Sorted(maps.Keys(c.Notes)) {
		card.AddValue(vcard.FieldNote, c.Notes[id].Note)
		mapped++
	}
	for _, id := range slices.Sorted(maps.Keys(c.Links)) {
		card.AddValue(vcard.FieldURL, c.Links[id].URI)
		mapped++
	}
	for _, id := range slices.Sorted(maps.Keys(c.Anniversaries)) {
		anniv := c.Anniversaries[id]
		switch anniv.Kind {
		case "birth":
			card.SetValue(vcard.FieldBirthday, anniv.Date)
			mapped++
		case "wedding":
			card.SetValue(vcard.FieldAnniversary, anniv.Date)
			mapped++
		}
	}

	if mapped == 0 {
		return nil, false
	}
	return card, true
}

func contextsFromTypes(types []string) map[string]bool {
	var contexts map[string]bool
	for _, t := range types {
		var ctx string
		switch strings.ToLower(t) {
		case "work":
			ctx = "work"
		case "home":
			ctx = "private"
		default:
			continue
		}
		if contexts == nil {
			contexts = make(map[string]bool)
		}
		contexts[ctx] = true
	}
	return contexts
}

func addContextTypes(field *vcard.Field, contexts map[string]bool) {
	for _, ctx := range slices.Sorted(maps.Keys(contexts)) {
		if !contexts[ctx] {
			continue
		}
		switch ctx {
		case "work":
			field.Params.Add(vcard.ParamType, "WORK")
		case "private":
			field.Params.Add(vcard.ParamType, "HOME")
		}
	}
}

func prefFromParams(params vcard.Params) int {
	if v := params.Get(vcard.ParamPreferred); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// normalizeDate rewrites the compact vCard date form (19900101) as the
// JSContact form (1990-01-01); anything else passes through unchanged.
func normalizeDate(s string) string {
	if len(s) == 8 {
		if _, err := time.Parse("20060102", s); err == nil {
			return s[:4] + "-" + s[4:6] + "-" + s[6:]
		}
	}
	return s
}
