// Package contact converts between vCard documents and their JSContact
// counterpart.
package contact

import (
	"strings"

	"github.com/emersion/go-vcard"
)

// Decode parses a vCard document. Pasted text usually arrives with bare
// newlines, so line endings are normalized to the CRLF the grammar requires.
func Decode(text string) (vcard.Card, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	return vcard.NewDecoder(strings.NewReader(text)).Decode()
}

// Encode serializes a card as vCard 4.0. FN is required by the grammar, so
// one is derived from N when absent.
func Encode(card vcard.Card) (string, error) {
	card.SetValue(vcard.FieldVersion, "4.0")
	if card.Get(vcard.FieldFormattedName) == nil {
		fn := ""
		if name := card.Name(); name != nil {
			fn = strings.TrimSpace(name.GivenName + " " + name.FamilyName)
		}
		card.SetValue(vcard.FieldFormattedName, fn)
	}
	var buf strings.Builder
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", err
	}
	return buf.String(), nil
}
