// Package phone normalizes national phone numbers into E.164 using a small
// per-country profile registry. New countries are added by registering a
// profile, not by editing the normalizer.
package phone

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// e164 is the general shape every normalized number must satisfy.
var e164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

var ErrUnknownCountry = errors.New("no phone profile for country")

// FormatError reports a national number the profile rejected; Example shows
// the caller what an accepted input looks like.
type FormatError struct {
	Country string
	Example string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid phone number for %s: expected format like %q", e.Country, e.Example)
}

// Profile describes how one country's national numbers are validated and
// prefixed. Validate, when set, replaces the plain length check.
type Profile struct {
	Country     string // ISO 3166-1 alpha-2
	CallingCode string // digits only, no plus
	Lengths     []int  // acceptable national-number digit counts
	Validate    func(digits string) bool
	Example     string
}

func (p Profile) accepts(digits string) bool {
	if p.Validate != nil {
		return p.Validate(digits)
	}
	for _, n := range p.Lengths {
		if len(digits) == n {
			return true
		}
	}
	return false
}

// Normalize converts a raw national number into E.164 under the given
// profile: strip non-digits, strip leading zeros, run the country check,
// prepend the calling code, and re-check the general E.164 shape.
func Normalize(raw string, p Profile) (string, error) {
	digits := stripNonDigits(raw)
	digits = strings.TrimLeft(digits, "0")

	if !p.accepts(digits) {
		return "", &FormatError{Country: p.Country, Example: p.Example}
	}

	out := "+" + p.CallingCode + digits
	if !e164.MatchString(out) {
		return "", &FormatError{Country: p.Country, Example: p.Example}
	}
	return out, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
