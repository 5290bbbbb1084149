// Package variant maps raw catalog variant tokens ("regular", "700italic", ...) to
// normalized weight/style keys and picks the best available key for a request.
package variant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Style is the slant of a variant.
type Style string

const (
	Normal Style = "normal"
	Italic Style = "italic"
)

// ParseStyle accepts "normal", "italic" and the empty string (normal).
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal", "regular":
		return Normal, nil
	case "italic":
		return Italic, nil
	default:
		return "", fmt.Errorf("unknown style %q", s)
	}
}

// Opposite returns the other style.
func (s Style) Opposite() Style {
	if s == Italic {
		return Normal
	}
	return Italic
}

// Key is a normalized (weight, style) pair.
type Key struct {
	Weight int
	Style  Style
}

func (k Key) String() string { return Token(k) }

// Regular is the 400 normal key.
var Regular = Key{Weight: 400, Style: Normal}

// PreferenceOrder lists weights closest-to-regular first.
var PreferenceOrder = [...]int{400, 500, 300, 600, 200, 700, 100, 800, 900}

// Set is a collection of available keys.
type Set map[Key]struct{}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the members ordered by style (normal first) then weight.
func (s Set) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Style != out[j].Style {
			return out[i].Style == Normal
		}
		return out[i].Weight < out[j].Weight
	})
	return out
}

// ParseToken classifies one catalog token. Unrecognized tokens return false.
func ParseToken(token string) (Key, bool) {
	switch token {
	case "regular":
		return Regular, true
	case "italic":
		return Key{Weight: 400, Style: Italic}, true
	}
	digits, style := token, Normal
	if strings.HasSuffix(token, "italic") {
		digits, style = strings.TrimSuffix(token, "italic"), Italic
	}
	if digits == "" || !allDigits(digits) {
		return Key{}, false
	}
	w, err := strconv.Atoi(digits)
	if err != nil || w < 100 || w > 900 || w%100 != 0 {
		return Key{}, false
	}
	return Key{Weight: w, Style: style}, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Token is the inverse of ParseToken.
func Token(k Key) string {
	switch {
	case k.Weight == 400 && k.Style == Normal:
		return "regular"
	case k.Weight == 400 && k.Style == Italic:
		return "italic"
	case k.Style == Italic:
		return strconv.Itoa(k.Weight) + "italic"
	default:
		return strconv.Itoa(k.Weight)
	}
}

// Discover classifies every raw token, ignoring the ones it does not recognize.
func Discover(tokens []string) Set {
	out := make(Set, len(tokens))
	for _, t := range tokens {
		if k, ok := ParseToken(t); ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// Match is the outcome of FindBest. Degraded is set when the style had to be
// substituted because no variant of the requested style exists.
type Match struct {
	Key      Key
	Exact    bool
	Degraded bool
}

// FindBest resolves (weight, style) against the available set: exact match first,
// then the same style in PreferenceOrder, then the opposite style in PreferenceOrder.
// The second return is false when nothing usable exists, which callers treat as a
// permanent failure for the family.
func FindBest(available Set, weight int, style Style) (Match, bool) {
	if style != Italic {
		style = Normal
	}
	want := Key{Weight: weight, Style: style}
	if available.Has(want) {
		return Match{Key: want, Exact: true}, true
	}
	for _, w := range PreferenceOrder {
		if k := (Key{Weight: w, Style: style}); available.Has(k) {
			return Match{Key: k}, true
		}
	}
	alt := style.Opposite()
	for _, w := range PreferenceOrder {
		if k := (Key{Weight: w, Style: alt}); available.Has(k) {
			return Match{Key: k, Degraded: true}, true
		}
	}
	return Match{}, false
}
