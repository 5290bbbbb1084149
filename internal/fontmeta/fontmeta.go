// Package fontmeta inspects downloaded outline payloads.
package fontmeta

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/image/font/sfnt"

	"fontd/internal/variant"
)

// Info is what the registry needs to know about a payload.
type Info struct {
	PostScriptName string
	FullName       string
	NumGlyphs      int
}

// ErrEmpty is returned for zero-length payloads.
var ErrEmpty = errors.New("empty font payload")

// Describe parses a TrueType/OpenType payload and reads its name table.
func Describe(data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return Info{}, fmt.Errorf("parse font: %w", err)
	}
	var buf sfnt.Buffer
	info := Info{NumGlyphs: f.NumGlyphs()}
	if ps, err := f.Name(&buf, sfnt.NameIDPostScript); err == nil {
		info.PostScriptName = ps
	}
	if full, err := f.Name(&buf, sfnt.NameIDFull); err == nil {
		info.FullName = full
	}
	return info, nil
}

var weightNames = map[int]string{
	100: "Thin",
	200: "ExtraLight",
	300: "Light",
	400: "Regular",
	500: "Medium",
	600: "SemiBold",
	700: "Bold",
	800: "ExtraBold",
	900: "Black",
}

// SynthesizePostScriptName builds "Family-StyleName" for payloads that carry no
// usable name record, e.g. "Open Sans" 700 italic -> "OpenSans-BoldItalic".
func SynthesizePostScriptName(family string, k variant.Key) string {
	base := strings.Join(strings.Fields(family), "")
	w, ok := weightNames[k.Weight]
	if !ok {
		w = fmt.Sprintf("W%d", k.Weight)
	}
	suffix := w
	if k.Style == variant.Italic {
		if k.Weight == 400 {
			suffix = "Italic"
		} else {
			suffix = w + "Italic"
		}
	}
	return base + "-" + suffix
}

// PostScriptName returns the name embedded in data, falling back to the
// synthesized one when the payload cannot be parsed or has no such record.
func PostScriptName(data []byte, family string, k variant.Key) string {
	if info, err := Describe(data); err == nil && info.PostScriptName != "" {
		return info.PostScriptName
	}
	return SynthesizePostScriptName(family, k)
}
