package fontmeta

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"fontd/internal/variant"
)

func TestDescribeRealFont(t *testing.T) {
	info, err := Describe(goregular.TTF)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if info.PostScriptName == "" {
		t.Fatalf("expected a postscript name")
	}
	if info.NumGlyphs <= 0 {
		t.Fatalf("numGlyphs=%d", info.NumGlyphs)
	}
}

func TestDescribeRejectsGarbage(t *testing.T) {
	if _, err := Describe(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := Describe([]byte("not a font at all")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestSynthesizePostScriptName(t *testing.T) {
	cases := []struct {
		family string
		key    variant.Key
		want   string
	}{
		{"Roboto", variant.Key{Weight: 400, Style: variant.Normal}, "Roboto-Regular"},
		{"Roboto", variant.Key{Weight: 400, Style: variant.Italic}, "Roboto-Italic"},
		{"Open Sans", variant.Key{Weight: 700, Style: variant.Italic}, "OpenSans-BoldItalic"},
		{"Inter", variant.Key{Weight: 450, Style: variant.Normal}, "Inter-W450"},
	}
	for _, c := range cases {
		if got := SynthesizePostScriptName(c.family, c.key); got != c.want {
			t.Fatalf("%s %v: got %q want %q", c.family, c.key, got, c.want)
		}
	}
}

func TestPostScriptNameFallsBack(t *testing.T) {
	got := PostScriptName([]byte("junk"), "Lobster", variant.Regular)
	if got != "Lobster-Regular" {
		t.Fatalf("got %q", got)
	}
	info, _ := Describe(goregular.TTF)
	if got := PostScriptName(goregular.TTF, "Go", variant.Regular); got != info.PostScriptName {
		t.Fatalf("expected embedded name %q, got %q", info.PostScriptName, got)
	}
}
