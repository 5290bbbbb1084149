package variant

import "testing"

func TestParseToken(t *testing.T) {
	cases := []struct {
		in   string
		want Key
		ok   bool
	}{
		{"regular", Key{400, Normal}, true},
		{"italic", Key{400, Italic}, true},
		{"700", Key{700, Normal}, true},
		{"700italic", Key{700, Italic}, true},
		{"100italic", Key{100, Italic}, true},
		{"bold", Key{}, false},
		{"", Key{}, false},
		{"italic700", Key{}, false},
		{"7x0", Key{}, false},
		{"950", Key{}, false},
		{"0italic", Key{}, false},
		{"450", Key{}, false},
		{"1000", Key{}, false},
	}
	for _, c := range cases {
		got, ok := ParseToken(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("%q -> %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	for _, tok := range []string{"regular", "italic", "300", "900italic"} {
		k, ok := ParseToken(tok)
		if !ok {
			t.Fatalf("parse %q", tok)
		}
		if got := Token(k); got != tok {
			t.Fatalf("Token(%v)=%q want %q", k, got, tok)
		}
	}
}

func TestDiscoverIgnoresUnknown(t *testing.T) {
	s := Discover([]string{"regular", "400", "700", "700italic", "wide", "oblique"})
	if len(s) != 3 {
		t.Fatalf("expected 3 keys (regular and 400 collapse), got %v", s.Keys())
	}
	if !s.Has(Key{700, Italic}) {
		t.Fatalf("missing 700italic")
	}
}

func TestDiscoverDropsOutOfRangeWeights(t *testing.T) {
	s := Discover([]string{"950", "0italic", "50"})
	if len(s) != 0 {
		t.Fatalf("expected no keys, got %v", s.Keys())
	}
	if _, ok := FindBest(Discover([]string{"950", "300"}), 400, Normal); !ok {
		t.Fatalf("a set with a valid weight must resolve")
	}
}

func TestFindBestFallbackOrder(t *testing.T) {
	available := Discover([]string{"regular", "400", "700", "700italic"})

	m, ok := FindBest(available, 700, Italic)
	if !ok || m.Key != (Key{700, Italic}) || !m.Exact || m.Degraded {
		t.Fatalf("exact: got %+v ok=%v", m, ok)
	}

	m, ok = FindBest(available, 500, Normal)
	if !ok || m.Key != (Key{400, Normal}) || m.Exact || m.Degraded {
		t.Fatalf("same-style fallback: got %+v ok=%v", m, ok)
	}

	m, ok = FindBest(Discover([]string{"italic"}), 400, Normal)
	if !ok || m.Key != (Key{400, Italic}) || !m.Degraded {
		t.Fatalf("opposite-style fallback: got %+v ok=%v", m, ok)
	}
}

func TestFindBestPrefersCloserWeights(t *testing.T) {
	available := Discover([]string{"100", "300", "900"})
	m, ok := FindBest(available, 800, Normal)
	if !ok || m.Key.Weight != 300 {
		t.Fatalf("expected 300 (earliest in preference order), got %+v", m)
	}
}

func TestFindBestEmpty(t *testing.T) {
	if _, ok := FindBest(Set{}, 400, Normal); ok {
		t.Fatalf("expected no match on empty set")
	}
}

func TestFindBestDeterministic(t *testing.T) {
	available := Discover([]string{"200italic", "600italic", "800"})
	first, _ := FindBest(available, 500, Italic)
	for i := 0; i < 50; i++ {
		m, _ := FindBest(available, 500, Italic)
		if m != first {
			t.Fatalf("non-deterministic: %+v vs %+v", m, first)
		}
	}
	if first.Key != (Key{600, Italic}) {
		t.Fatalf("expected 600italic, got %+v", first)
	}
}

func TestParseStyle(t *testing.T) {
	if s, err := ParseStyle("Italic"); err != nil || s != Italic {
		t.Fatalf("got %v %v", s, err)
	}
	if s, err := ParseStyle(""); err != nil || s != Normal {
		t.Fatalf("got %v %v", s, err)
	}
	if _, err := ParseStyle("oblique"); err == nil {
		t.Fatalf("expected error")
	}
}
