package resources

import (
	"time"

	"fontd/internal/variant"
)

// Purpose classifies why a presentation resource was loaded.
type Purpose string

const (
	PurposeContext     Purpose = "context"
	PurposePreview     Purpose = "preview"
	PurposeStatic      Purpose = "static"
	PurposeTextEditing Purpose = "text-editing"
)

// ParsePurpose accepts the wire names; empty means preview.
func ParsePurpose(s string) (Purpose, bool) {
	switch Purpose(s) {
	case "":
		return PurposePreview, true
	case PurposeContext, PurposePreview, PurposeStatic, PurposeTextEditing:
		return Purpose(s), true
	}
	return "", false
}

func (p Purpose) rank() int {
	switch p {
	case PurposeTextEditing:
		return 3
	case PurposeStatic:
		return 2
	case PurposePreview:
		return 1
	default:
		return 0
	}
}

// Covers reports whether a family loaded for p already satisfies a request for q.
func (p Purpose) Covers(q Purpose) bool { return p.AllVariants() || !q.AllVariants() }

// AllVariants reports whether the purpose needs every available variant rather
// than the single nearest one.
func (p Purpose) AllVariants() bool { return p == PurposeTextEditing || p == PurposeStatic }

// Protected purposes are never removed by the sweep.
func (p Purpose) Protected() bool { return p == PurposeTextEditing || p == PurposeStatic }

// Upgrade returns whichever of p and q is closer to text-editing.
func Upgrade(p, q Purpose) Purpose {
	if q.rank() > p.rank() {
		return q
	}
	return p
}

// Handle identifies an injected presentation resource.
type Handle string

// Remover takes an injected resource out of the presentation layer.
type Remover interface {
	Remove(h Handle)
}

// DocumentScanner reports family names currently referenced by the live document.
type DocumentScanner interface {
	ReferencedFamilies() []string
}

// ScannerFunc adapts a function to DocumentScanner.
type ScannerFunc func() []string

func (f ScannerFunc) ReferencedFamilies() []string { return f() }

// Tracker is the per-family bookkeeping for injected resources.
type Tracker struct {
	Family   string
	Handles  []Handle
	URLs     []string
	Purpose  Purpose
	Variants variant.Set
	Created  time.Time
	LastUsed time.Time
	Usage    int
}

func (t *Tracker) clone() Tracker {
	out := *t
	out.Handles = append([]Handle(nil), t.Handles...)
	out.URLs = append([]string(nil), t.URLs...)
	out.Variants = make(variant.Set, len(t.Variants))
	for k := range t.Variants {
		out.Variants[k] = struct{}{}
	}
	return out
}
