package manager

import (
	"fmt"
	"strings"
	"time"

	"fontd/internal/resources"
	"fontd/internal/variant"
)

// LoadState is the lifecycle state of one family.
type LoadState string

const (
	StateIdle   LoadState = "idle"
	StateQueued LoadState = "queued"
	StateActive LoadState = "active"
	StateLoaded LoadState = "loaded"
	StateFailed LoadState = "failed"
)

// Priority orders queued loads. Higher values are admitted first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "normal"
	}
}

// ParsePriority accepts the wire names; empty means normal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return PriorityNormal, nil
	case "low":
		return PriorityLow, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	}
	return PriorityNormal, fmt.Errorf("unknown priority %q", s)
}

// LoadRequest describes one load. Weight and Style select the variant for
// single-variant purposes and default to regular.
type LoadRequest struct {
	Family      string
	Priority    Priority
	Purpose     resources.Purpose
	Weight      int
	Style       variant.Style
	ForceReload bool
}

func (r LoadRequest) normalized() LoadRequest {
	r.Family = strings.TrimSpace(r.Family)
	if r.Purpose == "" {
		r.Purpose = resources.PurposePreview
	}
	if r.Weight <= 0 {
		r.Weight = variant.Regular.Weight
	}
	if r.Style != variant.Italic {
		r.Style = variant.Normal
	}
	return r
}

// queueEntry is a pending load. At most one exists per family.
type queueEntry struct {
	req LoadRequest
	seq uint64
}

// familyState is the manager's bookkeeping for one family.
type familyState struct {
	state       LoadState
	req         LoadRequest
	purpose     resources.Purpose // purpose of the resources currently loaded
	pending     resources.Purpose // upgrade requested while active
	attempts    int
	lastErr     error
	lastAttempt time.Time
	loadedAt    time.Time
	// registered maps loaded variants to their PostScript names.
	registered map[variant.Key]string
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Online    bool
	SlowLink  bool
	Active    int
	MaxActive int
	Queued    []string
}
