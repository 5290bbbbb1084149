package fetch

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/metrics"
	"fontd/internal/resources"
	"fontd/internal/variant"
)

// Defaults applied when corresponding StyleSheetConfig fields are unset.
const (
	DefaultStyleSheetURL = "https://fonts.googleapis.com/css2"
	DefaultLoadTimeout   = 10 * time.Second
)

// StyleSheetConfig configures StyleSheets.
type StyleSheetConfig struct {
	BaseURL     string
	Injector    Injector
	LoadTimeout time.Duration
	Retry       backoff.Policy
	Logger      zerolog.Logger
}

// StyleSheets injects per-family style sheets for a set of variants.
type StyleSheets struct {
	base    string
	inj     Injector
	timeout time.Duration
	retry   backoff.Policy
	log     zerolog.Logger
}

// NewStyleSheets constructs a StyleSheets fetcher, applying defaults.
func NewStyleSheets(cfg StyleSheetConfig) *StyleSheets {
	s := &StyleSheets{
		base:    cfg.BaseURL,
		inj:     cfg.Injector,
		timeout: cfg.LoadTimeout,
		retry:   cfg.Retry,
		log:     cfg.Logger,
	}
	if s.base == "" {
		s.base = DefaultStyleSheetURL
	}
	if s.timeout <= 0 {
		s.timeout = DefaultLoadTimeout
	}
	return s
}

// Injector returns the injector resources are loaded through.
func (s *StyleSheets) Injector() Injector { return s.inj }

// URL builds the css2-style request URL, e.g.
// base?family=Open+Sans:ital,wght@0,400;1,700&display=swap
func (s *StyleSheets) URL(family string, keys []variant.Key) string {
	sorted := append([]variant.Key(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Style != sorted[j].Style {
			return sorted[i].Style == variant.Normal
		}
		return sorted[i].Weight < sorted[j].Weight
	})
	tuples := make([]string, 0, len(sorted))
	for _, k := range sorted {
		ital := "0"
		if k.Style == variant.Italic {
			ital = "1"
		}
		tuples = append(tuples, ital+","+strconv.Itoa(k.Weight))
	}
	var b strings.Builder
	b.WriteString(s.base)
	if strings.Contains(s.base, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("family=")
	b.WriteString(url.QueryEscape(family))
	if len(tuples) > 0 {
		b.WriteString(":ital,wght@")
		b.WriteString(strings.Join(tuples, ";"))
	}
	b.WriteString("&display=swap")
	return b.String()
}

// Load injects a style sheet covering keys and waits for it to load. A handle
// whose load fails or times out is removed before the next attempt.
func (s *StyleSheets) Load(ctx context.Context, family string, keys []variant.Key) (resources.Handle, string, error) {
	if len(keys) == 0 {
		return "", "", fmt.Errorf("load %s: %w", family, ErrNoUsableVariant)
	}
	target := s.URL(family, keys)
	var handle resources.Handle
	start := time.Now()
	err := backoff.Retry(ctx, s.retry, func(ctx context.Context, attempt int) error {
		h, err := s.inj.Inject(ctx, target)
		if err != nil {
			metrics.AssetFetchesTotal.WithLabelValues("stylesheet", "error").Inc()
			return err
		}
		if err := s.inj.AwaitLoad(ctx, h, s.timeout); err != nil {
			s.inj.Remove(h)
			metrics.AssetFetchesTotal.WithLabelValues("stylesheet", "error").Inc()
			s.log.Debug().Str("family", family).Int("attempt", attempt).Err(err).Msg("style sheet attempt failed")
			return permanentIfAuth(err)
		}
		handle = h
		return nil
	})
	if err != nil {
		return "", target, fmt.Errorf("style sheet %s: %w", family, err)
	}
	metrics.AssetFetchesTotal.WithLabelValues("stylesheet", "ok").Inc()
	metrics.AssetFetchDuration.WithLabelValues("stylesheet").Observe(time.Since(start).Seconds())
	s.log.Debug().Str("family", family).Int("variants", len(keys)).Str("handle", string(handle)).Msg("style sheet loaded")
	return handle, target, nil
}

// Missing returns the keys in want that are not in have, in want's order.
func Missing(want []variant.Key, have variant.Set) []variant.Key {
	var out []variant.Key
	for _, k := range want {
		if !have.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
