package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/backoff"
	"fontd/internal/catalog"
	"fontd/internal/common/httpclient"
	"fontd/internal/metrics"
	"fontd/internal/variant"
)

// DefaultMaxBinaryBytes bounds one downloaded outline payload.
const DefaultMaxBinaryBytes = 20 << 20

// CatalogLookup resolves a family to its catalog entry.
type CatalogLookup interface {
	FindFamily(ctx context.Context, family string) (catalog.Entry, bool, error)
}

// BinaryConfig configures Binaries.
type BinaryConfig struct {
	Catalog  CatalogLookup
	Client   *http.Client
	Cache    *BinaryCache
	Retry    backoff.Policy
	MaxBytes int64
	Now      func() time.Time
	Logger   zerolog.Logger
}

// Binaries downloads raw outline payloads named by the catalog.
type Binaries struct {
	cat      CatalogLookup
	client   *http.Client
	cache    *BinaryCache
	retry    backoff.Policy
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

// NewBinaries constructs a Binaries fetcher, applying defaults.
func NewBinaries(cfg BinaryConfig) *Binaries {
	b := &Binaries{
		cat:      cfg.Catalog,
		client:   cfg.Client,
		cache:    cfg.Cache,
		retry:    cfg.Retry,
		maxBytes: cfg.MaxBytes,
		now:      cfg.Now,
		log:      cfg.Logger,
	}
	if b.client == nil {
		b.client = httpclient.New()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.cache == nil {
		b.cache = NewBinaryCache(0, 0, b.now)
	}
	if b.maxBytes <= 0 {
		b.maxBytes = DefaultMaxBinaryBytes
	}
	return b
}

// Cache exposes the payload cache.
func (b *Binaries) Cache() *BinaryCache { return b.cache }

// Fetch resolves (weight, style) against the family's catalog entry and returns the
// payload of the best match.
func (b *Binaries) Fetch(ctx context.Context, family string, weight int, style variant.Style) (BinaryEntry, error) {
	reqKey := BinaryKey{Family: family, Weight: weight, Style: style}
	if e, ok := b.cache.Get(reqKey); ok {
		return e, nil
	}
	entry, ok, err := b.cat.FindFamily(ctx, family)
	if err != nil {
		return BinaryEntry{}, err
	}
	if !ok {
		return BinaryEntry{}, fmt.Errorf("%q: %w", family, ErrFamilyNotFound)
	}
	m, ok := variant.FindBest(variant.Discover(entry.Variants), weight, style)
	if !ok {
		return BinaryEntry{}, fmt.Errorf("%q: %w", family, ErrNoUsableVariant)
	}
	if m.Degraded {
		b.log.Warn().Str("family", family).Int("weight", weight).Str("style", string(style)).
			Str("resolved", m.Key.String()).Msg("requested style unavailable; using opposite style")
	}
	e, err := b.FetchVariant(ctx, entry, m.Key)
	if err != nil {
		return BinaryEntry{}, err
	}
	b.cache.Put(reqKey, e)
	return e, nil
}

// Cached returns a cached payload for the exact requested key without fetching.
func (b *Binaries) Cached(family string, weight int, style variant.Style) (BinaryEntry, bool) {
	return b.cache.Get(BinaryKey{Family: family, Weight: weight, Style: style})
}

// FetchVariant downloads the payload for an already-resolved key of entry.
func (b *Binaries) FetchVariant(ctx context.Context, entry catalog.Entry, k variant.Key) (BinaryEntry, error) {
	key := BinaryKey{Family: entry.Family, Weight: k.Weight, Style: k.Style}
	if e, ok := b.cache.Get(key); ok {
		return e, nil
	}
	src, ok := fileFor(entry, k)
	if !ok {
		return BinaryEntry{}, fmt.Errorf("%q %s: %w", entry.Family, k, ErrNoFile)
	}
	start := time.Now()
	var data []byte
	err := backoff.Retry(ctx, b.retry, func(ctx context.Context, attempt int) error {
		d, err := b.download(ctx, src)
		if err != nil {
			b.log.Debug().Str("family", entry.Family).Str("variant", k.String()).Int("attempt", attempt).Err(err).Msg("binary fetch attempt failed")
			if httpclient.IsNotFound(err) {
				return backoff.Permanent(err)
			}
			return permanentIfAuth(err)
		}
		data = d
		return nil
	})
	if err != nil {
		metrics.AssetFetchesTotal.WithLabelValues("binary", "error").Inc()
		return BinaryEntry{}, fmt.Errorf("binary %q %s: %w", entry.Family, k, err)
	}
	elapsed := time.Since(start)
	metrics.AssetFetchesTotal.WithLabelValues("binary", "ok").Inc()
	metrics.AssetFetchDuration.WithLabelValues("binary").Observe(elapsed.Seconds())
	e := BinaryEntry{Data: data, Variant: k, URL: src, FetchedAt: b.now(), FetchDuration: elapsed}
	b.cache.Put(key, e)
	return e, nil
}

func (b *Binaries) download(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := httpclient.CheckStatus(resp); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > b.maxBytes {
		return nil, backoff.Permanent(fmt.Errorf("payload exceeds %d bytes", b.maxBytes))
	}
	return data, nil
}

// fileFor finds the download URL for k. Catalogs key the regular variants either
// by name or by numeric weight.
func fileFor(entry catalog.Entry, k variant.Key) (string, bool) {
	if u, ok := entry.Files[variant.Token(k)]; ok && u != "" {
		return u, true
	}
	alt := strconv.Itoa(k.Weight)
	if k.Style == variant.Italic {
		alt += "italic"
	}
	if u, ok := entry.Files[alt]; ok && u != "" {
		return u, true
	}
	return "", false
}

func permanentIfAuth(err error) error {
	if httpclient.IsAuth(err) {
		return backoff.Permanent(err)
	}
	return err
}
