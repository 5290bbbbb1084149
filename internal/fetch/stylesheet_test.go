package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fontd/internal/resources"
	"fontd/internal/variant"
)

func TestStyleSheetURL(t *testing.T) {
	s := NewStyleSheets(StyleSheetConfig{BaseURL: "http://fonts.test/css2"})
	got := s.URL("Open Sans", []variant.Key{
		{Weight: 700, Style: variant.Italic},
		{Weight: 400, Style: variant.Normal},
		{Weight: 700, Style: variant.Normal},
	})
	want := "http://fonts.test/css2?family=Open+Sans:ital,wght@0,400;0,700;1,700&display=swap"
	if got != want {
		t.Fatalf("got  %s\nwant %s", got, want)
	}
	if d := NewStyleSheets(StyleSheetConfig{}).URL("Lobster", nil); !strings.HasPrefix(d, DefaultStyleSheetURL+"?family=Lobster&") {
		t.Fatalf("default base not applied: %s", d)
	}
}

// scriptedInjector fails AwaitLoad for the first failN handles.
type scriptedInjector struct {
	mu      sync.Mutex
	seq     int
	failN   int
	removed []resources.Handle
	urls    []string
	err     error
}

func (s *scriptedInjector) Inject(_ context.Context, url string) (resources.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.urls = append(s.urls, url)
	return resources.Handle(fmt.Sprintf("h%d", s.seq)), nil
}

func (s *scriptedInjector) AwaitLoad(_ context.Context, h resources.Handle, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq <= s.failN {
		if s.err != nil {
			return s.err
		}
		return ErrLoadTimeout
	}
	return nil
}

func (s *scriptedInjector) Remove(h resources.Handle) {
	s.mu.Lock()
	s.removed = append(s.removed, h)
	s.mu.Unlock()
}

func TestStyleSheetLoadRemovesStaleHandleAndRetries(t *testing.T) {
	inj := &scriptedInjector{failN: 1}
	s := NewStyleSheets(StyleSheetConfig{Injector: inj, Retry: fastRetry(3)})
	h, url, err := s.Load(context.Background(), "Roboto", []variant.Key{variant.Regular})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if h != "h2" {
		t.Fatalf("expected second handle, got %s", h)
	}
	if len(inj.removed) != 1 || inj.removed[0] != "h1" {
		t.Fatalf("stale handle not removed: %v", inj.removed)
	}
	if !strings.Contains(url, "family=Roboto:ital,wght@0,400") {
		t.Fatalf("url=%s", url)
	}
}

func TestStyleSheetLoadGivesUpAfterCeiling(t *testing.T) {
	inj := &scriptedInjector{failN: 100}
	s := NewStyleSheets(StyleSheetConfig{Injector: inj, Retry: fastRetry(3)})
	_, _, err := s.Load(context.Background(), "Roboto", []variant.Key{variant.Regular})
	if !errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if inj.seq != 3 || len(inj.removed) != 3 {
		t.Fatalf("attempts=%d removed=%d", inj.seq, len(inj.removed))
	}
}

func TestStyleSheetLoadRequiresKeys(t *testing.T) {
	s := NewStyleSheets(StyleSheetConfig{Injector: &scriptedInjector{}})
	if _, _, err := s.Load(context.Background(), "Roboto", nil); !errors.Is(err, ErrNoUsableVariant) {
		t.Fatalf("got %v", err)
	}
}

func TestHTTPInjectorLoadsAndRemoves(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("@font-face{font-family:'Roboto'}"))
	}))
	defer srv.Close()

	in := NewHTTPInjector(srv.Client())
	h, err := in.Inject(context.Background(), srv.URL+"/css2?family=Roboto")
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if err := in.AwaitLoad(context.Background(), h, 2*time.Second); err != nil {
		t.Fatalf("await: %v", err)
	}
	css, ok := in.Sheet(h)
	if !ok || !strings.Contains(css, "Roboto") {
		t.Fatalf("sheet=%q ok=%v", css, ok)
	}
	in.Remove(h)
	if in.Len() != 0 {
		t.Fatalf("expected no sheets after remove")
	}
	if err := in.AwaitLoad(context.Background(), h, time.Second); !errors.Is(err, ErrUnknownHandle) {
		t.Fatalf("expected unknown handle, got %v", err)
	}
}

func TestHTTPInjectorTimesOut(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	in := NewHTTPInjector(srv.Client())
	h, _ := in.Inject(context.Background(), srv.URL)
	err := in.AwaitLoad(context.Background(), h, 20*time.Millisecond)
	if !errors.Is(err, ErrLoadTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	in.Remove(h)
}
