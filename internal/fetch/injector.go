package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"fontd/internal/common/httpclient"
	"fontd/internal/resources"
)

// Injector abstracts the presentation layer that style sheets are injected into.
type Injector interface {
	// Inject starts loading url and returns a handle immediately.
	Inject(ctx context.Context, url string) (resources.Handle, error)
	// AwaitLoad blocks until the resource signals load or error, or timeout.
	AwaitLoad(ctx context.Context, h resources.Handle, timeout time.Duration) error
	// Remove takes the resource out of the presentation layer.
	Remove(h resources.Handle)
}

// maxSheetBytes bounds a downloaded style sheet.
const maxSheetBytes = 4 << 20

type sheet struct {
	url    string
	done   chan struct{}
	cancel context.CancelFunc
	css    string
	err    error
}

// HTTPInjector downloads style sheets in the background and keeps their text in
// memory, standing in for a document that links them.
type HTTPInjector struct {
	client  *http.Client
	timeout time.Duration
	seq     atomic.Uint64

	mu     sync.Mutex
	sheets map[resources.Handle]*sheet
}

// NewHTTPInjector returns an injector using client (nil means the shared client).
func NewHTTPInjector(client *http.Client) *HTTPInjector {
	if client == nil {
		client = httpclient.New()
	}
	return &HTTPInjector{client: client, timeout: time.Minute, sheets: make(map[resources.Handle]*sheet)}
}

// Inject implements Injector.
func (in *HTTPInjector) Inject(ctx context.Context, url string) (resources.Handle, error) {
	h := resources.Handle(fmt.Sprintf("sheet-%d", in.seq.Add(1)))
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), in.timeout)
	s := &sheet{url: url, done: make(chan struct{}), cancel: cancel}
	in.mu.Lock()
	in.sheets[h] = s
	in.mu.Unlock()
	go in.load(lctx, s)
	return h, nil
}

func (in *HTTPInjector) load(ctx context.Context, s *sheet) {
	defer close(s.done)
	defer s.cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.err = err
		return
	}
	req.Header.Set("Accept", "text/css,*/*;q=0.1")
	resp, err := in.client.Do(req)
	if err != nil {
		s.err = err
		return
	}
	defer resp.Body.Close()
	if err := httpclient.CheckStatus(resp); err != nil {
		s.err = err
		return
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBytes))
	if err != nil {
		s.err = err
		return
	}
	s.css = string(b)
}

func (in *HTTPInjector) lookup(h resources.Handle) (*sheet, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	s, ok := in.sheets[h]
	return s, ok
}

// AwaitLoad implements Injector.
func (in *HTTPInjector) AwaitLoad(ctx context.Context, h resources.Handle, timeout time.Duration) error {
	s, ok := in.lookup(h)
	if !ok {
		return ErrUnknownHandle
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return s.err
	case <-timer.C:
		return fmt.Errorf("%w after %s", ErrLoadTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Remove implements Injector.
func (in *HTTPInjector) Remove(h resources.Handle) {
	in.mu.Lock()
	s, ok := in.sheets[h]
	delete(in.sheets, h)
	in.mu.Unlock()
	if ok {
		s.cancel()
	}
}

// Sheet returns the downloaded text of a loaded sheet.
func (in *HTTPInjector) Sheet(h resources.Handle) (string, bool) {
	s, ok := in.lookup(h)
	if !ok {
		return "", false
	}
	select {
	case <-s.done:
		return s.css, s.err == nil
	default:
		return "", false
	}
}

// Len returns the number of injected sheets.
func (in *HTTPInjector) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.sheets)
}
