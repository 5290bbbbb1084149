package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fontd/internal/catalog"
	"fontd/internal/fetch"
	"fontd/internal/httpapi"
	"fontd/internal/manager"
	"fontd/internal/registry"
	"fontd/internal/resources"
)

// fontHost fakes the remote catalog, style-sheet and file endpoints.
type fontHost struct {
	*httptest.Server
	mu    sync.Mutex
	files int
}

func newFontHost(t *testing.T) *fontHost {
	t.Helper()
	h := &fontHost{}
	mux := http.NewServeMux()
	mux.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"items":[
			{"family":"Roboto","category":"sans-serif","variants":["regular","italic","700"],
			 "files":{"regular":"%[1]s/files/r400.ttf","italic":"%[1]s/files/r400i.ttf","700":"%[1]s/files/r700.ttf"}},
			{"family":"Lobster","category":"display","variants":["regular"],
			 "files":{"regular":"%[1]s/files/lobster.ttf"}}
		]}`, h.URL)
	})
	mux.HandleFunc("/css2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		fmt.Fprintf(w, "/* %s */ @font-face { font-family: x; }", r.URL.Query().Get("family"))
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.files++
		h.mu.Unlock()
		_, _ = w.Write([]byte("FONT" + r.URL.Path))
	})
	h.Server = httptest.NewServer(mux)
	t.Cleanup(h.Close)
	return h
}

func (h *fontHost) fileRequests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.files
}

type recorder struct {
	mu   sync.Mutex
	recs []registry.Record
}

func (r *recorder) OnFontAvailable(rec registry.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.recs))
	for _, rec := range r.recs {
		out = append(out, rec.PostScriptName)
	}
	return out
}

// newServer wires the full stack against host and serves it over HTTP.
func newServer(t *testing.T, host *fontHost, tweak func(*manager.ManagerConfig)) (*httptest.Server, *manager.Manager, *recorder) {
	t.Helper()
	log := zerolog.Nop()
	cat := catalog.New(catalog.Config{Source: catalog.NewHTTPSource(host.URL+"/catalog", "", log)})
	inj := fetch.NewHTTPInjector(nil)
	rec := &recorder{}
	cfg := manager.ManagerConfig{
		Catalog:     cat,
		StyleSheets: fetch.NewStyleSheets(fetch.StyleSheetConfig{BaseURL: host.URL + "/css2", Injector: inj}),
		Binaries:    fetch.NewBinaries(fetch.BinaryConfig{Catalog: cat}),
		Resources:   resources.New(resources.Config{Remover: inj}),
		Registry:    registry.New(rec, log),
		MaxActive:   2,
		LoadTimeout: 10 * time.Second,
	}
	if tweak != nil {
		tweak(&cfg)
	}
	mgr := manager.NewWithConfig(cfg)
	mgr.Start(context.Background())
	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		_ = mgr.Close()
	})
	return srv, mgr, rec
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader([]byte(payload)))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

// waitForState polls GET /fonts/{family} until its body reports state.
func waitForState(t *testing.T, base, family, state string) []byte {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	want := fmt.Sprintf(`"state":%q`, state)
	for {
		resp, body := httpGet(t, base+"/fonts/"+family)
		if resp.StatusCode == http.StatusOK && strings.Contains(string(body), want) {
			return body
		}
		if time.Now().After(deadline) {
			t.Fatalf("%s never reached %s; last status=%d body=%s", family, state, resp.StatusCode, body)
		}
		time.Sleep(20 * time.Millisecond)
	}
}
