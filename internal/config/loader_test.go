package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", `addr: :9999
log_level: debug
catalog_url: http://catalog.test/v1/fonts
catalog_ttl: 12h
max_active: 3
resource_max_age: 45m
static_families:
  - Roboto
  - Open Sans
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9999" || cfg.LogLevel != "debug" || cfg.CatalogURL != "http://catalog.test/v1/fonts" || cfg.MaxActive != 3 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.CatalogTTL.Std() != 12*time.Hour || cfg.ResourceMaxAge.Std() != 45*time.Minute {
		t.Fatalf("unexpected durations: %v %v", cfg.CatalogTTL.Std(), cfg.ResourceMaxAge.Std())
	}
	if len(cfg.StaticFamilies) != 2 || cfg.StaticFamilies[1] != "Open Sans" {
		t.Fatalf("unexpected static families: %v", cfg.StaticFamilies)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":7070","api_key":"k","load_timeout":"90s","binary_cache_entries":64,"cors_origins":["http://localhost:3000"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.APIKey != "k" || cfg.LoadTimeout.Std() != 90*time.Second || cfg.BinaryCacheEntries != 64 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":8081\"\nsweep_interval=\"1m\"\nmax_recent=3\nrecent_path=\"/x/recent.json\"\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.SweepInterval.Std() != time.Minute || cfg.MaxRecent != 3 || cfg.RecentPath != "/x/recent.json" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1h30m")); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := d.MarshalText()
	if string(b) != "1h30m0s" {
		t.Fatalf("got %s", b)
	}
	if err := d.UnmarshalText(nil); err != nil || d != 0 {
		t.Fatalf("empty should reset, got %v %v", d, err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}
