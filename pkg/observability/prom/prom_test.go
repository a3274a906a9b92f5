package prom

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wiregraph/pkg/api"
	"github.com/matzehuels/wiregraph/pkg/observability"
	"github.com/matzehuels/wiregraph/pkg/storage"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestCollectorHooks(t *testing.T) {
	c := NewCollector("test")
	ctx := context.Background()

	c.OnCleanup(ctx, 2, 1, 1, 3, time.Millisecond)
	c.OnPlacementUpdate(ctx, "R1", 2, true)
	c.OnExtractComplete(ctx, 4, 6, time.Millisecond, nil)
	c.OnExtractComplete(ctx, 0, 0, 0, errors.New("boom"))
	c.OnCacheHit(ctx, "nets")
	c.OnCacheMiss(ctx, "nets")
	c.OnCacheSet(ctx, "nets", 128)

	body := scrape(t, c.Handler())
	for _, want := range []string{
		"test_cleanup_runs_total 1",
		`test_cleanup_changes_total{kind="collapsed"} 3`,
		`test_cleanup_changes_total{kind="split"} 1`,
		`test_placement_updates_total{queued="true"} 1`,
		`test_extractions_total{status="ok"} 1`,
		`test_extractions_total{status="error"} 1`,
		"test_extract_nets_sum 4",
		`test_cache_hits_total{key_type="nets"} 1`,
		`test_cache_misses_total{key_type="nets"} 1`,
		`test_cache_written_bytes_total{key_type="nets"} 128`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector("test"), NewCollector("test")
	a.OnCacheHit(context.Background(), "nets")

	if strings.Contains(scrape(t, b.Handler()), "test_cache_hits_total") {
		t.Error("second collector sees the first collector's hits")
	}
}

func TestServerMetrics(t *testing.T) {
	t.Cleanup(observability.Reset)
	c := NewCollector("wiregraph")
	c.Register()

	logger := log.New(io.Discard)
	srv := httptest.NewServer(api.New(nil, storage.NewMemoryStore(), logger, api.WithMetrics(c.Handler())).Handler())
	t.Cleanup(srv.Close)

	get := func(path string) string {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}

	get("/health")
	get("/health")
	body := get("/metrics")

	want := `wiregraph_http_requests_total{method="GET",route="/health",status="200"} 2`
	if !strings.Contains(body, want) {
		t.Errorf("metrics missing %q:\n%s", want, body)
	}
}
