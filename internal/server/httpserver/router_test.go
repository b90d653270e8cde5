package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/stripedmap-go/internal/telemetry/metric"
	"github.com/yndnr/stripedmap-go/pkg/stripedmap"
)

func newTestRouter(t *testing.T) *httptest.Server {
	t.Helper()
	m, err := stripedmap.New[string, uint64](stripedmap.WithStripes(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	for i, k := range []string{"a", "b", "c"} {
		if err := m.Insert(k, uint64(i)); err != nil {
			t.Fatalf("Insert(%q) error = %v", k, err)
		}
	}

	reg := metric.NewRegistry()
	reg.MustRegister(metric.NewCollector("test", m))
	srv := httptest.NewServer(NewRouter(&RouterConfig{
		Metrics:     reg.Handler(),
		MetricsPath: "/prom",
		Stats:       m,
		RateLimit:   1000,
		AccessLog:   true,
		Logger:      nil,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter(t *testing.T) {
	srv := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var body map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["status"] != "healthy" {
			t.Errorf("body = %v", body)
		}
		if resp.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID")
		}
	})

	t.Run("stats", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/stats")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var st stripedmap.Stats
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			t.Fatal(err)
		}
		if st.Size != 3 || st.NumStripes != 2 || len(st.PerStripe) != 2 {
			t.Errorf("stats = %+v", st)
		}
	})

	t.Run("stats rejects POST", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/stats", "text/plain", nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", resp.StatusCode)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/prom")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(body), `stripedmap_map_elements{map="test"} 3`) {
			t.Errorf("metrics missing element gauge:\n%s", body)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("status = %d, want 404", resp.StatusCode)
		}
	})
}
