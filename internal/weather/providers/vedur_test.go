package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/accident-forecast/internal/weather"
)

const sampleFeed = `<?xml version="1.0" encoding="utf-8"?>
<forecasts>
  <station id="1" valid="1">
    <name>Reykjavík</name>
    <atime>2024-01-15 12:00:00</atime>
    <err></err>
    <forecast><ftime>2024-01-15 15:00:00</ftime><F>3</F><T>2</T></forecast>
    <forecast><ftime>2024-01-15 18:00:00</ftime><F>5</F><T>4</T></forecast>
  </station>
  <station id="2" valid="1">
    <name>Akureyri</name>
    <forecast><ftime>2024-01-15 15:00:00</ftime><F>7</F><T>6</T></forecast>
    <forecast><ftime>2024-01-15 18:00:00</ftime><F></F><T/></forecast>
  </station>
</forecasts>`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *VedurProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewVedurProvider(&http.Client{Timeout: 2 * time.Second}, srv.URL+"/", []string{"1", "2"}, 0)
}

func TestVedurFetch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("ids") != "1;2" || q.Get("params") != "T;F" || q.Get("type") != "forec" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(sampleFeed))
	})

	f, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(f.Stations))
	}
	if f.Stations[0].Name != "Reykjavík" {
		t.Errorf("station name = %q", f.Stations[0].Name)
	}
	if f.FetchedAt.IsZero() {
		t.Error("FetchedAt should be set")
	}

	last := f.Stations[1].Observations[1]
	if last.Temperature != nil || last.WindSpeed != nil {
		t.Errorf("empty T/F should be missing, got %v/%v", last.Temperature, last.WindSpeed)
	}

	agg := weather.Aggregate(f)
	if agg.AverageTemperature != 4.0 {
		t.Errorf("AverageTemperature = %v, want 4.0", agg.AverageTemperature)
	}
	if agg.AverageWindSpeed != 5.0 {
		t.Errorf("AverageWindSpeed = %v, want 5.0", agg.AverageWindSpeed)
	}
}

func TestVedurFetchStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "not found", status: http.StatusNotFound},
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "server error", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			})

			_, err := p.Fetch(context.Background())
			if !errors.Is(err, weather.ErrFetch) {
				t.Fatalf("expected ErrFetch, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected a single attempt, got %d", calls)
			}
		})
	}
}

func TestVedurFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: time.Second}, url, []string{"1"}, 0)
	if _, err := p.Fetch(context.Background()); !errors.Is(err, weather.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestVedurFetchMalformedBody(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>maintenance</body></html>"))
	})

	if _, err := p.Fetch(context.Background()); !errors.Is(err, weather.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestVedurFetchRetries(t *testing.T) {
	// First attempt fails, the single configured retry succeeds after the 500ms backoff.
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: time.Second}, srv.URL, []string{"1", "2"}, 1)
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

// flakyFeed fails the first n requests with status and serves sampleFeed afterwards.
func flakyFeed(calls *atomic.Int32, n int32, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= n {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(sampleFeed))
	}
}

// TestVedurFetchIndependentByDefault verifies that earlier failures never stop a
// later fetch from reaching the feed.
func TestVedurFetchIndependentByDefault(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, flakyFeed(&calls, 10, http.StatusServiceUnavailable))

	for i := 0; i < 10; i++ {
		if _, err := p.Fetch(context.Background()); !errors.Is(err, weather.ErrFetch) {
			t.Fatalf("fetch %d: expected ErrFetch, got %v", i+1, err)
		}
	}
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("feed recovered but fetch failed: %v", err)
	}
	if got := calls.Load(); got != 11 {
		t.Errorf("expected 11 outbound calls, got %d", got)
	}
}

func TestVedurBreakerOpensWhenConfigured(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flakyFeed(&calls, 3, http.StatusBadGateway))
	defer srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: time.Second}, srv.URL, []string{"1"}, 0, WithBreakerFailures(3))
	for i := 0; i < 3; i++ {
		if _, err := p.Fetch(context.Background()); !errors.Is(err, weather.ErrFetch) {
			t.Fatalf("fetch %d: expected ErrFetch, got %v", i+1, err)
		}
	}

	_, err := p.Fetch(context.Background())
	if !errors.Is(err, weather.ErrFetch) || !strings.Contains(err.Error(), "circuit breaker open") {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("open circuit must not call the feed, got %d calls", got)
	}
}

func TestVedurBreakerIgnoresClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(flakyFeed(&calls, 3, http.StatusNotFound))
	defer srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: time.Second}, srv.URL, []string{"1"}, 0, WithBreakerFailures(2))
	for i := 0; i < 3; i++ {
		if _, err := p.Fetch(context.Background()); !errors.Is(err, weather.ErrFetch) {
			t.Fatalf("fetch %d: expected ErrFetch, got %v", i+1, err)
		}
	}
	if _, err := p.Fetch(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("expected every fetch to reach the feed, got %d calls", got)
	}
}

// slowFeed blocks until the client gives up on the request.
func slowFeed(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
	case <-time.After(5 * time.Second):
	}
}

func TestVedurFetchClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(slowFeed))
	defer srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: 100 * time.Millisecond}, srv.URL, []string{"1"}, 0)

	start := time.Now()
	_, err := p.Fetch(context.Background())
	if !errors.Is(err, weather.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fetch took %v, expected the client timeout to cut it short", elapsed)
	}
}

func TestVedurFetchContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(slowFeed))
	defer srv.Close()

	p := NewVedurProvider(&http.Client{Timeout: 10 * time.Second}, srv.URL, []string{"1"}, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := p.Fetch(ctx); !errors.Is(err, weather.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("fetch took %v, expected the context deadline to cut it short", elapsed)
	}
}

func TestVedurFetchCancelledContext(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(sampleFeed))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Fetch(ctx); !errors.Is(err, weather.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("cancelled fetch reached the feed %d times", got)
	}
}

func TestParseVedurForecast(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		temps   int
		winds   int
	}{
		{
			name:  "no stations",
			body:  `<forecasts></forecasts>`,
			temps: 0,
			winds: 0,
		},
		{
			name:  "whitespace and signs",
			body:  `<forecasts><station id="1"><forecast><T> -3 </T><F>+4</F></forecast></station></forecasts>`,
			temps: 1,
			winds: 1,
		},
		{
			name:  "missing elements",
			body:  `<forecasts><station id="1"><forecast><ftime>x</ftime></forecast><forecast><T>1</T></forecast></station></forecasts>`,
			temps: 1,
			winds: 0,
		},
		{
			name:    "non integer value",
			body:    `<forecasts><station id="1"><forecast><T>1.5</T></forecast></station></forecasts>`,
			wantErr: weather.ErrParse,
		},
		{
			name:    "wrong root",
			body:    `<observations></observations>`,
			wantErr: weather.ErrParse,
		},
		{
			name:    "truncated",
			body:    `<forecasts><station id="1">`,
			wantErr: weather.ErrParse,
		},
		{
			name:  "latin1 declaration",
			body:  "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><forecasts><station id=\"1\"><name>Reykjav\xedk</name><forecast><T>2</T><F>3</F></forecast></station></forecasts>",
			temps: 1,
			winds: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseVedurForecast(strings.NewReader(tt.body))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			agg := weather.Aggregate(f)
			if agg.TemperatureSamples != tt.temps || agg.WindSpeedSamples != tt.winds {
				t.Errorf("samples = %d/%d, want %d/%d", agg.TemperatureSamples, agg.WindSpeedSamples, tt.temps, tt.winds)
			}
		})
	}
}
