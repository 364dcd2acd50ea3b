package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/accident-forecast/internal/weather"
	"github.com/sony/gobreaker"
	"golang.org/x/net/html/charset"
)

// DefaultVedurURL is the Icelandic Met Office XML service.
const DefaultVedurURL = "http://xmlweather.vedur.is/"

// VedurProvider implements the weather.Provider interface for the vedur.is XML forecast feed.
type VedurProvider struct {
	name       string
	baseURL    string
	stationIDs []string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

// VedurOption customises a VedurProvider.
type VedurOption func(*vedurOptions)

type vedurOptions struct {
	breakerFailures uint32
}

// WithBreakerFailures opens the circuit after n consecutive failed fetches.
// Zero, the default, never opens it, so every Fetch reaches the feed.
func WithBreakerFailures(n int) VedurOption {
	return func(o *vedurOptions) {
		if n > 0 {
			o.breakerFailures = uint32(n)
		}
	}
}

// NewVedurProvider creates a provider for the given stations. An empty baseURL
// falls back to DefaultVedurURL.
func NewVedurProvider(client *http.Client, baseURL string, stationIDs []string, maxRetries int, opts ...VedurOption) *VedurProvider {
	if baseURL == "" {
		baseURL = DefaultVedurURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var o vedurOptions
	for _, opt := range opts {
		opt(&o)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vedur",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return o.breakerFailures > 0 && counts.ConsecutiveFailures >= o.breakerFailures
		},
		IsSuccessful: breakerSuccess,
	})

	return &VedurProvider{
		name:       "vedur",
		baseURL:    baseURL,
		stationIDs: stationIDs,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      maxRetries,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: cb,
	}
}

func (p *VedurProvider) Name() string {
	return p.name
}

// URL returns the feed URL requesting temperature (T) and wind speed (F) forecasts.
func (p *VedurProvider) URL() string {
	values := url.Values{}
	values.Set("op_w", "xml")
	values.Set("type", "forec")
	values.Set("lang", "is")
	values.Set("view", "xml")
	values.Set("ids", strings.Join(p.stationIDs, ";"))
	values.Set("params", "T;F")
	return fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
}

func (p *VedurProvider) Fetch(ctx context.Context) (weather.Forecast, error) {
	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodGet, p.URL(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/xml, text/xml")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Forecast{}, err
	}
	defer resp.Body.Close()

	forecast, err := ParseVedurForecast(resp.Body)
	if err != nil {
		return weather.Forecast{}, err
	}
	forecast.FetchedAt = time.Now().UTC()
	return forecast, nil
}

type vedurFeed struct {
	XMLName  xml.Name       `xml:"forecasts"`
	Stations []vedurStation `xml:"station"`
}

type vedurStation struct {
	ID        string          `xml:"id,attr"`
	Name      string          `xml:"name"`
	Forecasts []vedurForecast `xml:"forecast"`
}

type vedurForecast struct {
	Time        string  `xml:"ftime"`
	Temperature *string `xml:"T"`
	WindSpeed   *string `xml:"F"`
}

// ParseVedurForecast decodes a vedur.is <forecasts> document. Empty <T>/<F>
// elements are treated as missing; non-integer values are a parse error.
func ParseVedurForecast(r io.Reader) (weather.Forecast, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var feed vedurFeed
	if err := dec.Decode(&feed); err != nil {
		return weather.Forecast{}, fmt.Errorf("%w: %v", weather.ErrParse, err)
	}

	forecast := weather.Forecast{
		Stations: make([]weather.Station, 0, len(feed.Stations)),
	}

	for _, st := range feed.Stations {
		station := weather.Station{
			ID:           st.ID,
			Name:         strings.TrimSpace(st.Name),
			Observations: make([]weather.Observation, 0, len(st.Forecasts)),
		}

		for _, fc := range st.Forecasts {
			temp, err := parseReading(fc.Temperature)
			if err != nil {
				return weather.Forecast{}, fmt.Errorf("%w: station %s T: %v", weather.ErrParse, st.ID, err)
			}
			wind, err := parseReading(fc.WindSpeed)
			if err != nil {
				return weather.Forecast{}, fmt.Errorf("%w: station %s F: %v", weather.ErrParse, st.ID, err)
			}

			station.Observations = append(station.Observations, weather.Observation{
				StationID:   st.ID,
				Time:        strings.TrimSpace(fc.Time),
				Temperature: temp,
				WindSpeed:   wind,
			})
		}

		forecast.Stations = append(forecast.Stations, station)
	}

	return forecast, nil
}

func parseReading(text *string) (*int, error) {
	if text == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*text)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
