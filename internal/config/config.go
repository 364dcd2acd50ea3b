package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/accident-forecast/internal/prediction"
	"github.com/i474232898/accident-forecast/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	Port string

	// Outbound weather feed.
	FeedURL     string
	StationIDs  []string
	HTTPTimeout time.Duration
	// FetchRetries is the number of extra attempts after a failed fetch.
	FetchRetries int
	// CircuitBreakerFailures opens the snapshot fetcher's circuit after that
	// many consecutive failures (0 = never).
	CircuitBreakerFailures int

	// Snapshot scheduler and in-memory store retention.
	SchedulerEnabled bool
	FetchInterval    time.Duration
	StoreMaxHistory  int           // max number of snapshots (0 = unlimited)
	StoreMaxAge      time.Duration // max age of snapshots (0 = unlimited)

	// Model files, loaded once at startup.
	IslandModelPath string
	UsaModelPath    string

	Calibration prediction.Calibration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.FeedURL = getenvDefault("WEATHER_FEED_URL", providers.DefaultVedurURL)

	ids, err := parseStationIDs(getenvDefault("WEATHER_STATION_IDS", "1;2"))
	if err != nil {
		return nil, err
	}
	cfg.StationIDs = ids

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: must be positive")
	}
	if cfg.FetchRetries, err = getenvInt("FETCH_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.CircuitBreakerFailures, err = getenvInt("CIRCUIT_BREAKER_FAILURES", 0); err != nil {
		return nil, err
	}
	if cfg.FetchRetries < 0 || cfg.CircuitBreakerFailures < 0 {
		return nil, fmt.Errorf("invalid FETCH_RETRIES or CIRCUIT_BREAKER_FAILURES: must not be negative")
	}

	if cfg.SchedulerEnabled, err = getenvBool("SCHEDULER_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	// roughly 24h at 15-minute intervals
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 96); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	modelDir := getenvDefault("MODEL_DIR", "models")
	cfg.IslandModelPath = filepath.Join(modelDir, getenvDefault("ISL_MODEL_FILE", "isl-model.json"))
	cfg.UsaModelPath = filepath.Join(modelDir, getenvDefault("USA_MODEL_FILE", "usa-model.json"))

	cal, err := LoadCalibration(os.Getenv("CALIBRATION_FILE"))
	if err != nil {
		return nil, err
	}
	cfg.Calibration = cal

	return cfg, nil
}

// LoadCalibration reads model calibration from a YAML file. Keys absent from
// the file keep their defaults; an empty path returns the defaults.
func LoadCalibration(path string) (prediction.Calibration, error) {
	cal := prediction.DefaultCalibration()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return prediction.Calibration{}, fmt.Errorf("failed to read calibration file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cal); err != nil {
			return prediction.Calibration{}, fmt.Errorf("failed to parse calibration file %s: %w", path, err)
		}
	}

	if err := validate.Struct(cal); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return prediction.Calibration{}, fmt.Errorf("invalid calibration: %s", verrs.Error())
		}
		return prediction.Calibration{}, fmt.Errorf("invalid calibration: %w", err)
	}
	return cal, nil
}

func parseStationIDs(s string) ([]string, error) {
	var ids []string
	for _, id := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("WEATHER_STATION_IDS must name at least one station")
	}
	return ids, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
