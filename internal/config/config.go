// Package config loads the engine's configuration from CLI flags. The optional
// station DSN, monitor address, checkpoint Redis URL, log level and log format
// take their defaults from environment variables; every other setting comes
// from its flag or the flag's built-in default — a grouped-struct-plus-getEnv
// shape adapted from a server's env-only Load() to a CLI's flag-plus-env Load(args).
package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/apperr"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// IntervalTiePolicy resolves Δ when count(thirty) == count(hourly) (§6).
type IntervalTiePolicy string

const (
	TiePreferHourly IntervalTiePolicy = "prefer_hourly"
	TiePrefer30Min  IntervalTiePolicy = "prefer_30min"
)

// Config is the full enumerated configuration of spec §6.
type Config struct {
	InputPath     string
	ShapefilePath string
	OutputDir     string

	SMin        int
	K           int
	P           float64
	CellSizeDeg float64
	BBox        models.BoundingBox
	PM25Cap     float64
	IntervalTie IntervalTiePolicy
	Workers     int
	TaskTimeout time.Duration

	StationTablePath string
	StationDSN       string // optional MySQL DSN for the station override store

	MonitorAddr string // optional address for the observability HTTP server (§4.13)
	RedisURL    string // optional checkpoint cache (§4.12)

	LogLevel  string
	LogFormat string
}

// Load parses args (typically os.Args[1:]) into a validated Config.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("pm25engine", flag.ContinueOnError)

	cfg := &Config{}
	fs.StringVar(&cfg.InputPath, "input", "", "path to the prepared measurement table (CSV)")
	fs.StringVar(&cfg.ShapefilePath, "shapefile", "", "path to the kelurahan polygon shapefile")
	fs.StringVar(&cfg.OutputDir, "output-dir", ".", "directory to write result tables into")

	fs.IntVar(&cfg.SMin, "s-min", 50, "minimum active sensors per accepted timestamp")
	fs.IntVar(&cfg.K, "k", 10, "IDW neighbor cap")
	fs.Float64Var(&cfg.P, "p", 2, "IDW power")
	fs.Float64Var(&cfg.CellSizeDeg, "cell-size-deg", 0.005, "grid spacing in degrees")
	fs.Float64Var(&cfg.PM25Cap, "pm25-cap", models.PM25Cap, "upper pm25 rejection threshold")

	lonMin := fs.Float64("bbox-lon-min", models.DefaultBoundingBox.LonMin, "bounding box min longitude")
	lonMax := fs.Float64("bbox-lon-max", models.DefaultBoundingBox.LonMax, "bounding box max longitude")
	latMin := fs.Float64("bbox-lat-min", models.DefaultBoundingBox.LatMin, "bounding box min latitude")
	latMax := fs.Float64("bbox-lat-max", models.DefaultBoundingBox.LatMax, "bounding box max latitude")

	tie := fs.String("interval-tie-policy", string(TiePreferHourly), "prefer_hourly|prefer_30min")
	fs.IntVar(&cfg.Workers, "workers", defaultWorkers(), "worker pool size")
	timeoutSec := fs.Int("task-timeout-seconds", 60, "per-task soft budget in seconds")

	fs.StringVar(&cfg.StationTablePath, "station-table", "", "optional CSV station override table")
	fs.StringVar(&cfg.StationDSN, "station-dsn", getEnv("STATION_MYSQL_DSN", ""), "optional MySQL DSN for the station override store")
	fs.StringVar(&cfg.MonitorAddr, "monitor-addr", getEnv("MONITOR_ADDR", ""), "optional address to serve /healthz and /metrics on")
	fs.StringVar(&cfg.RedisURL, "checkpoint-redis-url", getEnv("CHECKPOINT_REDIS_URL", ""), "optional Redis URL for the checkpoint cache")

	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "debug|info|warn|error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "text"), "text|json")

	if err := fs.Parse(args); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, err)
	}

	cfg.BBox = models.BoundingBox{LonMin: *lonMin, LonMax: *lonMax, LatMin: *latMin, LatMax: *latMax}
	cfg.IntervalTie = IntervalTiePolicy(*tie)
	cfg.TaskTimeout = time.Duration(*timeoutSec) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, err)
	}
	return cfg, nil
}

// Validate checks the enumerated configuration for internal consistency.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("--input is required")
	}
	if c.ShapefilePath == "" {
		return fmt.Errorf("--shapefile is required")
	}
	if c.SMin <= 0 {
		return fmt.Errorf("--s-min must be positive")
	}
	if c.K <= 0 {
		return fmt.Errorf("--k must be positive")
	}
	if c.P <= 0 {
		return fmt.Errorf("--p must be positive")
	}
	if c.CellSizeDeg <= 0 {
		return fmt.Errorf("--cell-size-deg must be positive")
	}
	if c.PM25Cap <= 0 {
		return fmt.Errorf("--pm25-cap must be positive")
	}
	if c.IntervalTie != TiePreferHourly && c.IntervalTie != TiePrefer30Min {
		return fmt.Errorf("--interval-tie-policy must be prefer_hourly or prefer_30min")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("--workers must be positive")
	}
	if c.TaskTimeout <= 0 {
		return fmt.Errorf("--task-timeout-seconds must be positive")
	}
	return nil
}

func defaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
