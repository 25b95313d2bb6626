package main

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/apperr"
	"github.com/jakartapm25/kelurahan-engine/internal/cadence"
	"github.com/jakartapm25/kelurahan-engine/internal/checkpoint"
	"github.com/jakartapm25/kelurahan-engine/internal/config"
	"github.com/jakartapm25/kelurahan-engine/internal/grid"
	"github.com/jakartapm25/kelurahan-engine/internal/loader"
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/metrics"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/internal/monitor"
	"github.com/jakartapm25/kelurahan-engine/internal/pipeline"
	"github.com/jakartapm25/kelurahan-engine/internal/scheduler"
	"github.com/jakartapm25/kelurahan-engine/internal/stationstore"
	"github.com/jakartapm25/kelurahan-engine/internal/writer"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(apperr.ExitCode(err, 0))
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.WithField("version", Version).Info("starting pm25engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitErr, partialFailures := run(ctx, cfg, log)
	os.Exit(apperr.ExitCode(exitErr, partialFailures))
}

func run(ctx context.Context, cfg *config.Config, log *logging.Logger) (error, int) {
	var mon *monitor.Server
	if cfg.MonitorAddr != "" {
		mon = monitor.New(cfg.MonitorAddr, log)
		go func() {
			if err := mon.Start(); err != nil {
				log.WithField("error", err).Warn("monitor server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mon.Shutdown(shutdownCtx)
		}()
	}

	var store stationstore.Store
	if cfg.StationDSN != "" {
		store = &stationstore.MySQLStore{DSN: cfg.StationDSN, Logger: log}
	} else if cfg.StationTablePath != "" {
		store = &stationstore.CSVStore{Path: cfg.StationTablePath}
	}

	loadResult, err := loader.Load(cfg.InputPath, cfg.BBox, cfg.PM25Cap, store, log)
	if err != nil {
		return err, 0
	}

	bySensor := make(map[string][]models.Measurement)
	for _, m := range loadResult.Measurements {
		bySensor[m.SensorID] = append(bySensor[m.SensorID], m)
	}
	cadenceResult := cadence.Classify(bySensor, cfg.IntervalTie, log)

	dataset := pipeline.BuildDataset(loadResult.Measurements, loadResult.Sensors, cadenceResult.Labels, cadenceResult.Interval.Duration())

	imputer := &pipeline.ImputerStage{Active: cadenceResult.Interval == models.IntervalThirtyMin}
	completeness := &pipeline.CompletenessStage{SMin: cfg.SMin, Logger: log}
	pl := pipeline.New(imputer, completeness)

	axisBefore := len(dataset.Axis)
	dataset, err = pl.Run(dataset)
	if err != nil {
		return apperr.Wrap(apperr.KindTask, err), 0
	}
	metrics.InsufficientDataWarnings.Add(float64(axisBefore - len(dataset.Axis)))
	if len(dataset.Axis) == 0 {
		return apperr.Wrap(apperr.KindInsufficientData, fmt.Errorf("no timestamp meets s_min=%d", cfg.SMin)), 0
	}

	polys, err := grid.LoadShapefile(cfg.ShapefilePath, log)
	if err != nil {
		return err, 0
	}
	g := grid.BuildGrid(polys, cfg.CellSizeDeg, log)

	var cache *checkpoint.Cache
	if cfg.RedisURL != "" {
		cache, err = checkpoint.New(cfg.RedisURL, log)
		if err != nil {
			log.WithField("error", err).Warn("checkpoint cache unavailable, continuing without it")
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	manifest := models.RunManifest{
		InputBasename: cfg.InputPath,
		DateFrom:      dataset.Axis[0].Format("2006-01-02"),
		DateTo:        dataset.Axis[len(dataset.Axis)-1].Format("2006-01-02"),
		Interval:      cadenceResult.Interval,
		K:             cfg.K,
		P:             cfg.P,
	}
	manifest.Hash = manifestHash(manifest)
	metrics.SetRunInfo(fmt.Sprintf("%dm", int(manifest.Interval.Duration().Minutes())), fmt.Sprintf("%d", cfg.K), fmt.Sprintf("%.2f", cfg.P), manifest.DateFrom, manifest.DateTo)
	metrics.TimestampsAccepted.Add(float64(len(dataset.Axis)))

	var progress *monitor.ProgressHub
	if mon != nil {
		progress = mon.Progress()
	}

	result, err := scheduler.Run(ctx, scheduler.Options{
		Workers:      cfg.Workers,
		K:            cfg.K,
		P:            cfg.P,
		TaskTimeout:  cfg.TaskTimeout,
		ManifestHash: manifest.Hash,
		Logger:       log,
		Cache:        cache,
		Progress:     progress,
	}, dataset, g, polys.Kelurahan)
	if err != nil {
		return apperr.Wrap(apperr.KindTask, err), result.FailedCount
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return apperr.Wrap(apperr.KindIO, err), result.FailedCount
	}

	resultPath, err := writer.WriteResults(cfg.OutputDir, result.Rows, cfg.K, manifest.DateFrom, manifest.DateTo, writer.FormatParquet)
	if err != nil {
		return err, result.FailedCount
	}
	log.WithField("path", resultPath).Info("wrote result table")

	distPath, err := writer.WriteDistances(cfg.OutputDir, result.DistanceRows, manifest.DateFrom, manifest.DateTo, writer.FormatParquet)
	if err != nil {
		return err, result.FailedCount
	}
	log.WithField("path", distPath).Info("wrote distance table")

	if result.FailedCount > 0 {
		log.WithField("failed_timestamps", result.FailedCount).Warn("run completed with partial failures")
	}

	return nil, result.FailedCount
}

func manifestHash(m models.RunManifest) string {
	raw := fmt.Sprintf("%s|%s|%s|%d|%d|%.4f", m.InputBasename, m.DateFrom, m.DateTo, m.Interval.Duration(), m.K, m.P)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", sum)[:16]
}
