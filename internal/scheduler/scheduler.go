// Package scheduler runs the per-timestamp IDW + aggregation work across a
// worker pool (§4.10, §5). Concurrency model: goroutines reading off a shared
// job channel (pkg/taskpool, a channel-plus-WaitGroup batch worker pool),
// context-based cancellation via os/signal.NotifyContext at the caller, and a
// soft per-task timeout via context.WithTimeout so one pathological timestamp
// cannot stall the run.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/aggregate"
	"github.com/jakartapm25/kelurahan-engine/internal/checkpoint"
	"github.com/jakartapm25/kelurahan-engine/internal/distance"
	"github.com/jakartapm25/kelurahan-engine/internal/grid"
	"github.com/jakartapm25/kelurahan-engine/internal/idw"
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/metrics"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/internal/monitor"
	"github.com/jakartapm25/kelurahan-engine/internal/pipeline"
	"github.com/jakartapm25/kelurahan-engine/pkg/taskpool"
)

// Options configures one scheduled run.
type Options struct {
	Workers      int
	K            int
	P            float64
	TaskTimeout  time.Duration
	ManifestHash string
	Logger       *logging.Logger
	Cache        *checkpoint.Cache // optional
	Progress     *monitor.ProgressHub // optional
}

// Result is the full run output: the main result table, the distance
// provenance table for the representative timestamps, and a count of
// timestamps that failed (soft failures, §7).
type Result struct {
	Rows          []models.ResultRow
	DistanceRows  []models.DistanceRow
	FailedCount   int
	FailedReasons map[int64]string
}

// timestampResult is one task's output: the rows it produced for its timestamp.
type timestampResult struct {
	rows     []models.ResultRow
	distRows []models.DistanceRow
}

// Run computes, for every timestamp in d.Axis, one ResultRow per kelurahan,
// plus DistanceRows for the three representative timestamps.
func Run(ctx context.Context, opts Options, d *pipeline.Dataset, g *grid.Grid, kelurahan []models.Kelurahan) (*Result, error) {
	activeCounts := pipeline.ActiveCounts(d)
	representative := distance.SelectRepresentative(activeCounts)

	pool := taskpool.New[timestampResult](opts.Workers)
	tasks := make([]taskpool.Task[timestampResult], len(d.Axis))

	for i, t := range d.Axis {
		t := t
		tasks[i] = func(ctx context.Context) (timestampResult, error) {
			taskCtx := ctx
			var cancel context.CancelFunc
			if opts.TaskTimeout > 0 {
				taskCtx, cancel = context.WithTimeout(ctx, opts.TaskTimeout)
				defer cancel()
			}
			return computeTimestamp(taskCtx, opts, d, g, kelurahan, t, representative)
		}
	}

	metrics.ActiveWorkers.Set(float64(opts.Workers))
	outcomes := pool.Run(ctx, tasks)
	metrics.ActiveWorkers.Set(0)

	result := &Result{FailedReasons: make(map[int64]string)}
	for i, o := range outcomes {
		tsMs := d.Axis[i].UnixMilli()
		if o.Err != nil {
			result.FailedCount++
			result.FailedReasons[tsMs] = o.Err.Error()
			metrics.TaskFailures.Inc()
			opts.Logger.WithFields(map[string]interface{}{"timestamp_ms": tsMs, "error": o.Err}).Warn("timestamp task failed")
			if opts.Progress != nil {
				opts.Progress.Publish(monitor.ProgressEvent{TimestampMs: tsMs, Status: "error", Reason: o.Err.Error(), Completed: i + 1, Total: len(outcomes)})
			}
			continue
		}
		result.Rows = append(result.Rows, o.Value.rows...)
		result.DistanceRows = append(result.DistanceRows, o.Value.distRows...)
		metrics.TimestampsCompleted.Inc()
		if opts.Progress != nil {
			opts.Progress.Publish(monitor.ProgressEvent{TimestampMs: tsMs, Status: "ok", Completed: i + 1, Total: len(outcomes)})
		}
	}

	sort.Slice(result.Rows, func(i, j int) bool {
		if result.Rows[i].TimestampMs != result.Rows[j].TimestampMs {
			return result.Rows[i].TimestampMs < result.Rows[j].TimestampMs
		}
		return result.Rows[i].KelurahanName < result.Rows[j].KelurahanName
	})
	sort.Slice(result.DistanceRows, func(i, j int) bool {
		if result.DistanceRows[i].TimestampMs != result.DistanceRows[j].TimestampMs {
			return result.DistanceRows[i].TimestampMs < result.DistanceRows[j].TimestampMs
		}
		return result.DistanceRows[i].KelurahanName < result.DistanceRows[j].KelurahanName
	})

	return result, nil
}

func computeTimestamp(ctx context.Context, opts Options, d *pipeline.Dataset, g *grid.Grid, kelurahan []models.Kelurahan, t time.Time, representative map[models.TimestampType]time.Time) (timestampResult, error) {
	tsMs := t.UnixMilli()

	if opts.Cache != nil {
		if cachedRows, cachedDistRows, ok := opts.Cache.Get(ctx, opts.ManifestHash, tsMs); ok {
			metrics.CheckpointHits.Inc()
			return timestampResult{rows: cachedRows, distRows: cachedDistRows}, nil
		}
		metrics.CheckpointMisses.Inc()
	}

	select {
	case <-ctx.Done():
		return timestampResult{}, ctx.Err()
	default:
	}

	var active []idw.ActiveSensor
	sensorCoords := make(map[string][2]float64)
	for _, s := range d.Sensors {
		if v, ok := s.Get(t); ok {
			active = append(active, idw.ActiveSensor{SensorID: s.SensorID, Lon: s.Lon, Lat: s.Lat, PM25: v})
			sensorCoords[s.SensorID] = [2]float64{s.Lon, s.Lat}
		}
	}
	if len(active) == 0 {
		return timestampResult{}, fmt.Errorf("no active sensors at timestamp")
	}

	index := idw.BuildIndex(active)
	preds := make([]idw.Prediction, len(g.Points))
	for i, pt := range g.Points {
		if err := ctx.Err(); err != nil {
			return timestampResult{}, err
		}
		pred, ok := index.Predict(pt.Lon, pt.Lat, opts.K, opts.P)
		if !ok {
			continue
		}
		pred.GridIndex = pt.Index
		preds[i] = pred
	}

	rows := aggregate.Polygon(g, kelurahan, preds, tsMs, len(active))

	var distRows []models.DistanceRow
	for tsType, repTime := range representative {
		if !repTime.Equal(t) {
			continue
		}
		byName := make(map[string]models.ResultRow, len(rows))
		for _, r := range rows {
			byName[r.KelurahanName] = r
		}
		for _, k := range kelurahan {
			base, ok := byName[k.Name]
			if !ok {
				continue
			}
			distRows = append(distRows, distance.Polygon(g, []models.Kelurahan{k}, preds, sensorCoords, base, tsType)...)
		}
	}

	if opts.Cache != nil {
		opts.Cache.Put(ctx, opts.ManifestHash, tsMs, rows, distRows)
	}

	return timestampResult{rows: rows, distRows: distRows}, nil
}
