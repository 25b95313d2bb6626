// Package aggregate implements the Polygon Aggregator (§4.8): folds per-grid-point
// IDW predictions for one timestamp into one row per kelurahan.
package aggregate

import (
	"github.com/jakartapm25/kelurahan-engine/internal/grid"
	"github.com/jakartapm25/kelurahan-engine/internal/idw"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// Polygon rolls up every grid point assigned to one kelurahan at one timestamp.
// activeSensors is the count of sensors with a valid reading anywhere in the
// run at this timestamp, reported verbatim on every row (§4.8).
func Polygon(g *grid.Grid, kelurahan []models.Kelurahan, preds []idw.Prediction, timestampMs int64, activeSensors int) []models.ResultRow {
	rows := make([]models.ResultRow, 0, len(kelurahan))

	for _, k := range kelurahan {
		gridIdx, ok := g.ByPolygon[k.Index]
		if !ok || len(gridIdx) == 0 {
			continue
		}

		var sum, min, max float64
		nGrids := 0
		contributing := make(map[string]bool)

		for _, gi := range gridIdx {
			pred := preds[gi]
			if nGrids == 0 {
				min, max = pred.Value, pred.Value
			}
			sum += pred.Value
			if pred.Value < min {
				min = pred.Value
			}
			if pred.Value > max {
				max = pred.Value
			}
			for _, id := range pred.ContributingIDs {
				contributing[id] = true
			}
			nGrids++
		}
		if nGrids == 0 {
			continue
		}

		rows = append(rows, models.ResultRow{
			KelurahanName:        k.Name,
			TimestampMs:          timestampMs,
			AvgPM25:              sum / float64(nGrids),
			MinPM25:              min,
			MaxPM25:              max,
			NGrids:               nGrids,
			NSensorsUsed:         activeSensors,
			NContributingSensors: len(contributing),
		})
	}

	return rows
}
