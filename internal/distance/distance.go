// Package distance implements the Representative-Timestamp Distance Reporter
// (§4.9): for three representative timestamps (max, min, and median active
// sensor count), reports per-kelurahan great-circle distance to contributing
// sensors. Computed only for those three timestamps since it is provenance,
// not part of the main result table.
package distance

import (
	"sort"
	"time"

	"github.com/jakartapm25/kelurahan-engine/internal/grid"
	"github.com/jakartapm25/kelurahan-engine/internal/idw"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/pkg/geoutil"
)

// SelectRepresentative picks the timestamps with the max, min, and median
// active-sensor counts. If fewer than 3 distinct timestamps exist, the same
// timestamp may be returned under more than one tag.
func SelectRepresentative(counts map[time.Time]int) map[models.TimestampType]time.Time {
	if len(counts) == 0 {
		return nil
	}
	times := make([]time.Time, 0, len(counts))
	for t := range counts {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool {
		ci, cj := counts[times[i]], counts[times[j]]
		if ci != cj {
			return ci < cj
		}
		return times[i].Before(times[j])
	})

	min := times[0]
	max := times[len(times)-1]
	median := times[len(times)/2]

	return map[models.TimestampType]time.Time{
		models.TimestampMinSensors:    min,
		models.TimestampMaxSensors:    max,
		models.TimestampMedianSensors: median,
	}
}

// Polygon computes the min/median/mean/max great-circle distance from every
// grid point in each kelurahan to the sensors that contributed to its
// prediction, for one representative timestamp.
func Polygon(g *grid.Grid, kelurahan []models.Kelurahan, preds []idw.Prediction, sensorCoords map[string][2]float64, base models.ResultRow, tsType models.TimestampType) []models.DistanceRow {
	rows := make([]models.DistanceRow, 0, len(kelurahan))

	for _, k := range kelurahan {
		gridIdx, ok := g.ByPolygon[k.Index]
		if !ok || len(gridIdx) == 0 {
			continue
		}

		var distances []float64
		for _, gi := range gridIdx {
			pred := preds[gi]
			pt := g.Points[gi]
			for _, sensorID := range pred.ContributingIDs {
				coord, ok := sensorCoords[sensorID]
				if !ok {
					continue
				}
				distances = append(distances, geoutil.HaversineKm(pt.Lon, pt.Lat, coord[0], coord[1]))
			}
		}
		if len(distances) == 0 {
			continue
		}
		sort.Float64s(distances)

		row := base
		row.KelurahanName = k.Name
		rows = append(rows, models.DistanceRow{
			ResultRow:        row,
			TimestampType:    tsType,
			MinDistanceKm:    distances[0],
			MedianDistanceKm: median(distances),
			AvgDistanceKm:    mean(distances),
			MaxDistanceKm:    distances[len(distances)-1],
		})
	}

	return rows
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

