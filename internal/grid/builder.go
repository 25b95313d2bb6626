package grid

import (
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// Grid is the precomputed lattice: every retained point, its polygon assignment,
// and the reverse grouping used by the aggregator (§4.6, §4.8).
type Grid struct {
	Points        []models.GridPoint
	GridToPolygon []int // GridToPolygon[i] = polygon index of Points[i]
	ByPolygon     map[int][]int
}

// BuildGrid lays out a lon/lat lattice over the union bounding rectangle of the
// loaded polygons at cellSizeDeg spacing, keeping only points that fall inside
// some polygon. Computed once per run and reused across every timestamp.
func BuildGrid(polys *Polygons, cellSizeDeg float64, log *logging.Logger) *Grid {
	b := polys.Bounds()

	g := &Grid{ByPolygon: make(map[int][]int)}
	emptyPolygons := make(map[int]bool, len(polys.Kelurahan))
	for _, k := range polys.Kelurahan {
		emptyPolygons[k.Index] = true
	}

	idx := 0
	for lat := b.Min.Y; lat <= b.Max.Y; lat += cellSizeDeg {
		for lon := b.Min.X; lon <= b.Max.X; lon += cellSizeDeg {
			polyIdx := polys.PolygonAt(lon, lat)
			if polyIdx < 0 {
				continue
			}
			g.Points = append(g.Points, models.GridPoint{Index: idx, Lon: lon, Lat: lat})
			g.GridToPolygon = append(g.GridToPolygon, polyIdx)
			g.ByPolygon[polyIdx] = append(g.ByPolygon[polyIdx], idx)
			delete(emptyPolygons, polyIdx)
			idx++
		}
	}

	for _, k := range polys.Kelurahan {
		if emptyPolygons[k.Index] {
			log.WithField("kelurahan", k.Name).Warn("polygon received zero grid points at this cell size")
		}
	}
	log.WithFields(map[string]interface{}{
		"grid_points": len(g.Points),
		"polygons":    len(polys.Kelurahan),
		"cell_size":   cellSizeDeg,
	}).Info("built spatial grid")

	return g
}
