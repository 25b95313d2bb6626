// Package grid implements the Grid Builder and spatial precompute (spec §4.6):
// it loads the kelurahan polygons, builds the fixed lon/lat lattice, and assigns
// every retained grid point to exactly one polygon, once per run.
//
// Geometry and shapefile I/O are grounded on the Go atmospheric-PM2.5 tooling stack
// (github.com/ctessum/geom, .../index/rtree, .../encoding/shp) rather than invented —
// see DESIGN.md.
package grid

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"

	"github.com/jakartapm25/kelurahan-engine/internal/apperr"
	"github.com/jakartapm25/kelurahan-engine/internal/logging"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// polygonEntry pairs a decoded polygon with the rtree-indexable bounds wrapper.
type polygonEntry struct {
	geom  geom.Polygonal
	index int
}

func (e *polygonEntry) Bounds() *geom.Bounds { return e.geom.Bounds() }

// Polygons is the decoded, indexed set of kelurahan polygons.
type Polygons struct {
	Kelurahan []models.Kelurahan
	geoms     []geom.Polygonal
	index     *rtree.Rtree
}

// LoadShapefile reads path, resolving each feature's display name via the
// priority list in §3, and builds an R-tree over the polygons for the bulk
// point-in-polygon query used by BuildGrid (§4.6).
func LoadShapefile(path string, log *logging.Logger) (*Polygons, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindGeometry, fmt.Errorf("open shapefile: %w", err))
	}
	defer dec.Close()

	fields := dec.Fields()
	nameField, usingFallback := resolveNameField(fields)

	var kels []models.Kelurahan
	var geoms []geom.Polygonal
	seq := 0

	for {
		g, rec, more := dec.DecodeRowFields(fields...)
		if !more {
			break
		}
		poly, ok := g.(geom.Polygonal)
		if !ok || poly == nil {
			continue
		}

		name := strings.TrimSpace(rec[nameField])
		if name == "" {
			name = fmt.Sprintf("Kelurahan %d", seq+1)
		}

		kels = append(kels, models.Kelurahan{Index: seq, Name: name})
		geoms = append(geoms, poly)
		seq++
	}
	if err := dec.Error(); err != nil {
		return nil, apperr.Wrap(apperr.KindGeometry, fmt.Errorf("decode shapefile rows: %w", err))
	}
	if len(kels) == 0 {
		return nil, apperr.Wrap(apperr.KindGeometry, fmt.Errorf("shapefile contains no polygons"))
	}
	if usingFallback {
		log.Warn("no preferred kelurahan name field found; used fallback naming")
	}

	idx := rtree.NewTree(25, 50)
	for i, g := range geoms {
		idx.Insert(&polygonEntry{geom: g, index: i})
	}

	log.WithField("count", len(kels)).Info("loaded kelurahan polygons")
	return &Polygons{Kelurahan: kels, geoms: geoms, index: idx}, nil
}

// resolveNameField picks the first matching attribute from models.NameFieldPriority
// (case-insensitively), falling back to the first field whatever its type. With no
// fields at all it returns "", and LoadShapefile synthesizes names.
func resolveNameField(fields []string) (field string, usingFallback bool) {
	byUpper := make(map[string]string, len(fields))
	for _, f := range fields {
		byUpper[strings.ToUpper(f)] = f
	}
	for _, candidate := range models.NameFieldPriority {
		if actual, ok := byUpper[strings.ToUpper(candidate)]; ok {
			return actual, false
		}
	}
	if len(fields) > 0 {
		return fields[0], true
	}
	return "", true
}

// PolygonAt returns the index of the first (by shapefile order) polygon containing
// (lon, lat), or -1 if none does. Ties on shared boundaries resolve to the lowest
// shapefile index. Ties are not detected or logged: once a polygon contains the
// point, candidates with a higher index are not tested.
func (p *Polygons) PolygonAt(lon, lat float64) int {
	pt := geom.Point{X: lon, Y: lat}
	bounds := &geom.Bounds{Min: pt, Max: pt}

	best := -1
	for _, candidate := range p.index.SearchIntersect(bounds) {
		e := candidate.(*polygonEntry)
		if best != -1 && e.index >= best {
			continue
		}
		if pointInPolygonal(pt, e.geom) {
			if best == -1 || e.index < best {
				best = e.index
			}
		}
	}
	return best
}

// Bounds returns the union bounding box of every loaded polygon.
func (p *Polygons) Bounds() *geom.Bounds {
	var b *geom.Bounds
	for _, g := range p.geoms {
		gb := g.Bounds()
		if b == nil {
			c := *gb
			b = &c
			continue
		}
		if gb.Min.X < b.Min.X {
			b.Min.X = gb.Min.X
		}
		if gb.Min.Y < b.Min.Y {
			b.Min.Y = gb.Min.Y
		}
		if gb.Max.X > b.Max.X {
			b.Max.X = gb.Max.X
		}
		if gb.Max.Y > b.Max.Y {
			b.Max.Y = gb.Max.Y
		}
	}
	return b
}
