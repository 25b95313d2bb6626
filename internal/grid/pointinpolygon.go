package grid

import "github.com/ctessum/geom"

// pointInPolygonal tests membership with a standard ray-casting test over every
// ring of every constituent polygon. The rtree index in Polygons narrows
// candidates by bounding-box intersection first; this does the exact planar
// test (§4.6) since the geometry library's own containment predicate isn't part
// of the surface exercised by the retrieved examples.
func pointInPolygonal(pt geom.Point, g geom.Polygonal) bool {
	for _, poly := range g.Polygons() {
		if polygonContains(poly, pt) {
			return true
		}
	}
	return false
}

// polygonContains applies even-odd ray casting across all rings, so holes
// (interior rings) correctly exclude their area.
func polygonContains(poly geom.Polygon, pt geom.Point) bool {
	inside := false
	for _, ring := range poly {
		inside = inside != ringContains(ring, pt)
	}
	return inside
}

func ringContains(ring geom.Ring, pt geom.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > pt.Y) != (yj > pt.Y) {
			xIntersect := (xj-xi)*(pt.Y-yi)/(yj-yi) + xi
			if pt.X < xIntersect {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}
