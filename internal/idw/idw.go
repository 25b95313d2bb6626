// Package idw implements the Inverse Distance Weighting engine (§4.7): for a
// single timestamp, predicts PM2.5 at every grid point from the k nearest
// active sensors, weighted by planar distance^-p.
//
// Neighbor search is pre-filtered by geohash prefix bucketing
// (github.com/mmcloughlin/geohash, grounded on the spatial-bucketing idiom in
// the retrieved PM2.5/air-quality and geo-indexing examples): an expanding
// ring of buckets around the query point is searched, widening until the
// search radius is provably no smaller than the k-th nearest candidate found
// so far, so a city-scale grid/sensor count never requires an
// O(grid × sensors) scan per timestamp while still returning the exact k
// nearest sensors, never an approximation.
package idw

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"

	"github.com/jakartapm25/kelurahan-engine/pkg/geoutil"
	"github.com/jakartapm25/kelurahan-engine/pkg/scratchpool"
)

// bucketPrecision is the geohash character length used for the coarse
// candidate bucket; ~5 chars covers a few km, comfortably above typical
// Jakarta sensor spacing while still shrinking the candidate set.
const bucketPrecision uint = 5

// ranked pairs a candidate sensor index with its planar distance for one
// Predict call; rankedPool recycles the backing slice across the per-grid-
// point, per-timestamp hot loop since this scratch never escapes Predict.
type ranked struct {
	i    int
	dist float64
}

var rankedPool = scratchpool.NewSlices[ranked](16)

// ActiveSensor is a single sensor with a valid reading at the timestamp being
// predicted.
type ActiveSensor struct {
	SensorID string
	Lon, Lat float64
	PM25     float64
}

// Prediction is the IDW estimate for one grid point, plus the provenance
// needed by the distance reporter (§4.9).
type Prediction struct {
	GridIndex       int
	Value           float64
	ContributingIDs []string
}

// Index buckets active sensors by geohash prefix for fast neighbor candidate
// lookup; built fresh per timestamp since the active sensor set changes every
// timestamp.
type Index struct {
	sensors []ActiveSensor
	buckets map[string][]int
}

// BuildIndex buckets the given active sensors by geohash prefix.
func BuildIndex(sensors []ActiveSensor) *Index {
	idx := &Index{sensors: sensors, buckets: make(map[string][]int)}
	for i, s := range sensors {
		gh := geohash.EncodeWithPrecision(s.Lat, s.Lon, bucketPrecision)
		idx.buckets[gh] = append(idx.buckets[gh], i)
	}
	return idx
}

// minCellSizeDeg returns a conservative (smaller-dimension) geohash cell size
// in degrees for the given character precision. Geohash interleaves bits
// starting with longitude, so a precision of p characters (5p bits total)
// splits ceil(5p/2) bits to longitude and the remainder to latitude; each
// dimension's cell width is that dimension's full range divided by 2^bits.
func minCellSizeDeg(precision uint) float64 {
	totalBits := 5 * precision
	lonBits := (totalBits + 1) / 2
	latBits := totalBits / 2
	lonSize := 360.0 / math.Pow(2, float64(lonBits))
	latSize := 180.0 / math.Pow(2, float64(latBits))
	if lonSize < latSize {
		return lonSize
	}
	return latSize
}

// kthSmallestDistance returns the k-th smallest planar distance from (lon,
// lat) among candidates, 1-indexed (k=1 is the nearest).
func kthSmallestDistance(idx *Index, lon, lat float64, candidates []int, k int) float64 {
	dists := make([]float64, len(candidates))
	for i, c := range candidates {
		s := idx.sensors[c]
		dists[i] = geoutil.Planar(lon, lat, s.Lon, s.Lat)
	}
	sort.Float64s(dists)
	return dists[k-1]
}

// candidates returns the indices of the k nearest active sensors to (lon,
// lat), found by an expanding ring search over the geohash grid at
// bucketPrecision: it starts at the query point's own bucket and widens to
// successive rings of neighboring buckets (BFS over the grid of same-
// precision buckets) until it can prove the search is complete.
//
// After searching `ring` rings around the query's own bucket, any bucket not
// yet visited is at least (ring-1) cell-widths away from the query point —
// one ring of slack accounts for the query point's own position inside its
// bucket, which could be right at the edge nearest the unsearched region. So
// once at least k candidates have been found and the k-th nearest of them is
// no farther than that guaranteed radius, no unsearched sensor could possibly
// be closer, and the search stops without ever changing the numeric result —
// this is a performance-only pre-filter, not an approximation.
func (idx *Index) candidates(lon, lat float64, k int) []int {
	if len(idx.sensors) <= k {
		out := make([]int, len(idx.sensors))
		for i := range out {
			out[i] = i
		}
		return out
	}

	gh := geohash.EncodeWithPrecision(lat, lon, bucketPrecision)
	cellSize := minCellSizeDeg(bucketPrecision)

	visited := map[string]bool{gh: true}
	frontier := []string{gh}
	seen := make(map[int]bool)
	var out []int

	add := func(bucket string) {
		for _, i := range idx.buckets[bucket] {
			if !seen[i] {
				seen[i] = true
				out = append(out, i)
			}
		}
	}
	add(gh)

	for ring := 1; len(frontier) > 0; ring++ {
		var next []string
		for _, h := range frontier {
			for _, n := range geohash.Neighbors(h) {
				if !visited[n] {
					visited[n] = true
					next = append(next, n)
				}
			}
		}
		frontier = next
		for _, h := range next {
			add(h)
		}

		if len(out) >= k {
			safeRadius := float64(ring-1) * cellSize
			if safeRadius > 0 && kthSmallestDistance(idx, lon, lat, out, k) <= safeRadius {
				return out
			}
		}
	}
	return out
}

// Predict computes the IDW estimate at (lon, lat) over the k nearest active
// sensors weighted by planar distance^-p (§4.7).
//
// An exact coincidence with a sensor's coordinates (distance == 0) short-circuits
// to that sensor's reading rather than dividing by zero (§4.7 degenerate case).
func (idx *Index) Predict(lon, lat float64, k int, p float64) (Prediction, bool) {
	cand := idx.candidates(lon, lat, k)
	if len(cand) == 0 {
		return Prediction{}, false
	}

	ranks := rankedPool.Get()
	defer func() { rankedPool.Put(ranks) }()
	for _, i := range cand {
		s := idx.sensors[i]
		ranks = append(ranks, ranked{i: i, dist: geoutil.Planar(lon, lat, s.Lon, s.Lat)})
	}
	sort.Slice(ranks, func(a, b int) bool { return ranks[a].dist < ranks[b].dist })
	if len(ranks) > k {
		ranks = ranks[:k]
	}

	if ranks[0].dist == 0 {
		s := idx.sensors[ranks[0].i]
		return Prediction{Value: s.PM25, ContributingIDs: []string{s.SensorID}}, true
	}

	var weightedSum, weightTotal float64
	ids := make([]string, 0, len(ranks))
	for _, r := range ranks {
		s := idx.sensors[r.i]
		w := 1.0 / math.Pow(r.dist, p)
		weightedSum += w * s.PM25
		weightTotal += w
		ids = append(ids, s.SensorID)
	}

	return Prediction{Value: weightedSum / weightTotal, ContributingIDs: ids}, true
}
