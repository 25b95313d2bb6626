package models

// GridPoint is a node of the fixed lon/lat lattice built once per run (§4.6).
// Index is the point's implicit integer id, assigned by row order at build time.
type GridPoint struct {
	Index int
	Lon   float64
	Lat   float64
}

// Kelurahan is an administrative sub-district polygon (§3).
type Kelurahan struct {
	Index int
	Name  string
}

// NameFieldPriority is the ordered list of shapefile attribute names tried when
// resolving a kelurahan's display name (§3).
var NameFieldPriority = []string{
	"KELURAHAN_NAME", "NAMOBJ", "NAMA", "DESA", "NAME", "KELURAHAN",
}
