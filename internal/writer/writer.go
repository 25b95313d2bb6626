// Package writer encodes the result and distance tables to the run's output
// directory (§6). Parquet is the primary encoding (grounded on the
// apache/arrow/go/v14/parquet stack seen in the retrieved parquet tooling);
// CSV is the secondary/fallback encoding via the standard library, the one
// legitimate stdlib carve-out in this module since no third-party CSV encoder
// appears anywhere in the retrieved corpus.
package writer

import (
	"fmt"
	"path/filepath"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// Format selects the output encoding.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// ResultFilename builds the primary result table's filename (§6).
func ResultFilename(k int, from, to string, format Format) string {
	return fmt.Sprintf("jakarta_kelurahan_pm25_nmax%d_%s_to_%s.%s", k, from, to, ext(format))
}

// DistanceFilename builds the distance-provenance table's filename (§6).
func DistanceFilename(from, to string, format Format) string {
	return fmt.Sprintf("jakarta_kelurahan_distances_%s_to_%s.%s", from, to, ext(format))
}

func ext(f Format) string {
	if f == FormatParquet {
		return "parquet"
	}
	return "csv"
}

// WriteResults writes the primary result table in the given format to dir.
func WriteResults(dir string, rows []models.ResultRow, k int, from, to string, format Format) (string, error) {
	name := ResultFilename(k, from, to, format)
	path := filepath.Join(dir, name)
	var err error
	if format == FormatParquet {
		err = writeResultsParquet(path, rows)
	} else {
		err = writeResultsCSV(path, rows)
	}
	return path, err
}

// WriteDistances writes the distance-provenance table in the given format to dir.
func WriteDistances(dir string, rows []models.DistanceRow, from, to string, format Format) (string, error) {
	name := DistanceFilename(from, to, format)
	path := filepath.Join(dir, name)
	var err error
	if format == FormatParquet {
		err = writeDistancesParquet(path, rows)
	} else {
		err = writeDistancesCSV(path, rows)
	}
	return path, err
}
