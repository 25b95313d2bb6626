package stationstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
)

// CSVStore reads station overrides from a flat file with columns
// {sensor_id, longitude, latitude}.
type CSVStore struct {
	Path string
}

func (s *CSVStore) Load() (map[string]models.Sensor, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open station table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read station table header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range []string{"sensor_id", "longitude", "latitude"} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("station table missing required column %q", col)
		}
	}

	out := make(map[string]models.Sensor)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read station table row: %w", err)
		}
		id := strings.TrimSpace(record[idx["sensor_id"]])
		if id == "" {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(record[idx["longitude"]]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(record[idx["latitude"]]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if _, exists := out[id]; !exists {
			out[id] = models.Sensor{ID: id, Lon: lon, Lat: lat, Source: models.SourceStationOverride}
		}
	}
	return out, nil
}
