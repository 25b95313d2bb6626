package stationstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStationCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCSVStoreLoadsOverrides(t *testing.T) {
	path := writeStationCSV(t, "sensor_id,longitude,latitude\na,106.8,-6.2\nb,106.9,-6.3\n")
	store := &CSVStore{Path: path}
	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 106.8, got["a"].Lon)
}

func TestCSVStoreFirstRowWinsForDuplicateSensor(t *testing.T) {
	path := writeStationCSV(t, "sensor_id,longitude,latitude\na,106.8,-6.2\na,999,999\n")
	store := &CSVStore{Path: path}
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 106.8, got["a"].Lon)
}

func TestCSVStoreSkipsUnparseableRow(t *testing.T) {
	path := writeStationCSV(t, "sensor_id,longitude,latitude\na,not-a-number,-6.2\nb,106.9,-6.3\n")
	store := &CSVStore{Path: path}
	got, err := store.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got["a"]
	assert.False(t, ok)
}

func TestCSVStoreMissingColumnErrors(t *testing.T) {
	path := writeStationCSV(t, "sensor_id,longitude\na,106.8\n")
	store := &CSVStore{Path: path}
	_, err := store.Load()
	assert.Error(t, err)
}
