package writer

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/internal/stata"
)

func writeResultsCSV(path string, rows []models.ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"kelurahan_name", "timestamp", "avg_pm25", "min_pm25", "max_pm25", "n_grids", "n_sensors_used", "n_contributing_sensors"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.KelurahanName,
			strconv.FormatInt(stata.EncodeTC(r.TimestampMs/1000), 10),
			strconv.FormatFloat(r.AvgPM25, 'f', -1, 64),
			strconv.FormatFloat(r.MinPM25, 'f', -1, 64),
			strconv.FormatFloat(r.MaxPM25, 'f', -1, 64),
			strconv.Itoa(r.NGrids),
			strconv.Itoa(r.NSensorsUsed),
			strconv.Itoa(r.NContributingSensors),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func writeDistancesCSV(path string, rows []models.DistanceRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"kelurahan_name", "timestamp", "timestamp_type",
		"avg_pm25", "min_pm25", "max_pm25", "n_grids", "n_sensors_used", "n_contributing_sensors",
		"min_distance_km", "median_distance_km", "avg_distance_km", "max_distance_km",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.KelurahanName,
			strconv.FormatInt(stata.EncodeTC(r.TimestampMs/1000), 10),
			string(r.TimestampType),
			strconv.FormatFloat(r.AvgPM25, 'f', -1, 64),
			strconv.FormatFloat(r.MinPM25, 'f', -1, 64),
			strconv.FormatFloat(r.MaxPM25, 'f', -1, 64),
			strconv.Itoa(r.NGrids),
			strconv.Itoa(r.NSensorsUsed),
			strconv.Itoa(r.NContributingSensors),
			strconv.FormatFloat(r.MinDistanceKm, 'f', -1, 64),
			strconv.FormatFloat(r.MedianDistanceKm, 'f', -1, 64),
			strconv.FormatFloat(r.AvgDistanceKm, 'f', -1, 64),
			strconv.FormatFloat(r.MaxDistanceKm, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
