package writer

import (
	"os"

	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/apache/arrow/go/v14/parquet/schema"

	"github.com/jakartapm25/kelurahan-engine/internal/apperr"
	"github.com/jakartapm25/kelurahan-engine/internal/models"
	"github.com/jakartapm25/kelurahan-engine/internal/stata"
)

// resultSchema and distanceSchema mirror the row-group/column-chunk shape read
// by the retrieved parquet tooling (string, int64-timestamp, float64 columns),
// the encoding-side counterpart of that reader's ByteArray/Int64/Float64
// column chunk readers.
func resultSchema() *schema.Schema {
	fields := schema.FieldList{
		schema.NewByteArrayNode("kelurahan_name", parquet.Repetitions.Required, -1),
		schema.NewInt64Node("timestamp", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("avg_pm25", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("min_pm25", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("max_pm25", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_grids", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_sensors_used", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_contributing_sensors", parquet.Repetitions.Required, -1),
	}
	root, _ := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	return schema.NewSchema(root)
}

func distanceSchema() *schema.Schema {
	fields := schema.FieldList{
		schema.NewByteArrayNode("kelurahan_name", parquet.Repetitions.Required, -1),
		schema.NewInt64Node("timestamp", parquet.Repetitions.Required, -1),
		schema.NewByteArrayNode("timestamp_type", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("avg_pm25", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("min_pm25", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("max_pm25", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_grids", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_sensors_used", parquet.Repetitions.Required, -1),
		schema.NewInt32Node("n_contributing_sensors", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("min_distance_km", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("median_distance_km", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("avg_distance_km", parquet.Repetitions.Required, -1),
		schema.NewFloat64Node("max_distance_km", parquet.Repetitions.Required, -1),
	}
	root, _ := schema.NewGroupNode("schema", parquet.Repetitions.Required, fields, -1)
	return schema.NewSchema(root)
}

func writeResultsParquet(path string, rows []models.ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	defer f.Close()

	pw := file.NewParquetWriter(f, resultSchema().Root())
	defer pw.Close()
	rgw := pw.AppendRowGroup()
	defer rgw.Close()

	names := make([]parquet.ByteArray, len(rows))
	timestamps := make([]int64, len(rows))
	avg := make([]float64, len(rows))
	min := make([]float64, len(rows))
	max := make([]float64, len(rows))
	nGrids := make([]int32, len(rows))
	nUsed := make([]int32, len(rows))
	nContrib := make([]int32, len(rows))

	for i, r := range rows {
		names[i] = parquet.ByteArray(r.KelurahanName)
		timestamps[i] = stata.EncodeTC(r.TimestampMs / 1000)
		avg[i] = r.AvgPM25
		min[i] = r.MinPM25
		max[i] = r.MaxPM25
		nGrids[i] = int32(r.NGrids)
		nUsed[i] = int32(r.NSensorsUsed)
		nContrib[i] = int32(r.NContributingSensors)
	}

	if err := writeByteArrayColumn(rgw, names); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeInt64Column(rgw, timestamps); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeFloat64Column(rgw, avg); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeFloat64Column(rgw, min); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeFloat64Column(rgw, max); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeInt32Column(rgw, nGrids); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeInt32Column(rgw, nUsed); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	if err := writeInt32Column(rgw, nContrib); err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	return nil
}

func writeDistancesParquet(path string, rows []models.DistanceRow) error {
	f, err := os.Create(path)
	if err != nil {
		return apperr.Wrap(apperr.KindIO, err)
	}
	defer f.Close()

	pw := file.NewParquetWriter(f, distanceSchema().Root())
	defer pw.Close()
	rgw := pw.AppendRowGroup()
	defer rgw.Close()

	names := make([]parquet.ByteArray, len(rows))
	timestamps := make([]int64, len(rows))
	tsType := make([]parquet.ByteArray, len(rows))
	avg := make([]float64, len(rows))
	min := make([]float64, len(rows))
	max := make([]float64, len(rows))
	nGrids := make([]int32, len(rows))
	nUsed := make([]int32, len(rows))
	nContrib := make([]int32, len(rows))
	minDist := make([]float64, len(rows))
	medDist := make([]float64, len(rows))
	avgDist := make([]float64, len(rows))
	maxDist := make([]float64, len(rows))

	for i, r := range rows {
		names[i] = parquet.ByteArray(r.KelurahanName)
		timestamps[i] = stata.EncodeTC(r.TimestampMs / 1000)
		tsType[i] = parquet.ByteArray(r.TimestampType)
		avg[i] = r.AvgPM25
		min[i] = r.MinPM25
		max[i] = r.MaxPM25
		nGrids[i] = int32(r.NGrids)
		nUsed[i] = int32(r.NSensorsUsed)
		nContrib[i] = int32(r.NContributingSensors)
		minDist[i] = r.MinDistanceKm
		medDist[i] = r.MedianDistanceKm
		avgDist[i] = r.AvgDistanceKm
		maxDist[i] = r.MaxDistanceKm
	}

	cols := []func() error{
		func() error { return writeByteArrayColumn(rgw, names) },
		func() error { return writeInt64Column(rgw, timestamps) },
		func() error { return writeByteArrayColumn(rgw, tsType) },
		func() error { return writeFloat64Column(rgw, avg) },
		func() error { return writeFloat64Column(rgw, min) },
		func() error { return writeFloat64Column(rgw, max) },
		func() error { return writeInt32Column(rgw, nGrids) },
		func() error { return writeInt32Column(rgw, nUsed) },
		func() error { return writeInt32Column(rgw, nContrib) },
		func() error { return writeFloat64Column(rgw, minDist) },
		func() error { return writeFloat64Column(rgw, medDist) },
		func() error { return writeFloat64Column(rgw, avgDist) },
		func() error { return writeFloat64Column(rgw, maxDist) },
	}
	for _, c := range cols {
		if err := c(); err != nil {
			return apperr.Wrap(apperr.KindIO, err)
		}
	}
	return nil
}

func writeByteArrayColumn(rgw file.SerialRowGroupWriter, values []parquet.ByteArray) error {
	cw, err := rgw.NextColumn()
	if err != nil {
		return err
	}
	w := cw.(*file.ByteArrayColumnChunkWriter)
	_, err = w.WriteBatch(values, nil, nil)
	return err
}

func writeInt64Column(rgw file.SerialRowGroupWriter, values []int64) error {
	cw, err := rgw.NextColumn()
	if err != nil {
		return err
	}
	w := cw.(*file.Int64ColumnChunkWriter)
	_, err = w.WriteBatch(values, nil, nil)
	return err
}

func writeInt32Column(rgw file.SerialRowGroupWriter, values []int32) error {
	cw, err := rgw.NextColumn()
	if err != nil {
		return err
	}
	w := cw.(*file.Int32ColumnChunkWriter)
	_, err = w.WriteBatch(values, nil, nil)
	return err
}

func writeFloat64Column(rgw file.SerialRowGroupWriter, values []float64) error {
	cw, err := rgw.NextColumn()
	if err != nil {
		return err
	}
	w := cw.(*file.Float64ColumnChunkWriter)
	_, err = w.WriteBatch(values, nil, nil)
	return err
}
