//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type recordParquetRow struct {
	TSUTCISO    string  `parquet:"name=ts_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ElapsedS    float64 `parquet:"name=elapsed_s, type=DOUBLE"`
	PowerW      float64 `parquet:"name=power_w, type=DOUBLE"`
	HRBPM       float64 `parquet:"name=hr_bpm, type=DOUBLE"`
	CadenceRPM  float64 `parquet:"name=cadence_rpm, type=DOUBLE"`
	SpeedMPS    float64 `parquet:"name=speed_mps, type=DOUBLE"`
	DistanceM   float64 `parquet:"name=distance_m, type=DOUBLE"`
	AltitudeM   float64 `parquet:"name=altitude_m, type=DOUBLE"`
	LatDeg      float64 `parquet:"name=lat_deg, type=DOUBLE"`
	LonDeg      float64 `parquet:"name=lon_deg, type=DOUBLE"`
	RecordIndex int64   `parquet:"name=record_index, type=INT64"`
}

type stepParquetRow struct {
	Position      int64   `parquet:"name=position, type=INT64"`
	BlockIndex    int64   `parquet:"name=block_index, type=INT64"`
	RepeatCount   int64   `parquet:"name=repeat_count, type=INT64"`
	StepIndex     int64   `parquet:"name=step_index, type=INT64"`
	Name          string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Intensity     string  `parquet:"name=intensity, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DurationType  string  `parquet:"name=duration_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DurationValue float64 `parquet:"name=duration_value, type=DOUBLE"`
	TargetType    string  `parquet:"name=target_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TargetUnit    string  `parquet:"name=target_unit, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	TargetValue   float64 `parquet:"name=target_value, type=DOUBLE"`
	TargetMin     float64 `parquet:"name=target_min, type=DOUBLE"`
	TargetMax     float64 `parquet:"name=target_max, type=DOUBLE"`
}

func marshalRecordsParquet(rows []RecordRow) ([]byte, error) {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, recordParquetRow{
			TSUTCISO:    r.TSUTCISO,
			ElapsedS:    r.ElapsedS,
			PowerW:      valueOrNaN(r.PowerW),
			HRBPM:       valueOrNaN(r.HRBPM),
			CadenceRPM:  valueOrNaN(r.CadenceRPM),
			SpeedMPS:    valueOrNaN(r.SpeedMPS),
			DistanceM:   valueOrNaN(r.DistanceM),
			AltitudeM:   valueOrNaN(r.AltitudeM),
			LatDeg:      valueOrNaN(r.LatDeg),
			LonDeg:      valueOrNaN(r.LonDeg),
			RecordIndex: int64(r.RecordIndex),
		})
	}
	return marshalParquet(new(recordParquetRow), out)
}

func marshalStepsParquet(rows []StepRow) ([]byte, error) {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, stepParquetRow{
			Position:      int64(r.Position),
			BlockIndex:    int64(r.BlockIndex),
			RepeatCount:   int64(r.RepeatCount),
			StepIndex:     int64(r.StepIndex),
			Name:          r.Name,
			Intensity:     r.Intensity,
			DurationType:  r.DurationType,
			DurationValue: valueOrNaN(r.DurationValue),
			TargetType:    r.TargetType,
			TargetUnit:    r.TargetUnit,
			TargetValue:   valueOrNaN(r.TargetValue),
			TargetMin:     valueOrNaN(r.TargetMin),
			TargetMax:     valueOrNaN(r.TargetMax),
		})
	}
	return marshalParquet(new(stepParquetRow), out)
}

func marshalParquet(schema any, rows []any) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
