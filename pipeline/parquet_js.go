//go:build js

package pipeline

import "errors"

var errParquetUnavailable = errors.New("parquet output is not available in the js build, use csv")

func marshalRecordsParquet([]RecordRow) ([]byte, error) {
	return nil, errParquetUnavailable
}

func marshalStepsParquet([]StepRow) ([]byte, error) {
	return nil, errParquetUnavailable
}
