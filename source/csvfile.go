package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"greenhouse-forecaster/models"
)

const timestampColumn = "created_at"

// CSVFile reads a master sensor CSV with a created_at column and one column
// per channel.
type CSVFile struct {
	path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

func (c *CSVFile) Fetch(ctx context.Context, ch models.Channel, limit int) Result {
	if err := ctx.Err(); err != nil {
		return Unavailable(err)
	}

	f, err := os.Open(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Unavailable(fmt.Errorf("master csv: %w", err))
		}
		return Unavailable(err)
	}
	defer f.Close()

	return parseMaster(f, ch, limit)
}

func parseMaster(r io.Reader, ch models.Channel, limit int) Result {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return OK(nil)
	}
	if err != nil {
		return Corrupt(fmt.Errorf("master csv header: %w", err))
	}

	timeIdx, valueIdx := -1, -1
	for i, name := range header {
		switch name {
		case timestampColumn:
			timeIdx = i
		case ch.SourceColumn():
			valueIdx = i
		}
	}
	if timeIdx < 0 {
		return Corrupt(fmt.Errorf("master csv: missing %s column", timestampColumn))
	}
	if valueIdx < 0 {
		return Corrupt(fmt.Errorf("master csv: missing %s column", ch.SourceColumn()))
	}

	var readings []models.RawReading
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Corrupt(fmt.Errorf("master csv row: %w", err))
		}
		if timeIdx >= len(record) {
			continue
		}
		ts, err := models.ParseTimestamp(record[timeIdx])
		if err != nil {
			continue
		}

		reading := models.RawReading{Timestamp: ts, Channel: ch.ID}
		if valueIdx < len(record) && record[valueIdx] != "" {
			reading.Value, reading.Present = record[valueIdx], true
		}
		readings = append(readings, reading)
	}

	if limit > 0 && len(readings) > limit {
		readings = readings[len(readings)-limit:]
	}
	return OK(readings)
}
