package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"greenhouse-forecaster/models"
)

var csvHeader = []string{"Time", "Predicted Value"}

// FileStore writes one "Time,Predicted Value" CSV per channel under dir.
// Files are written next to their target and renamed into place.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

func (s *FileStore) Path(ch models.Channel) string {
	name := ch.Artifact
	if name == "" {
		name = "Predicted_" + ch.ID + ".csv"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Save(ctx context.Context, ch models.Channel, rec models.ForecastRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.Path(ch)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".forecast-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := writeRecord(tmp, rec); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), target)
}

func (s *FileStore) Load(ctx context.Context, ch models.Channel) (models.ForecastRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ForecastRecord{}, err
	}

	f, err := os.Open(s.Path(ch))
	if errors.Is(err, os.ErrNotExist) {
		return models.ForecastRecord{}, models.ErrArtifactNotFound
	}
	if err != nil {
		return models.ForecastRecord{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return models.ForecastRecord{}, err
	}

	points, err := readPoints(f)
	if err != nil {
		return models.ForecastRecord{}, fmt.Errorf("%w: %s: %v", models.ErrArtifactCorrupt, s.Path(ch), err)
	}

	return models.ForecastRecord{
		Channel:     ch.ID,
		GeneratedAt: info.ModTime().UTC(),
		Points:      points,
	}, nil
}

func writeRecord(w io.Writer, rec models.ForecastRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range rec.Points {
		row := []string{
			p.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(p.Value, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readPoints(r io.Reader) ([]models.ForecastPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if header[0] != csvHeader[0] || header[1] != csvHeader[1] {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var points []models.ForecastPoint
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		ts, err := models.ParseTimestamp(row[0])
		if err != nil {
			return nil, fmt.Errorf("time %q: %w", row[0], err)
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", row[1], err)
		}
		points = append(points, models.ForecastPoint{Timestamp: ts, Value: v})
	}
	return points, nil
}
