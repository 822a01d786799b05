/*
PURPOSE:
  Writes strain monitoring points to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Export monitoring data to CSV.

  Implementation-discovered:
  - Realtime monitoring appends a batch per refresh, so the file handle stays open.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (monitor)
  - Consumes: internal/model.StrainPoint

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Mutex guards concurrent writers.

USAGE:
  w, err := output.NewCSVWriter("strain.csv")
  w.Write(point)
  w.Close()
*/

package output

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/daryltucker/turbine-viewer/internal/model"
)

// CSVWriter handles writing strain points to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// CSVHeader is the column order of the CSV export.
var CSVHeader = []string{
	"timestamp", "time",
	"one_upper", "one_door", "two_cover", "two_door",
	"three_cover", "three_door", "four_cover", "four_door",
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single point to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(p model.StrainPoint) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.writer.Write(csvRecord(p)); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

func csvRecord(p model.StrainPoint) []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		strconv.FormatInt(p.Timestamp, 10),
		time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339),
		f(p.OneUpper), f(p.OneDoor),
		f(p.TwoCover), f(p.TwoDoor),
		f(p.ThreeCover), f(p.ThreeDoor),
		f(p.FourCover), f(p.FourDoor),
	}
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
