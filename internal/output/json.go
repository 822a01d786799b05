package output

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/daryltucker/turbine-viewer/internal/model"
)

// JSONWriter writes strain points as JSON Lines.
type JSONWriter struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter, truncating path.
func NewJSONWriter(path string) (*JSONWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &JSONWriter{
		file:    f,
		encoder: json.NewEncoder(f),
	}, nil
}

// Write writes a single point as a JSON line.
func (jw *JSONWriter) Write(p model.StrainPoint) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(p)
}

// Close closes the underlying file.
func (jw *JSONWriter) Close() error {
	return jw.file.Close()
}
