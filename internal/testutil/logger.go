// Package testutil provides test helpers shared across packages.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/daryltucker/turbine-viewer/internal/output"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// UseTestLogger routes output.Logger to t.Log for the duration of the test.
func UseTestLogger(t testing.TB) {
	t.Helper()
	prev := output.Logger
	output.SetLogger(NewTestLogger(t))
	t.Cleanup(func() { output.SetLogger(prev) })
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
