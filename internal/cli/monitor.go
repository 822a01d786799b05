/*
PURPOSE:
  Defines the 'monitor' subcommand.
  Exports strain monitoring data for a time window to CSV and/or JSON Lines.

REQUIREMENTS:
  User-specified:
  - Range presets: realtime (last 24 hours), 3days, 7days, or an explicit --from/--to range.
  - Realtime monitoring refreshes periodically.

  Implementation-discovered:
  - Only realtime without an explicit range can follow; fixed windows never change.
  - Each refresh re-queries the sliding window, so points already written are skipped.
  - Files are named after the window so repeated exports do not overwrite each other.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Client.StrainMonitoring()
  - Uses: internal/output (CSVWriter, JSONWriter)

ERROR HANDLING:
  - Returns error on bad range flags, fetch failure or write failure.
  - While following, a failed refresh is logged and retried on the next tick.

USAGE:
  turbine-viewer monitor --range 3days -o ./exports
  turbine-viewer monitor --follow --format csv

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go
*/

package cli

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/turbine-viewer/internal/engine"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
)

const day = 24 * time.Hour

var (
	rangePreset    string
	rangeFrom      string
	rangeTo        string
	follow         bool
	exportFormat   string
	outputOverride string
)

var rangePresets = map[string]time.Duration{
	"realtime": day,
	"3days":    3 * day,
	"7days":    7 * day,
}

// strainWindow resolves the range flags to unix seconds. An explicit range
// wins over the preset.
func strainWindow(preset, from, to string, now time.Time) (start, stop int64, err error) {
	if from != "" || to != "" {
		if from == "" || to == "" {
			return 0, 0, fmt.Errorf("--from and --to must be given together")
		}
		f, err := parseTime(from)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --from: %w", err)
		}
		t, err := parseTime(to)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid --to: %w", err)
		}
		if !t.After(f) {
			return 0, 0, fmt.Errorf("--to (%s) must be after --from (%s)", to, from)
		}
		return f.Unix(), t.Unix(), nil
	}

	span, ok := rangePresets[preset]
	if !ok {
		return 0, 0, fmt.Errorf("unknown range %q (want realtime, 3days or 7days)", preset)
	}
	return now.Add(-span).Unix(), now.Unix(), nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}

// strainSink fans points out to the selected writers.
type strainSink struct {
	csv   *output.CSVWriter
	jsonl *output.JSONWriter
	start int64
	seen  map[int64]struct{}
	count int
}

func newStrainSink(dir, format string, start, stop int64) (*strainSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	base := filepath.Join(dir, fmt.Sprintf("strain_%d_%d", start, stop))

	s := &strainSink{start: start, seen: make(map[int64]struct{})}
	format = strings.ToLower(format)
	if format == "csv" || format == "both" {
		w, err := output.NewCSVWriter(base + ".csv")
		if err != nil {
			return nil, err
		}
		s.csv = w
	}
	if format == "jsonl" || format == "both" {
		w, err := output.NewJSONWriter(base + ".jsonl")
		if err != nil {
			s.Close()
			return nil, err
		}
		s.jsonl = w
	}
	if s.csv == nil && s.jsonl == nil {
		return nil, fmt.Errorf("unknown format %q (want csv, jsonl or both)", format)
	}
	return s, nil
}

// Write appends points in timestamp order, skipping points before the window
// start and timestamps already written. The batch may arrive in any order.
func (s *strainSink) Write(points []model.StrainPoint) error {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b model.StrainPoint) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	for _, p := range sorted {
		if p.Timestamp < s.start {
			continue
		}
		if _, ok := s.seen[p.Timestamp]; ok {
			continue
		}
		if s.csv != nil {
			if err := s.csv.Write(p); err != nil {
				return err
			}
		}
		if s.jsonl != nil {
			if err := s.jsonl.Write(p); err != nil {
				return err
			}
		}
		s.seen[p.Timestamp] = struct{}{}
		s.count++
	}
	return nil
}

// forget drops remembered timestamps older than ts. Points older than ts
// are no longer skipped, so callers only pass the start of a window that
// has moved forward.
func (s *strainSink) forget(ts int64) {
	for stamp := range s.seen {
		if stamp < ts {
			delete(s.seen, stamp)
		}
	}
	s.start = max(s.start, ts)
}

func (s *strainSink) Close() {
	if s.csv != nil {
		if err := s.csv.Close(); err != nil {
			output.Logger.Warn("Failed to close CSV export", "error", err)
		}
	}
	if s.jsonl != nil {
		if err := s.jsonl.Close(); err != nil {
			output.Logger.Warn("Failed to close JSONL export", "error", err)
		}
	}
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Export strain monitoring data",
	Example: `  # Last 24 hours to CSV and JSON Lines
  turbine-viewer monitor

  # Explicit range, CSV only
  turbine-viewer monitor --from 2024-05-01 --to 2024-05-03 --format csv -o ./exports

  # Keep refreshing the realtime window
  turbine-viewer monitor --follow`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		explicit := rangeFrom != "" || rangeTo != ""
		if follow && (rangePreset != "realtime" || explicit) {
			return fmt.Errorf("--follow only applies to the realtime range")
		}

		start, stop, err := strainWindow(rangePreset, rangeFrom, rangeTo, time.Now())
		if err != nil {
			return err
		}
		sink, err := newStrainSink(cfg.OutputDir, exportFormat, start, stop)
		if err != nil {
			return err
		}
		defer sink.Close()

		client := engine.New(cfg)
		ctx := cmd.Context()

		points, err := client.StrainMonitoring(ctx, start, stop)
		if err != nil {
			return err
		}
		if err := sink.Write(points); err != nil {
			return fmt.Errorf("failed to write strain points: %w", err)
		}
		output.Logger.Info("Strain data exported", "points", sink.count, "dir", cfg.OutputDir)
		if !follow {
			return nil
		}

		ticker := time.NewTicker(cfg.MonitorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				output.Logger.Info("Monitoring stopped", "points", sink.count)
				return nil
			case now := <-ticker.C:
				start, stop, _ := strainWindow("realtime", "", "", now)
				points, err := client.StrainMonitoring(ctx, start, stop)
				if err != nil {
					output.Logger.Error("Strain refresh failed", "error", err)
					continue
				}
				sink.forget(start)
				before := sink.count
				if err := sink.Write(points); err != nil {
					return fmt.Errorf("failed to write strain points: %w", err)
				}
				output.Logger.Info("Strain data refreshed", "new_points", sink.count-before)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().StringVar(&rangePreset, "range", "realtime", "Range preset: realtime (24h), 3days, 7days")
	monitorCmd.Flags().StringVar(&rangeFrom, "from", "", "Range start (RFC3339 or YYYY-MM-DD)")
	monitorCmd.Flags().StringVar(&rangeTo, "to", "", "Range end (RFC3339 or YYYY-MM-DD)")
	monitorCmd.Flags().BoolVar(&follow, "follow", false, "Keep refreshing the realtime window")
	monitorCmd.Flags().StringVar(&exportFormat, "format", "both", "Export format: csv, jsonl or both")
	monitorCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for exports")
}
