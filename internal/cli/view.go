/*
PURPOSE:
  Defines the 'view' subcommand.
  Fetches one condition (or two with --compare), loads the requested mode and
  reports what each slot ended up holding.

REQUIREMENTS:
  User-specified:
  - Single view and side-by-side comparison of two conditions.
  - Select card, view button and profile orientation.

  Implementation-discovered:
  - Need to load config first, then build slots sharing one event bus.
  - Slot events are logged while the command runs so slow loads stay visible.
  - Comparison failures of one slot must not hide the other slot's report.

ARCHITECTURE INTEGRATION:
  - Calls: internal/viewer (Slot, Comparison)
  - Uses: internal/config, internal/engine, internal/mesh, internal/stream (Status)

ERROR HANDLING:
  - Prints the report first, then returns the joined slot error.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Build slots -> Query -> Apply mode -> Report.

USAGE:
  turbine-viewer view --head 120 --power 300 --card pressure --button profile --profile v
  turbine-viewer view --head 120 --power 300 --compare --compare-head 90 --compare-power 200

RELATED FILES:
  - internal/viewer/slot.go
  - internal/viewer/comparison.go
*/

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/daryltucker/turbine-viewer/internal/config"
	"github.com/daryltucker/turbine-viewer/internal/engine"
	"github.com/daryltucker/turbine-viewer/internal/mesh"
	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/stream"
	"github.com/daryltucker/turbine-viewer/internal/viewer"
)

var (
	queryHead    float64
	queryPower   float64
	compare      bool
	compareHead  float64
	comparePower float64
	cardName     string
	buttonName   string
	profileName  string
	jsonOutput   bool
)

// controller is what Slot and Comparison share for mode changes.
type controller interface {
	SelectCard(ctx context.Context, card model.Card) error
	PressButton(ctx context.Context, b model.Button) error
	SetProfile(ctx context.Context, p model.Profile) error
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Fetch a condition and load its 3D resources",
	Example: `  # Velocity field of one condition
  turbine-viewer view --head 120 --power 300

  # Vertical pressure profile
  turbine-viewer view --head 120 --power 300 --card pressure --button profile --profile v

  # Compare two conditions, streamlines on both
  turbine-viewer view --head 120 --power 300 --compare --compare-head 90 --compare-power 200 --button streamline`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		domain, err := model.ParseDomain(domainName)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		bus := viewer.NewBus()
		done := logEvents(bus)
		defer done()

		first := model.QueryParams{EffectiveHead: queryHead, ActivePower: queryPower}
		var (
			slots   []*viewer.Slot
			ctl     controller
			loadErr error
		)
		if compare {
			c := viewer.NewComparison(
				newSlot(cfg, "condition-1", domain, cfg.ComparisonCamera, bus),
				newSlot(cfg, "condition-2", domain, cfg.ComparisonCamera, bus),
			)
			defer c.Close()
			slots, ctl = c.Slots(), c
			second := model.QueryParams{EffectiveHead: compareHead, ActivePower: comparePower}
			loadErr = c.Query(ctx, first, second)
		} else {
			s := newSlot(cfg, "main", domain, cfg.SingleCamera, bus)
			defer s.Close()
			slots, ctl = []*viewer.Slot{s}, s
			loadErr = s.Query(ctx, first)
		}

		if loadErr == nil {
			loadErr = applyMode(ctx, ctl)
		}

		statuses := make([]stream.SlotStatus, 0, len(slots))
		for _, s := range slots {
			statuses = append(statuses, stream.Status(s))
		}
		if err := writeReport(cmd.OutOrStdout(), statuses, jsonOutput); err != nil {
			return errors.Join(loadErr, err)
		}
		return loadErr
	},
}

func newSlot(cfg *config.Config, name string, domain model.Domain, cam config.CameraConfig, bus *viewer.Bus) *viewer.Slot {
	client := engine.New(cfg)
	return viewer.NewSlot(viewer.Options{
		Name:    name,
		Domain:  domain,
		Fetcher: client,
		Decoder: &mesh.HTTPDecoder{BaseURL: cfg.BaseURL, Client: client.HTTP},
		Camera:  cam,
		Bus:     bus,
	})
}

// applyMode applies the card, profile and button flags in that order, so a
// profile button press loads the requested orientation directly.
func applyMode(ctx context.Context, ctl controller) error {
	if cardName != "" {
		card, err := model.ParseCard(cardName)
		if err != nil {
			return err
		}
		if err := ctl.SelectCard(ctx, card); err != nil {
			return err
		}
	}
	if profileName != "" {
		p, err := model.ParseProfile(profileName)
		if err != nil {
			return err
		}
		if err := ctl.SetProfile(ctx, p); err != nil {
			return err
		}
	}
	if buttonName != "" {
		b, err := model.ParseButton(buttonName)
		if err != nil {
			return err
		}
		if err := ctl.PressButton(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// logEvents logs bus events until the returned func is called.
func logEvents(bus *viewer.Bus) func() {
	events := bus.Subscribe()
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for e := range events {
			attrs := []any{"slot", e.Slot, "kind", e.Kind, "state", e.State, "mode", e.Mode.String()}
			if e.Error != "" {
				attrs = append(attrs, "error", e.Error)
			}
			output.Logger.Debug("Slot event", attrs...)
		}
	}()
	return func() {
		bus.Unsubscribe(events)
		<-finished
	}
}

func writeReport(w io.Writer, statuses []stream.SlotStatus, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(statuses)
	}

	for _, st := range statuses {
		fmt.Fprintf(w, "[%s] state=%s mode=%s", st.Name, st.State, st.Mode)
		if st.Params != nil {
			fmt.Fprintf(w, " (%s)", st.Params)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  resources: %d\n", len(st.Resources))
		if len(st.Resources) > 0 {
			t := newTable(w, table.Row{"Kind", "ID"})
			for _, r := range st.Resources {
				t.AppendRow(table.Row{r.Kind, r.ID})
			}
			t.Render()
		}
		if len(st.Cards) > 0 {
			t := newTable(w, table.Row{"Card", "Item", "Value"})
			for _, card := range st.Cards {
				for _, item := range card.Items {
					t.AppendRow(table.Row{card.Card, item.Label, item.Value})
				}
			}
			t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
			t.Render()
		}
	}
	return nil
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVar(&domainName, "domain", string(model.DomainFluid), "Domain: fluid or structural")
	viewCmd.Flags().Float64Var(&queryHead, "head", 0, "Effective head of the condition")
	viewCmd.Flags().Float64Var(&queryPower, "power", 0, "Active power of the condition")
	viewCmd.Flags().BoolVar(&compare, "compare", false, "Compare with a second condition side by side")
	viewCmd.Flags().Float64Var(&compareHead, "compare-head", 0, "Effective head of the second condition")
	viewCmd.Flags().Float64Var(&comparePower, "compare-power", 0, "Active power of the second condition")
	viewCmd.Flags().StringVar(&cardName, "card", "", "Card: velocity, pressure, cavitation, vortex, displacement, stress")
	viewCmd.Flags().StringVar(&buttonName, "button", "", "View button: geometry, profile, streamline")
	viewCmd.Flags().StringVar(&profileName, "profile", "", "Profile orientation: h or v")
	viewCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
}
