/*
PURPOSE:
  Defines the 'serve' subcommand.
  Runs slots behind the HTTP/websocket stream until interrupted.

REQUIREMENTS:
  User-specified:
  - Watch and drive slots live from another process or a browser.

  Implementation-discovered:
  - --head/--power optionally preload the first condition before serving.
  - Slots are closed after the server stops so no load outlives the command.

ARCHITECTURE INTEGRATION:
  - Calls: internal/stream.Server.Serve()
  - Uses: internal/viewer, internal/config

ERROR HANDLING:
  - A failed preload is logged; the server still starts.
  - Returns listener errors.

USAGE:
  turbine-viewer serve --listen :8080 --compare
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/daryltucker/turbine-viewer/internal/model"
	"github.com/daryltucker/turbine-viewer/internal/output"
	"github.com/daryltucker/turbine-viewer/internal/stream"
	"github.com/daryltucker/turbine-viewer/internal/viewer"
)

var listenOverride string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve slot status and events over HTTP and websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if listenOverride != "" {
			cfg.Listen = listenOverride
		}
		domain, err := model.ParseDomain(domainName)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		bus := viewer.NewBus()
		var slots []*viewer.Slot
		if compare {
			slots = []*viewer.Slot{
				newSlot(cfg, "condition-1", domain, cfg.ComparisonCamera, bus),
				newSlot(cfg, "condition-2", domain, cfg.ComparisonCamera, bus),
			}
		} else {
			slots = []*viewer.Slot{newSlot(cfg, "main", domain, cfg.SingleCamera, bus)}
		}
		defer func() {
			for _, s := range slots {
				if err := s.Close(); err != nil {
					output.Logger.Warn("Failed to close slot", "slot", s.Name(), "error", err)
				}
			}
		}()

		if cmd.Flags().Changed("head") || cmd.Flags().Changed("power") {
			p := model.QueryParams{EffectiveHead: queryHead, ActivePower: queryPower}
			for _, s := range slots {
				s := s
				go func() {
					if err := s.Query(ctx, p); err != nil {
						output.Logger.Error("Preload failed", "slot", s.Name(), "error", err)
					}
				}()
			}
		}

		return stream.New(bus, slots...).Serve(ctx, cfg.Listen)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenOverride, "listen", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&domainName, "domain", string(model.DomainFluid), "Domain: fluid or structural")
	serveCmd.Flags().BoolVar(&compare, "compare", false, "Serve two comparison slots")
	serveCmd.Flags().Float64Var(&queryHead, "head", 0, "Preload: effective head")
	serveCmd.Flags().Float64Var(&queryPower, "power", 0, "Preload: active power")
}
