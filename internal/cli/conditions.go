/*
PURPOSE:
  Defines the 'conditions' subcommand.
  Lists the operating conditions the backend offers for a domain.

REQUIREMENTS:
  User-specified:
  - List available conditions before picking one to view.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Client.Conditions()

ERROR HANDLING:
  - Returns the classified client error.

USAGE:
  turbine-viewer conditions --domain structural
*/

package cli

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/daryltucker/turbine-viewer/internal/engine"
	"github.com/daryltucker/turbine-viewer/internal/model"
)

var domainName string

var conditionsCmd = &cobra.Command{
	Use:   "conditions",
	Short: "List operating conditions offered by the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		domain, err := model.ParseDomain(domainName)
		if err != nil {
			return err
		}

		conds, err := engine.New(cfg).Conditions(cmd.Context(), domain)
		if err != nil {
			return err
		}

		renderConditions(cmd.OutOrStdout(), conds)
		return nil
	},
}

func renderConditions(w io.Writer, conds []model.Condition) {
	if len(conds) == 0 {
		fmt.Fprintln(w, "(0 conditions)")
		return
	}

	t := newTable(w, table.Row{"ID", "Name", "Effective Head", "Active Power"})
	for _, c := range conds {
		t.AppendRow(table.Row{c.ID, c.Name, c.EffectiveHead, c.ActivePower})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(conditionsCmd)
	conditionsCmd.Flags().StringVar(&domainName, "domain", string(model.DomainFluid), "Domain: fluid or structural")
}
