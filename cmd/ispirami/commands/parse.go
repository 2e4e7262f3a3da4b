package commands

import (
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/korjavin/ispirami/pkg/ingredient"
	"github.com/korjavin/ispirami/pkg/quantity"
)

// ParseCmd shows how an ingredient line is read
var ParseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Show the quantity and unit read from an ingredient line",
	Example: `  ispirami parse "Farina 00 250 g"
  ispirami parse "Uova 2 (medie)"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := strings.Join(args, " ")
		amount := quantity.Parse(raw)

		unit := amount.Unit
		if !amount.HasUnit() {
			unit = "-"
		}
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Input", raw},
			{"Cleaned name", ingredient.CleanName(raw)},
			{"Quantity", strconv.FormatFloat(amount.Quantity, 'f', -1, 64)},
			{"Unit", unit},
		}).Render()
	},
}
