package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewLowStockCommand creates the low-stock command.
func NewLowStockCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "low-stock",
		Short: "List items at or under their threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.open()
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := app.LowStock.Handle(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no items are low on stock")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tTHRESHOLD\tLOCATION")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", item.ID, item.Name, item.Quantity, item.Threshold, item.Location)
			}
			return tw.Flush()
		},
	}
}
