package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/internal/inventory/usecase/command"
	"github.com/tair/stock-ledger/internal/inventory/usecase/query"
)

// NewMovementsCommand creates the movements command group.
func NewMovementsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Read and append to the movement ledger",
	}
	cmd.AddCommand(newMovementsListCommand(opts))
	cmd.AddCommand(newMovementsApplyCommand(opts))
	return cmd
}

func newMovementsListCommand(opts *RootOptions) *cobra.Command {
	var q query.ListMovementsQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the ledger, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.open()
			if err != nil {
				return err
			}
			defer cleanup()

			page, err := app.ListMovements.Handle(cmd.Context(), q)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), page)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tITEM\tTYPE\tQTY\tSTATUS\tTIMESTAMP\tACTOR")
			for _, m := range page.Records {
				printMovement(tw, m)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if page.HasMore {
				fmt.Fprintf(cmd.OutOrStdout(), "\nnext page: --cursor %s\n", page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&q.PageSize, "page-size", query.DefaultPageSize, "records per page")
	cmd.Flags().StringVar(&q.Cursor, "cursor", "", "cursor printed by the previous page")
	cmd.Flags().StringVar(&q.ItemID, "item", "", "only movements of this item")
	return cmd
}

func newMovementsApplyCommand(opts *RootOptions) *cobra.Command {
	var c command.CreateMovementCommand

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Record a movement and apply it to its item",
		Example: `  stockctl movements apply --item sku-1 --type STOCK_IN --qty 10 --actor ops
  stockctl movements apply --item sku-1 --type TRANSFER --qty 1 --source BACK --dest FRONT --actor ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := opts.open()
			if err != nil {
				return err
			}
			defer cleanup()

			m, err := app.CreateMovement.Handle(cmd.Context(), c)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printMovement(tw, *m)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&c.ItemID, "item", "", "item id")
	cmd.Flags().StringVar(&c.Type, "type", "", "STOCK_IN, STOCK_SOLD or TRANSFER")
	cmd.Flags().Int64Var(&c.Quantity, "qty", 0, "quantity moved")
	cmd.Flags().StringVar(&c.SourceLocation, "source", "", "source location (FRONT|BACK)")
	cmd.Flags().StringVar(&c.DestLocation, "dest", "", "destination location for TRANSFER")
	cmd.Flags().StringVar(&c.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&c.ActorID, "actor", "", "who performed the movement")
	cmd.Flags().StringVar(&c.Status, "status", "", "PENDING or COMPLETED (default)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("qty")
	_ = cmd.MarkFlagRequired("actor")
	return cmd
}

func printMovement(w *tabwriter.Writer, m domain.MovementRecord) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
		m.ID, m.ItemID, m.Type, m.Quantity, m.Status, m.Timestamp.Format(time.RFC3339), m.ActorID)
}
