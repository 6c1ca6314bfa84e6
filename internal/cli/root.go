// Package cli implements stockctl, the operator command line for the ledger.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tair/stock-ledger/internal/inventory"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Driver string
	Format string // "json" | "text"

	// Open assembles the service; tests swap it for an in-memory one
	Open func(cfg inventory.Config) (*inventory.App, func(), error)
	// Config returns the base configuration before flags are applied
	Config func() inventory.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for stockctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{
		Open:   inventory.InitializeApp,
		Config: inventory.ConfigFromEnv,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockctl",
		Short: "Inspect and operate the stock ledger",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "store driver (postgres|memory), overrides STORE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewLowStockCommand(opts))
	cmd.AddCommand(NewMovementsCommand(opts))

	return cmd
}

func (o *RootOptions) config() inventory.Config {
	cfg := o.Config()
	if o.Driver != "" {
		cfg.StoreDriver = o.Driver
	}
	// One-shot commands never consume or announce
	cfg.KafkaBrokers = nil
	return cfg
}

func (o *RootOptions) open() (*inventory.App, func(), error) {
	return o.Open(o.config())
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
