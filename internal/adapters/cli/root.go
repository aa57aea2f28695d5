package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	playerFlag string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "factoryd",
		Short: "Factory economy engine",
		Long: `factoryd runs the factory economy: production and upgrade timers, periodic
tax assessment, overdue tracking, late fees, salary invoices and payments.

"factoryd serve" runs the engine as a daemon. Every other command opens the
store directly, catches up on elapsed timers and applies one action. Mutating
commands refuse to run while the daemon holds its PID file.

Examples:
  factoryd serve
  factoryd factory create smelter-1 --zone north --type SMELTER --price 1000
  factoryd factory buy smelter-1 --player 6f1c...
  factoryd factory produce smelter-1 iron_ingot
  factoryd tax pay-all
  factoryd invoice liabilities --unpaid`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml, ./configs, /etc/factory-economy)")
	rootCmd.PersistentFlags().StringVar(&playerFlag, "player", "",
		"Acting player id (defaults to 'factoryd config set-player')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	// Add command groups
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewTickCommand())
	rootCmd.AddCommand(NewFactoryCommand())
	rootCmd.AddCommand(NewTaxCommand())
	rootCmd.AddCommand(NewInvoiceCommand())
	rootCmd.AddCommand(NewHostCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
