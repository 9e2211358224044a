// Package cli implements the cubegate command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	// Global flags
	cfgPath   string
	dbPath    string
	logLevel  string
	noJournal bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cubegate",
	Short: "Logical Rubik's cube engine",
	Long: `cubegate - a 3x3x3 cube engine with ordered, animated moves and
per-face solve detection.

Play it in the terminal, serve it to a 3D renderer over HTTP and websocket,
mirror a GoCube smart cube, and replay the move journal.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: ~/.cubegate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Journal database path (default: ~/.cubegate/journal.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "Do not record moves to the journal")
}
