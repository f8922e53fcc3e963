// Package commands implements the gt1000ctl CLI: a daemon mode exposing
// the Facade over HTTP, and a set of one-shot commands that drive the
// Facade directly for a single operation and exit.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/cmd/gt1000ctl/commands/category"
	"github.com/jdesfossez/gt1000ctl/internal/effect"
)

// Version information, injected at build time via main's ldflags vars.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// configPath is bound to the persistent --config flag and consulted by
// every subcommand that needs to load a Config.
var configPath string

// portPrefix is bound to the persistent --port-prefix flag; when set it
// overrides the configured MIDI port name prefix (and any explicit
// in_port/out_port) for this invocation.
var portPrefix string

var rootCmd = &cobra.Command{
	Use:   "gt1000ctl",
	Short: "Control a Roland GT-1000 series multi-effects unit over MIDI",
	Long: `gt1000ctl drives a Roland GT-1000 series unit's parameters over MIDI SysEx.

Run it as a background daemon exposing an HTTP facade and Prometheus
metrics, or use it as a one-shot CLI that opens the device, performs a
single read or write, and exits.

Use "gt1000ctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/gt1000ctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&portPrefix, "port-prefix", "", "Override the configured MIDI port name prefix (e.g. \"GT-1000\")")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(listPortsCmd)

	for _, name := range effect.Categories {
		rootCmd.AddCommand(category.NewCommand(name, &configPath, &portPrefix))
	}
}
