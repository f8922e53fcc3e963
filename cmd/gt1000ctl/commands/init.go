package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Write a default configuration file to the default location (or --config,
if given), refusing to overwrite an existing file unless --force is set.

Examples:
  # Initialize config at the default location
  gt1000ctl init

  # Initialize at a custom path
  gt1000ctl init --config /etc/gt1000ctl/config.yaml

  # Overwrite an existing file
  gt1000ctl init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	var path string
	var err error

	if configPath != "" {
		path = configPath
		err = config.InitConfigToPath(path, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to match your MIDI port and device ID")
	fmt.Println("  2. Start the daemon with: gt1000ctl start")
	fmt.Printf("  3. Or specify a custom config: gt1000ctl start --config %s\n", path)
	return nil
}
