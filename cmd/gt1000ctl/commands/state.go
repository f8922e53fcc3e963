package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/internal/cli/output"
	"github.com/jdesfossez/gt1000ctl/internal/facade"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the mirrored state of every effect category",
	Long: `Open the device, perform the handshake and an initial refresh, and print
the resulting state mirror as a table, then exit.`,
	RunE: runState,
}

func runState(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withFacade(ctx, configPath, func(ctx context.Context, f *facade.Facade) error {
		snapshot := f.GetState(ctx)
		output.PrintTable(os.Stdout, output.StateTable(snapshot.PerCategory))
		return nil
	})
}
