package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/internal/cli/output"
	"github.com/jdesfossez/gt1000ctl/internal/transport"
)

var listPortsCmd = &cobra.Command{
	Use:   "list-ports",
	Short: "List visible MIDI input and output ports",
	Long: `List the MIDI input and output ports currently visible to the driver,
useful for setting transport.in_port/out_port or port_name_prefix in the
configuration file.`,
	RunE: runListPorts,
}

func runListPorts(cmd *cobra.Command, args []string) error {
	in, out := transport.ListPorts()

	t := output.NewTableData("DIRECTION", "PORT NAME")
	for _, name := range in {
		t.AddRow("in", name)
	}
	for _, name := range out {
		t.AddRow("out", name)
	}

	if len(in) == 0 && len(out) == 0 {
		fmt.Println("No MIDI ports visible.")
		return nil
	}
	output.PrintTable(os.Stdout, t)
	return nil
}
