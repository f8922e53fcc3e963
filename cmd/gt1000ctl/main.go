// Command gt1000ctl drives a Roland GT-1000 series multi-effects unit over
// MIDI SysEx: run it as a background daemon exposing an HTTP facade, or use
// it as a one-shot CLI against the same device.
package main

import (
	"fmt"
	"os"

	"github.com/jdesfossez/gt1000ctl/cmd/gt1000ctl/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
