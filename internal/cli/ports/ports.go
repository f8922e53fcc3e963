// Package ports resolves which MIDI ports a CLI invocation should use,
// prompting interactively when the configuration names neither an
// explicit port nor a prefix to match against.
package ports

import (
	"fmt"

	"github.com/jdesfossez/gt1000ctl/internal/cli/prompt"
	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/transport"
)

// ResolveInteractive fills in cfg.Transport.InPort/OutPort by prompting the
// user when the configuration is otherwise ambiguous about which ports to
// open. It leaves cfg untouched whenever a port name or prefix is already
// configured, so a daemon started non-interactively (e.g. under systemd)
// never blocks on a prompt.
func ResolveInteractive(cfg *config.Config) error {
	t := &cfg.Transport
	if t.PortNamePrefix != "" || t.InPort != "" || t.OutPort != "" {
		return nil
	}

	in, out := transport.ListPorts()
	if len(in) == 0 || len(out) == 0 {
		return fmt.Errorf("no MIDI ports visible; connect the device and retry")
	}

	inName, err := prompt.SelectString("Select MIDI input port", in)
	if err != nil {
		return fmt.Errorf("select input port: %w", err)
	}
	outName, err := prompt.SelectString("Select MIDI output port", out)
	if err != nil {
		return fmt.Errorf("select output port: %w", err)
	}

	t.InPort = inName
	t.OutPort = outName
	return nil
}
