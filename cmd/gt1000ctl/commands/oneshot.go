package commands

import (
	"context"
	"fmt"

	"github.com/jdesfossez/gt1000ctl/internal/cli/ports"
	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/facade"
)

// withFacade loads the configuration from path (empty for the default
// location), opens a Facade against the device, runs fn, and closes the
// Facade before returning, the shape every one-shot CLI command shares.
func withFacade(ctx context.Context, path string, fn func(ctx context.Context, f *facade.Facade) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portPrefix != "" {
		cfg.Transport.PortNamePrefix = portPrefix
		cfg.Transport.InPort = ""
		cfg.Transport.OutPort = ""
	}
	if err := ports.ResolveInteractive(cfg); err != nil {
		return err
	}

	f, err := facade.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer func() { _ = f.Close() }()

	return fn(ctx, f)
}
