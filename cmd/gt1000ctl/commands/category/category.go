// Package category builds the per-effect-category cobra command tree
// (toggle, set-value, set-type, list-types) shared by every entry in
// effect.Categories, so the 10 categories don't need 10 hand-written
// copies of the same four subcommands.
package category

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/internal/cli/ports"
	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/facade"
)

// withFacade mirrors commands.withFacade; duplicated rather than imported
// to avoid a dependency cycle between this package and the root commands
// package, which imports category to register it.
func withFacade(ctx context.Context, path, prefix string, fn func(ctx context.Context, f *facade.Facade) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if prefix != "" {
		cfg.Transport.PortNamePrefix = prefix
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

// NewCommand builds the "gt1000ctl <name> ..." command tree for one
// effect category, reading the shared --config and --port-prefix flags
// through configPath and portPrefix.
func NewCommand(name string, configPath, portPrefix *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Operate on the %s effect category", name),
	}

	cmd.AddCommand(newToggleCmd(name, configPath, portPrefix))
	cmd.AddCommand(newSetValueCmd(name, configPath, portPrefix))
	cmd.AddCommand(newSetTypeCmd(name, configPath, portPrefix))
	cmd.AddCommand(newListTypesCmd(name, configPath, portPrefix))

	return cmd
}

func newToggleCmd(category string, configPath, portPrefix *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [index] <on|off>",
		Short: "Turn this category's instance on or off",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, rest := splitIndex(args, 1)
			on, err := parseOnOff(rest[0])
			if err != nil {
				return err
			}

			ctx := context.Background()
			return withFacade(ctx, *configPath, *portPrefix, func(ctx context.Context, f *facade.Facade) error {
				return f.Toggle(ctx, category, index, on)
			})
		},
	}
}

func newSetValueCmd(category string, configPath, portPrefix *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-value [index] <field> <value>",
		Short: "Write one of this category's slider fields",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, rest := splitIndex(args, 2)
			field := rest[0]
			value, err := strconv.Atoi(rest[1])
			if err != nil {
				return fmt.Errorf("value must be an integer: %s", rest[1])
			}

			ctx := context.Background()
			return withFacade(ctx, *configPath, *portPrefix, func(ctx context.Context, f *facade.Facade) error {
				return f.SetValue(ctx, category, index, field, value)
			})
		},
	}
}

func newSetTypeCmd(category string, configPath, portPrefix *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-type [index] <type>",
		Short: "Write this category's TYPE field",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, rest := splitIndex(args, 1)
			typeSymbol := rest[0]

			ctx := context.Background()
			return withFacade(ctx, *configPath, *portPrefix, func(ctx context.Context, f *facade.Facade) error {
				return f.SetType(ctx, category, index, typeSymbol)
			})
		},
	}
}

func newListTypesCmd(category string, configPath, portPrefix *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list-types",
		Short: "List the type names this category accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			return withFacade(ctx, *configPath, *portPrefix, func(ctx context.Context, f *facade.Facade) error {
				names, err := f.ListTypes(ctx, category)
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(os.Stdout, n)
				}
				return nil
			})
		},
	}
}

// splitIndex separates the leading, optional index argument from the
// trailing wantCount positional arguments: singleton categories are
// invoked with exactly wantCount args (no index, index resolves to ""),
// while preamp ("A"/"B") and fx ("1".."N") are invoked with one extra
// leading arg naming the instance.
func splitIndex(args []string, wantCount int) (index string, rest []string) {
	if len(args) == wantCount {
		return "", args
	}
	return args[0], args[1:]
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "On", "ON", "true":
		return true, nil
	case "off", "Off", "OFF", "false":
		return false, nil
	default:
		return false, fmt.Errorf("expected on|off, got %q", s)
	}
}
