package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdesfossez/gt1000ctl/internal/cli/ports"
	"github.com/jdesfossez/gt1000ctl/internal/config"
	"github.com/jdesfossez/gt1000ctl/internal/facade"
	"github.com/jdesfossez/gt1000ctl/internal/logger"
	"github.com/jdesfossez/gt1000ctl/internal/metrics"
	"github.com/jdesfossez/gt1000ctl/internal/telemetry"
	"github.com/jdesfossez/gt1000ctl/pkg/api"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the daemon: open the device and serve the HTTP facade",
	Long: `Load configuration, open the MIDI transport, run the handshake, start the
background state-mirror refresher, and serve the HTTP facade (and, if
enabled, a Prometheus /metrics endpoint) until interrupted.

Examples:
  # Start with the default configuration
  gt1000ctl start

  # Start with a custom configuration file
  gt1000ctl start --config /etc/gt1000ctl/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	if configPath == "" && !config.DefaultConfigExists() {
		return fmt.Errorf("no configuration file found at %s; run \"gt1000ctl init\" first", config.GetDefaultConfigPath())
	}
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("configuration file not found: %s", configPath)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if portPrefix != "" {
		cfg.Transport.PortNamePrefix = portPrefix
		cfg.Transport.InPort = ""
		cfg.Transport.OutPort = ""
	}

	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "gt1000ctl",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	if err := ports.ResolveInteractive(cfg); err != nil {
		return fmt.Errorf("resolve MIDI ports: %w", err)
	}

	logger.Info("gt1000ctl starting", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("telemetry disabled")
	}

	f, err := facade.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	logger.Info("device identified", "model", f.Identity().Model, "device_id", f.Identity().DeviceID)

	var metricsSrv *metrics.Server
	if reg := f.Registry(); reg != nil {
		metricsSrv = metrics.NewServer(reg, cfg.Metrics.Port)
		logger.Info("metrics enabled", "port", cfg.Metrics.Port)
	} else {
		logger.Info("metrics disabled")
	}

	var apiSrv *api.Server
	if cfg.API.Enabled {
		apiSrv = api.NewServer(cfg.API, f)
		logger.Info("api server enabled", "port", cfg.API.Port)
	} else {
		logger.Info("api server disabled")
	}

	serverErrs := make(chan error, 2)
	if metricsSrv != nil {
		go func() { serverErrs <- metricsSrv.Start(ctx) }()
	}
	if apiSrv != nil {
		go func() { serverErrs <- apiSrv.Start(ctx) }()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("gt1000ctl running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
	case err := <-serverErrs:
		signal.Stop(sigChan)
		if err != nil {
			cancel()
			_ = f.Close()
			return err
		}
	}

	cancel()
	if err := f.Close(); err != nil {
		logger.Error("device close error", "error", err)
	}
	logger.Info("gt1000ctl stopped")
	return nil
}
