// Blegw is the BLE gateway daemon.
//
// It keeps the gateway configuration record in a local bolt database, brings
// up connectivity (Ethernet, Wi-Fi station or the setup hotspot) from that
// record, and serves the configuration document and a live status feed on
// the local network.
//
// Usage:
//
//	blegw run [flags]
//
// See 'blegw run --help' for available options.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/config"
	"github.com/muurk/blegw/internal/gateway"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blegw",
	Short: "BLE Gateway Daemon",
	Long: `The BLE gateway daemon.

Loads the gateway configuration from the local store, starts connectivity
bootstrap and serves the configuration endpoint (GET/POST /ruuvi.json) with a
websocket status feed at /ws.

Daemon settings (hardware identity, timings, listen address) come from a YAML
file; the gateway configuration itself is edited through the endpoint or with
the separate 'blegw-cfg' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Run command and flags
var (
	configPath string
	logLevel   string
	listen     string
	noMDNS     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway",
	Long: `Run the gateway until interrupted.

On first start there is no stored configuration: the gateway opens its setup
hotspot (named after the Wi-Fi MAC, e.g. RuuviGatewayEEFF) and waits for a
configuration to be posted.`,
	Example: `  # Run with the default settings file
  blegw run

  # Use a specific settings file and verbose logging
  blegw run --config /etc/blegw/config.yaml --log-level debug

  # Override the listen address and skip mDNS advertisement
  blegw run --listen 127.0.0.1:8080 --no-mdns`,
	RunE: runGateway,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Path to the settings file (default: user config dir)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides settings and "+logging.LogLevelEnvVar)
	runCmd.Flags().StringVar(&listen, "listen", "", "Listen address for the configuration endpoint (overrides settings)")
	runCmd.Flags().BoolVar(&noMDNS, "no-mdns", false, "Do not advertise the gateway over mDNS")
}

func runGateway(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = settings.LogLevel
	}
	if err := logging.Initialize(level); err != nil {
		return err
	}
	defer logging.Sync()

	if listen != "" {
		settings.Server.Listen = listen
	}
	if noMDNS {
		settings.MDNS.Enabled = false
	}

	app, err := gateway.New(settings)
	if err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Gateway running",
		zap.String("version", version.Full()),
		zap.String("listen", settings.Server.Listen),
	)
	fmt.Printf("blegw %s listening on %s (Ctrl+C to stop)\n", version.Version, settings.Server.Listen)

	return app.Run(ctx)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blegw %s (commit: %s)\n", version.Version, version.Commit)
	},
}
