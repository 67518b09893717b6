// Blegw-cfg is the offline configuration utility for the BLE gateway.
//
// It edits the configuration record in the gateway's local store (show,
// export, import, erase, Wi-Fi credentials, the default profile and the
// reset-button flag), checks MQTT brokers, and finds and watches gateways
// on the local network.
//
// Usage:
//
//	blegw-cfg [command] [flags]
//
// Commands that touch the store should be run while the daemon is stopped;
// the running daemon only reads the record at start-up.
// See 'blegw-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

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

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "blegw-cfg",
	Short: "BLE Gateway Configuration Utility",
	Long: `A standalone utility for inspecting and editing the BLE gateway configuration.

Store commands (show, export, import, erase, set-wifi, set-default,
force-hotspot) work on the database named in the daemon settings file.
Network commands (scan, monitor, check-mqtt) talk to gateways and brokers.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the daemon settings file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to "+logging.LogLevelEnvVar)

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blegw-cfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}

// loadSettings reads the daemon settings named by --config.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// openLocal opens the store named by the settings file.
func openLocal() (*config.Settings, *gateway.Local, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	local, err := gateway.OpenLocal(settings, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gateway store: %w", err)
	}
	return settings, local, nil
}
