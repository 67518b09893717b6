package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/blegw/internal/config"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/ui"
)

// Store command flags
var (
	showJSON    bool
	exportYAML  bool
	exportFile  string
	eraseYes    bool
	wifiSSID    string
	wifiPass    string
	wifiOpen    bool
	clearFlag   bool
	initWiFiMAC string
	initEthMAC  string
	initForce   bool
)

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(setDefaultCmd)
	rootCmd.AddCommand(setWiFiCmd)
	rootCmd.AddCommand(forceHotspotCmd)
	rootCmd.AddCommand(initSettingsCmd)
}

// showCmd displays the stored configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the gateway configuration",
	Long: `Display the configuration record held in the gateway store.

Secrets are never printed; use 'export' for a complete copy. With --json the
document is printed exactly as GET /ruuvi.json would return it.`,
	Example: `  # Summary panel
  blegw-cfg show

  # The UI document
  blegw-cfg show --json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the UI JSON document")
}

func runShow(cmd *cobra.Command, args []string) error {
	_, local, err := openLocal()
	if err != nil {
		return err
	}
	defer local.Close()

	cfg, err := local.Manager.Get()
	if err != nil {
		return err
	}

	if showJSON {
		data, err := local.Persist.Codec().EncodeForUI(cfg, local.Persist.Namespace().Status())
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	p := ui.NewPrinter(nil)
	state := "stored record"
	if !local.Configured {
		state = "defaults (nothing stored)"
	}
	p.PrintHeader("Gateway configuration", "blegw-cfg show",
		ui.Field{Key: "Store", Value: local.Store.Path()},
		ui.Field{Key: "Source", Value: state},
	)
	p.PrintPanel("Configuration", ui.ConfigFields(cfg)...)
	if local.Store.ForceHotspotFlag().Get() {
		p.PrintWarning("Hotspot forced on next start")
	}
	return nil
}

// exportCmd writes the full record, secrets included
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the configuration, secrets included",
	Long: `Write the stored configuration in the same form the gateway persists it,
including passwords and tokens. The output can be edited and loaded back with
'import'.`,
	Example: `  # JSON to stdout
  blegw-cfg export

  # YAML to a file
  blegw-cfg export --yaml -o gateway.yaml`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportYAML, "yaml", false, "Write YAML instead of JSON")
	exportCmd.Flags().StringVarP(&exportFile, "output", "o", "", "Write to a file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, local, err := openLocal()
	if err != nil {
		return err
	}
	defer local.Close()

	cfg, err := local.Manager.Get()
	if err != nil {
		return err
	}
	data, err := local.Persist.Codec().EncodeForSaving(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if exportYAML {
		if data, err = jsonToYAML(data); err != nil {
			return err
		}
	}

	if exportFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(exportFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportFile, err)
	}
	ui.NewPrinter(os.Stderr).PrintSuccess("Configuration exported", ui.Field{Key: "File", Value: exportFile})
	return nil
}

// importCmd replaces the stored record
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the configuration from a JSON or YAML file",
	Long: `Decode a configuration document and store it as the gateway record.

Keys missing from the document take their default values. The record is
validated before anything is written.`,
	Example: `  blegw-cfg import gateway.json
  blegw-cfg import gateway.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := readDocument(args[0])
	if err != nil {
		return err
	}

	_, local, err := openLocal()
	if err != nil {
		return err
	}
	defer local.Close()

	prev, err := local.Manager.Get()
	if err != nil {
		return err
	}
	next, err := local.Persist.Codec().Decode(local.Manager.Defaults(), data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	p := ui.NewPrinter(nil)
	if err := local.Apply(next); err != nil {
		p.PrintError("Import rejected", err, "Check the reported fields and try again")
		return err
	}

	changed := gwcfg.Diff(prev, next)
	details := []ui.Field{{Key: "File", Value: args[0]}, {Key: "Sections", Value: strconv.Itoa(len(changed))}}
	for _, s := range changed {
		details = append(details, ui.Field{Key: "Changed", Value: string(s)})
	}
	p.PrintSuccess("Configuration imported", details...)
	return nil
}

// eraseCmd performs a factory reset of the record
var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase the stored configuration",
	Long: `Erase the gateway configuration namespace. The default profile survives;
the next start uses it (or the compiled defaults) and opens the setup hotspot.`,
	RunE: runErase,
}

func init() {
	eraseCmd.Flags().BoolVarP(&eraseYes, "yes", "y", false, "Do not ask for confirmation")
}

func runErase(cmd *cobra.Command, args []string) error {
	_, local, err := openLocal()
	if err != nil {
		return err
	}
	defer local.Close()

	if !eraseYes && !ui.ConfirmErase(os.Stdin, os.Stdout, local.Store.Path()) {
		return errors.New("erase cancelled")
	}
	if err := local.Persist.FactoryReset(); err != nil {
		return fmt.Errorf("erase failed: %w", err)
	}
	ui.NewPrinter(nil).PrintSuccess("Configuration erased", ui.Field{Key: "Store", Value: local.Store.Path()})
	return nil
}

// setDefaultCmd installs the default profile
var setDefaultCmd = &cobra.Command{
	Use:   "set-default <file>",
	Short: "Install a default profile",
	Long: `Store a configuration document as the default profile. Its values replace
the compiled defaults for every key it contains and survive 'erase'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readDocument(args[0])
		if err != nil {
			return err
		}
		_, local, err := openLocal()
		if err != nil {
			return err
		}
		defer local.Close()

		if err := local.Persist.SetDefaultProfile(data); err != nil {
			return fmt.Errorf("default profile rejected: %w", err)
		}
		ui.NewPrinter(nil).PrintSuccess("Default profile installed", ui.Field{Key: "File", Value: args[0]})
		return nil
	},
}

// setWiFiCmd stores station credentials
var setWiFiCmd = &cobra.Command{
	Use:   "set-wifi",
	Short: "Set the Wi-Fi station network",
	Long: `Store Wi-Fi station credentials and switch the gateway from Ethernet to
Wi-Fi. The password is prompted for when not given and stdin is a terminal.`,
	Example: `  # Prompt for the password
  blegw-cfg set-wifi --ssid home

  # Open network
  blegw-cfg set-wifi --ssid guest --open`,
	RunE: runSetWiFi,
}

func init() {
	setWiFiCmd.Flags().StringVar(&wifiSSID, "ssid", "", "Network name (required)")
	setWiFiCmd.Flags().StringVar(&wifiPass, "password", "", "Network password")
	setWiFiCmd.Flags().BoolVar(&wifiOpen, "open", false, "The network has no password")
	_ = setWiFiCmd.MarkFlagRequired("ssid")
}

func runSetWiFi(cmd *cobra.Command, args []string) error {
	password := wifiPass
	if password == "" && !wifiOpen {
		var err error
		if password, err = promptPassword(fmt.Sprintf("Password for %q: ", wifiSSID)); err != nil {
			return err
		}
	}

	_, local, err := openLocal()
	if err != nil {
		return err
	}
	defer local.Close()

	cfg, err := local.Manager.Get()
	if err != nil {
		return err
	}
	cfg.WiFi.STA = gwcfg.WiFiSTAConfig{SSID: wifiSSID, Password: password}
	cfg.Eth.UseEth = false

	if err := local.Apply(cfg); err != nil {
		return err
	}
	ui.NewPrinter(nil).PrintSuccess("Wi-Fi network stored",
		ui.Field{Key: "SSID", Value: wifiSSID},
		ui.Field{Key: "Password", Value: ui.RenderFlag(password != "", strconv.Itoa(len(password))+" characters")},
	)
	return nil
}

func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no password given and stdin is not a terminal (use --password or --open)")
	}
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// forceHotspotCmd raises the reset-button flag
var forceHotspotCmd = &cobra.Command{
	Use:   "force-hotspot",
	Short: "Open the setup hotspot on next start",
	Long: `Set the flag the reset button sets: on the next start the gateway opens its
setup hotspot regardless of the stored network settings. The flag is
cleared once the hotspot has been started.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, local, err := openLocal()
		if err != nil {
			return err
		}
		defer local.Close()

		flag := local.Store.ForceHotspotFlag()
		if clearFlag {
			if err := flag.Clear(); err != nil {
				return err
			}
			ui.NewPrinter(nil).PrintSuccess("Hotspot flag cleared")
			return nil
		}
		if err := flag.Set(); err != nil {
			return err
		}
		ui.NewPrinter(nil).PrintSuccess("Hotspot will open on next start")
		return nil
	},
}

func init() {
	forceHotspotCmd.Flags().BoolVar(&clearFlag, "clear", false, "Clear the flag instead")
}

// initSettingsCmd writes a settings file
var initSettingsCmd = &cobra.Command{
	Use:   "init-settings",
	Short: "Write a daemon settings file",
	Long: `Write a settings file with default timings and the given hardware identity.
The file is written to --config, or the user config directory.`,
	Example: `  blegw-cfg init-settings --wifi-mac AA:BB:CC:DD:EE:FF --eth-mac AA:BB:CC:DD:EE:FC`,
	RunE: runInitSettings,
}

func init() {
	initSettingsCmd.Flags().StringVar(&initWiFiMAC, "wifi-mac", "", "Wi-Fi MAC address")
	initSettingsCmd.Flags().StringVar(&initEthMAC, "eth-mac", "", "Ethernet MAC address")
	initSettingsCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runInitSettings(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return err
		}
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	settings := config.NewSettings()
	if initWiFiMAC != "" {
		settings.Device.WiFiMAC = initWiFiMAC
	}
	if initEthMAC != "" {
		settings.Device.EthMAC = initEthMAC
	}
	params, err := settings.InitParams()
	if err != nil {
		return err
	}
	if err := settings.Save(path); err != nil {
		return err
	}

	ui.NewPrinter(nil).PrintSuccess("Settings written",
		ui.Field{Key: "File", Value: path},
		ui.Field{Key: "Hostname", Value: params.Hostname()},
	)
	return nil
}
