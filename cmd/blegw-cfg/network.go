package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blegw/internal/discovery"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/mqttcheck"
	"github.com/muurk/blegw/internal/server"
	"github.com/muurk/blegw/internal/ui"
)

// Network command flags
var (
	scanTimeout  int
	gwSuffix     string
	feedUser     string
	feedPass     string
	feedToken    string
	feedTLS      bool
	mqttServer   string
	mqttPort     int
	mqttTrans    string
	mqttUser     string
	mqttPass     string
	mqttClientID string
	mqttTimeout  int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(checkMQTTCmd)
}

// scanCmd discovers gateways on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for gateways on the network",
	Long: `Scan for gateways using mDNS/DNS-SD discovery.

Gateways advertise themselves as RuuviGatewayXXXX (the last four hex digits
of the Wi-Fi MAC) with an HTTP service.`,
	Example: `  # Scan for 10 seconds (default)
  blegw-cfg scan

  # Quick 3-second scan
  blegw-cfg scan --timeout 3`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	timeout := time.Duration(scanTimeout) * time.Second
	devices, err := ui.RunScan(ctx, timeout, func(ctx context.Context) ([]*discovery.Device, error) {
		return discovery.Scan(ctx, timeout)
	})
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	p := ui.NewPrinter(nil)
	if len(devices) == 0 {
		p.PrintError("No gateways found", nil,
			"Ensure the gateway is powered on and on the same network",
			"Check that multicast (UDP 5353) is not blocked",
			"Try increasing --timeout for slower networks",
		)
		return nil
	}
	p.Println(ui.RenderDevices(devices, p.Width()))
	p.Println("Use 'blegw-cfg monitor <ip:port>' to watch a gateway")
	return nil
}

// monitorCmd watches a gateway's websocket feed
var monitorCmd = &cobra.Command{
	Use:   "monitor [host[:port]]",
	Short: "Watch a gateway's live status",
	Long: `Connect to a gateway's /ws feed and show its connectivity mode and
configuration as they change.

Without an address the gateway is found over mDNS: with --suffix the one
whose name ends in those four hex digits, otherwise the only one answering.`,
	Example: `  # Auto-discover
  blegw-cfg monitor

  # Specific gateway with LAN credentials
  blegw-cfg monitor 192.168.1.20:8080 --user admin --pass secret`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&gwSuffix, "suffix", "", "Gateway name suffix to look for (e.g. EEFF)")
	monitorCmd.Flags().StringVar(&feedUser, "user", "", "LAN auth user")
	monitorCmd.Flags().StringVar(&feedPass, "pass", "", "LAN auth password")
	monitorCmd.Flags().StringVar(&feedToken, "token", "", "LAN API key (sent as a bearer token)")
	monitorCmd.Flags().BoolVar(&feedTLS, "tls", false, "Connect with wss://")
	monitorCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Discovery timeout in seconds")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var addr string
	if len(args) == 1 {
		addr = args[0]
	} else {
		device, err := findGateway(ctx)
		if err != nil {
			return err
		}
		addr = net.JoinHostPort(device.IP, strconv.Itoa(device.Port))
	}

	url := feedURL(addr, feedTLS)
	feed, err := server.DialFeed(ctx, url, feedHeader(feedUser, feedPass, feedToken))
	if err != nil {
		ui.NewPrinter(nil).PrintError("Cannot connect to gateway", err,
			"Check the address and port",
			"Pass --user/--pass or --token when LAN auth is enabled",
		)
		return err
	}
	defer feed.Close()

	return ui.RunMonitor(url, feed)
}

func findGateway(ctx context.Context) (*discovery.Device, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = time.Duration(scanTimeout) * time.Second

	if gwSuffix != "" {
		return scanner.WaitForDevice(ctx, gwSuffix)
	}
	devices, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	switch len(devices) {
	case 0:
		return nil, errors.New("no gateways found (pass an address or --suffix)")
	case 1:
		return devices[0], nil
	}
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	return nil, fmt.Errorf("several gateways found (%s); pick one with --suffix", strings.Join(names, ", "))
}

// feedURL builds the websocket URL for host[:port]. A missing port means
// the default HTTP port.
func feedURL(addr string, secure bool) string {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(strings.Trim(addr, "[]"), strconv.Itoa(discovery.DefaultPort))
	}
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	return scheme + "://" + addr + "/ws"
}

func feedHeader(user, pass, token string) http.Header {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	switch {
	case token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case user != "":
		req.SetBasicAuth(user, pass)
	}
	return req.Header
}

// checkMQTTCmd tries a broker connection
var checkMQTTCmd = &cobra.Command{
	Use:   "check-mqtt",
	Short: "Check the MQTT broker connection",
	Long: `Connect to the MQTT broker from the stored configuration and disconnect
again. Flags override the stored values; nothing is published and the stored
configuration is not changed.`,
	Example: `  # Check the stored broker
  blegw-cfg check-mqtt

  # Try another broker
  blegw-cfg check-mqtt --server test.mosquitto.org --port 8883 --transport SSL`,
	RunE: runCheckMQTT,
}

func init() {
	checkMQTTCmd.Flags().StringVar(&mqttServer, "server", "", "Broker host")
	checkMQTTCmd.Flags().IntVar(&mqttPort, "port", 0, "Broker port")
	checkMQTTCmd.Flags().StringVar(&mqttTrans, "transport", "", "Transport (TCP, SSL, WS, WSS)")
	checkMQTTCmd.Flags().StringVar(&mqttUser, "user", "", "Broker user")
	checkMQTTCmd.Flags().StringVar(&mqttPass, "pass", "", "Broker password")
	checkMQTTCmd.Flags().StringVar(&mqttClientID, "client-id", "", "Client ID")
	checkMQTTCmd.Flags().IntVar(&mqttTimeout, "timeout", int(mqttcheck.DefaultTimeout/time.Second), "Connect timeout in seconds")
}

func runCheckMQTT(cmd *cobra.Command, args []string) error {
	_, local, err := openLocal()
	if err != nil {
		return err
	}
	cfg, err := local.Manager.Get()
	local.Close()
	if err != nil {
		return err
	}

	m, err := overrideMQTT(cfg.MQTT, cmd)
	if err != nil {
		return err
	}
	if m.Server == "" {
		return errors.New("no MQTT server configured (use --server)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(mqttTimeout)*time.Second)
	defer cancel()
	res := mqttcheck.Check(ctx, m)

	p := ui.NewPrinter(nil)
	details := []ui.Field{
		{Key: "Broker", Value: res.Broker},
		{Key: "Status", Value: res.Status.String()},
		{Key: "Duration", Value: res.Duration.Round(time.Millisecond).String()},
	}
	if res.OK() {
		p.PrintSuccess("MQTT broker reachable", details...)
		return nil
	}
	p.PrintError("MQTT broker check failed", errors.New(res.Message), mqttTips(res.Status)...)
	return fmt.Errorf("broker check failed: %s", res.Status)
}

func overrideMQTT(m gwcfg.MQTTConfig, cmd *cobra.Command) (gwcfg.MQTTConfig, error) {
	flags := cmd.Flags()
	if flags.Changed("server") {
		m.Server = mqttServer
	}
	if flags.Changed("port") {
		if mqttPort < 1 || mqttPort > 65535 {
			return m, fmt.Errorf("invalid port %d", mqttPort)
		}
		m.Port = uint16(mqttPort)
	}
	if flags.Changed("transport") {
		t, ok := gwcfg.ParseMQTTTransport(strings.ToUpper(mqttTrans))
		if !ok {
			return m, fmt.Errorf("unknown transport %q", mqttTrans)
		}
		m.Transport = t
	}
	if flags.Changed("user") {
		m.User = mqttUser
	}
	if flags.Changed("pass") {
		m.Pass = mqttPass
	}
	if flags.Changed("client-id") {
		m.ClientID = mqttClientID
	}
	return m, nil
}

func mqttTips(st mqttcheck.Status) []string {
	switch st {
	case mqttcheck.StatusDNSFailure:
		return []string{"Check the broker host name", "Check the gateway's DNS servers"}
	case mqttcheck.StatusRefused:
		return []string{"Check the broker port and transport", "Make sure the broker is running"}
	case mqttcheck.StatusAuthFailed:
		return []string{"Check the broker user and password", "Check the client ID is allowed"}
	case mqttcheck.StatusTimeout:
		return []string{"Check firewalls between the gateway and the broker", "Try increasing --timeout"}
	}
	return nil
}
