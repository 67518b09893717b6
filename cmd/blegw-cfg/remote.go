package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/blegw/internal/discovery"
	"github.com/muurk/blegw/internal/gwclient"
	"github.com/muurk/blegw/internal/ui"
)

// Remote command flags
var (
	remoteUser    string
	remotePass    string
	remoteToken   string
	remoteTimeout int
	pushNoVerify  bool
)

func init() {
	for _, c := range []*cobra.Command{getCmd, pushCmd} {
		c.Flags().StringVar(&remoteUser, "user", "", "LAN auth user")
		c.Flags().StringVar(&remotePass, "pass", "", "LAN auth password")
		c.Flags().StringVar(&remoteToken, "token", "", "LAN API key (sent as a bearer token)")
		c.Flags().IntVar(&remoteTimeout, "timeout", int(gwclient.DefaultTimeout/time.Second), "Request timeout in seconds")
	}
	pushCmd.Flags().BoolVar(&pushNoVerify, "no-verify", false, "Skip verification and rollback")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(pushCmd)
}

// getCmd fetches a running gateway's document
var getCmd = &cobra.Command{
	Use:   "get <host[:port]>",
	Short: "Fetch the configuration from a running gateway",
	Long: `Fetch GET /ruuvi.json and /status from a gateway on the network and print
them. Secrets are never part of the document.`,
	Example: `  blegw-cfg get 192.168.1.20:8080
  blegw-cfg get 192.168.1.20:8080 --user Admin --pass <password>`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newRemoteClient(args[0])
	p := ui.NewPrinter(nil)

	doc, err := c.GetConfiguration(ctx)
	if err != nil {
		p.PrintError(gwclient.ShortMessage(err), err, gwclient.TroubleshootingTips(err)...)
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if st, err := c.Status(ctx); err == nil {
		p.PrintPanel("Gateway "+st.Hostname,
			ui.Field{Key: "Version", Value: st.Version},
			ui.Field{Key: "Mode", Value: st.Mode},
			ui.Field{Key: "Configured", Value: strconv.FormatBool(!st.ConfigEmpty)},
		)
	}
	fmt.Println(string(data))
	return nil
}

// pushCmd posts a document to a running gateway
var pushCmd = &cobra.Command{
	Use:   "push <host[:port]> <file>",
	Short: "Send configuration to a running gateway",
	Long: `POST a JSON or YAML document to a gateway's /ruuvi.json.

Only the keys in the document are changed; secrets not in the document keep
their values. The gateway's document is saved first and, unless --no-verify
is given, re-read after the update. If it does not match, the saved document
is posted back.`,
	Example: `  blegw-cfg push 192.168.1.20:8080 mqtt.yaml --user Admin --pass <password>`,
	Args:    cobra.ExactArgs(2),
	RunE:    runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	data, err := readDocument(args[1])
	if err != nil {
		return err
	}
	doc, err := gwclient.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[1], err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := newRemoteClient(args[0])
	p := ui.NewPrinter(nil)

	if pushNoVerify {
		if _, err := c.UpdateConfiguration(ctx, doc); err != nil {
			p.PrintError(gwclient.ShortMessage(err), err, gwclient.TroubleshootingTips(err)...)
			return err
		}
		p.PrintSuccess("Configuration sent", ui.Field{Key: "Gateway", Value: c.BaseURL}, ui.Field{Key: "Keys", Value: strconv.Itoa(len(doc))})
		return nil
	}

	res, rolledBack := gwclient.NewRollbackManager(c).SafeUpdate(ctx, doc, nil)
	if res.Success {
		p.PrintSuccess("Configuration applied and verified",
			ui.Field{Key: "Gateway", Value: c.BaseURL},
			ui.Field{Key: "Keys", Value: strconv.Itoa(len(doc))},
			ui.Field{Key: "Attempts", Value: strconv.Itoa(res.Attempts)},
		)
		return nil
	}

	tips := gwclient.TroubleshootingTips(res.Error)
	if rolledBack {
		tips = append(tips, "The previous configuration was restored")
	}
	p.PrintError(gwclient.ShortMessage(res.Error), res.Error, tips...)
	return res.Error
}

func newRemoteClient(addr string) *gwclient.Client {
	host, portStr, err := net.SplitHostPort(addr)
	port := discovery.DefaultPort
	if err != nil {
		host = strings.Trim(addr, "[]")
	} else if n, err := strconv.Atoi(portStr); err == nil {
		port = n
	}

	c := gwclient.NewClient(host, port)
	c.SetTimeout(time.Duration(remoteTimeout) * time.Second)
	switch {
	case remoteToken != "":
		c.SetToken(remoteToken)
	case remoteUser != "":
		c.SetAuth(remoteUser, remotePass)
	}
	return c
}
