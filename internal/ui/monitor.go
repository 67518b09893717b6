package ui

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/blegw/internal/server"
)

const maxMonitorEvents = 8

// FeedSource delivers websocket feed messages. *server.Feed satisfies it.
type FeedSource interface {
	Messages() <-chan server.Message
	Err() error
}

// feedMsg carries one feed message into the program.
type feedMsg server.Message

// feedClosedMsg reports the end of the feed.
type feedClosedMsg struct{ err error }

// configSummary is the part of the UI document the monitor shows.
type configSummary struct {
	FWVer       string `json:"fw_ver"`
	GWMac       string `json:"gw_mac"`
	UseEth      bool   `json:"use_eth"`
	UseMQTT     bool   `json:"use_mqtt"`
	MQTTServer  string `json:"mqtt_server"`
	UseHTTP     bool   `json:"use_http"`
	LANAuthType string `json:"lan_auth_type"`
	STA         struct {
		SSID string `json:"ssid"`
	} `json:"wifi_sta_config"`
}

// MonitorModel is a Bubble Tea model showing a gateway's live status.
type MonitorModel struct {
	target  string
	feed    FeedSource
	spinner spinner.Model

	status *server.Status
	config *configSummary
	events []string
	closed bool
	err    error
	width  int
	now    func() time.Time
}

// NewMonitor creates a monitor for the gateway at target fed by feed.
func NewMonitor(target string, feed FeedSource) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)
	return MonitorModel{
		target:  target,
		feed:    feed,
		spinner: s,
		width:   GetTerminalWidth(),
		now:     time.Now,
	}
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForFeed(m.feed))
}

func waitForFeed(feed FeedSource) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-feed.Messages()
		if !ok {
			return feedClosedMsg{err: feed.Err()}
		}
		return feedMsg(msg)
	}
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case feedMsg:
		m.apply(server.Message(msg))
		return m, waitForFeed(m.feed)
	case feedClosedMsg:
		m.closed = true
		m.err = msg.err
		m.addEvent("feed closed")
	}
	return m, nil
}

func (m *MonitorModel) apply(msg server.Message) {
	switch msg.Type {
	case server.MessageStatus:
		var st server.Status
		if err := json.Unmarshal(msg.Data, &st); err != nil {
			m.addEvent("bad status message: " + err.Error())
			return
		}
		if m.status == nil || m.status.Mode != st.Mode {
			m.addEvent("mode " + st.Mode)
		}
		m.status = &st
	case server.MessageConfig:
		var c configSummary
		if err := json.Unmarshal(msg.Data, &c); err != nil {
			m.addEvent("bad config message: " + err.Error())
			return
		}
		if m.config != nil {
			m.addEvent("configuration changed")
		}
		m.config = &c
	case server.MessageConfigReset:
		m.config = nil
		m.addEvent("configuration reset to defaults")
	default:
		m.addEvent("unknown message " + strconv.Quote(msg.Type))
	}
}

func (m *MonitorModel) addEvent(text string) {
	m.events = append(m.events, m.now().Format("15:04:05")+"  "+text)
	if len(m.events) > maxMonitorEvents {
		m.events = m.events[len(m.events)-maxMonitorEvents:]
	}
}

// Err returns the error that ended the feed, if any.
func (m MonitorModel) Err() error {
	return m.err
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(NewHeader("Gateway monitor", m.target).SetWidth(m.width).Render())
	b.WriteString("\n")

	switch {
	case m.status == nil && !m.closed:
		b.WriteString("  " + m.spinner.View() + " Waiting for gateway status...\n")
	case m.status != nil:
		b.WriteString(RenderPanel("Status", statusFields(m.status), m.width))
		b.WriteString("\n")
	}

	if m.config != nil {
		b.WriteString(RenderPanel("Configuration", m.configFields(), m.width))
		b.WriteString("\n")
	}

	if len(m.events) > 0 {
		b.WriteString(MutedStyle.Render("  Events") + "\n")
		for _, e := range m.events {
			b.WriteString(MutedStyle.Render("  "+e) + "\n")
		}
	}

	if m.closed {
		if m.err != nil {
			b.WriteString(ErrorMessageStyle.Render("  "+FailureMarker+" Connection lost: "+m.err.Error()) + "\n")
		} else {
			b.WriteString(MutedStyle.Render("  Connection closed") + "\n")
		}
	}
	b.WriteString(MutedStyle.Render("  Press q to quit") + "\n")
	return b.String()
}

func statusFields(st *server.Status) []Field {
	fields := []Field{
		{"Hostname", st.Hostname},
		{"Version", st.Version},
		{"Mode", modeStyle(st.Mode).Render(st.Mode)},
		{"Ethernet link", RenderFlag(st.EthLink, onOff(st.EthLink))},
		{"Hotspot clients", strconv.Itoa(st.APClients)},
		{"Disconnects", strconv.FormatUint(st.Disconnects, 10)},
		{"Storage", RenderFlag(st.StorageReady, readyText(st.StorageReady))},
	}
	if st.HotspotCountdown {
		fields = append(fields, Field{"Hotspot", "closing when idle"})
	}
	if st.ConfigEmpty {
		fields = append(fields, Field{"Config", "defaults (not configured)"})
	}
	if st.FirstBootAfterErase {
		fields = append(fields, Field{"Setup", "first boot after erase"})
	}
	return fields
}

func (m MonitorModel) configFields() []Field {
	c := m.config
	mqtt := "off"
	if c.UseMQTT {
		mqtt = c.MQTTServer
	}
	network := "Wi-Fi " + orNone(c.STA.SSID)
	if c.UseEth {
		network = "Ethernet"
	}
	return []Field{
		{"Gateway MAC", c.GWMac},
		{"Firmware", c.FWVer},
		{"Network", network},
		{"Custom HTTP", onOff(c.UseHTTP)},
		{"MQTT", mqtt},
		{"LAN auth", c.LANAuthType},
	}
}

func modeStyle(mode string) lipgloss.Style {
	switch mode {
	case "ETHERNET", "WIFI_STATION":
		return lipgloss.NewStyle().Foreground(SuccessColor).Bold(true)
	case "WIFI_HOTSPOT":
		return lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	default:
		return MutedStyle
	}
}

func readyText(ok bool) string {
	if ok {
		return "ready"
	}
	return "not ready"
}

// RunMonitor runs the monitor until the user quits.
func RunMonitor(target string, feed FeedSource) error {
	final, err := tea.NewProgram(NewMonitor(target, feed)).Run()
	if err != nil {
		return fmt.Errorf("monitor failed: %w", err)
	}
	if m, ok := final.(MonitorModel); ok {
		return m.Err()
	}
	return nil
}
