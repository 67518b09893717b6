package ui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/blegw/internal/discovery"
	"github.com/muurk/blegw/internal/server"
)

type fakeFeed struct {
	ch  chan server.Message
	err error
}

func (f *fakeFeed) Messages() <-chan server.Message { return f.ch }
func (f *fakeFeed) Err() error                      { return f.err }

func statusMessage(t *testing.T, st server.Status) server.Message {
	t.Helper()
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	return server.Message{Type: server.MessageStatus, Data: data}
}

func newTestMonitor() MonitorModel {
	m := NewMonitor("http://192.168.1.20:8080", &fakeFeed{ch: make(chan server.Message)})
	m.width = 80
	m.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func update(t *testing.T, m MonitorModel, msg tea.Msg) MonitorModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(MonitorModel)
}

func TestMonitor_WaitsForStatus(t *testing.T) {
	m := newTestMonitor()
	if view := m.View(); !strings.Contains(view, "Waiting for gateway status") {
		t.Errorf("View() before status:\n%s", view)
	}
}

func TestMonitor_Status(t *testing.T) {
	m := newTestMonitor()
	m = update(t, m, feedMsg(statusMessage(t, server.Status{
		Hostname:         "RuuviGatewayEEFF",
		Mode:             "WIFI_HOTSPOT",
		APClients:        1,
		HotspotCountdown: true,
		ConfigEmpty:      true,
		StorageReady:     true,
	})))

	view := m.View()
	for _, want := range []string{"RuuviGatewayEEFF", "WIFI_HOTSPOT", "closing when idle", "not configured", "mode WIFI_HOTSPOT"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Waiting for gateway status") {
		t.Error("spinner still shown after status")
	}

	m = update(t, m, feedMsg(statusMessage(t, server.Status{Mode: "ETHERNET"})))
	if got := m.events[len(m.events)-1]; !strings.HasSuffix(got, "mode ETHERNET") {
		t.Errorf("last event = %q, want mode change", got)
	}
}

func TestMonitor_Config(t *testing.T) {
	m := newTestMonitor()
	doc := `{"fw_ver": "v1.2.0", "gw_mac": "C8:25:2D:8E:9C:2C", "use_eth": false,
		"wifi_sta_config": {"ssid": "home"}, "use_mqtt": true, "mqtt_server": "broker.local",
		"lan_auth_type": "lan_auth_default"}`
	m = update(t, m, feedMsg(server.Message{Type: server.MessageConfig, Data: json.RawMessage(doc)}))

	view := m.View()
	for _, want := range []string{"C8:25:2D:8E:9C:2C", "Wi-Fi home", "broker.local", "lan_auth_default"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}

	m = update(t, m, feedMsg(server.Message{Type: server.MessageConfigReset}))
	if m.config != nil {
		t.Error("config kept after reset")
	}
	if got := m.events[len(m.events)-1]; !strings.Contains(got, "reset") {
		t.Errorf("last event = %q", got)
	}
}

func TestMonitor_EventsBounded(t *testing.T) {
	m := newTestMonitor()
	for i := 0; i < maxMonitorEvents+5; i++ {
		m = update(t, m, feedMsg(server.Message{Type: "other"}))
	}
	if len(m.events) != maxMonitorEvents {
		t.Errorf("len(events) = %d, want %d", len(m.events), maxMonitorEvents)
	}
}

func TestMonitor_FeedClosed(t *testing.T) {
	m := newTestMonitor()
	m = update(t, m, feedClosedMsg{err: errors.New("connection reset")})
	if !m.closed || m.Err() == nil {
		t.Fatal("monitor should record the closed feed")
	}
	if view := m.View(); !strings.Contains(view, "Connection lost: connection reset") {
		t.Errorf("View():\n%s", view)
	}
}

func TestMonitor_Quit(t *testing.T) {
	m := newTestMonitor()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWaitForFeed(t *testing.T) {
	feed := &fakeFeed{ch: make(chan server.Message, 1), err: errors.New("eof")}
	feed.ch <- server.Message{Type: server.MessageStatus}

	if msg, ok := waitForFeed(feed)().(feedMsg); !ok || msg.Type != server.MessageStatus {
		t.Errorf("waitForFeed() = %#v, want status message", msg)
	}
	close(feed.ch)
	closed, ok := waitForFeed(feed)().(feedClosedMsg)
	if !ok || closed.err == nil {
		t.Errorf("waitForFeed() after close = %#v, want feedClosedMsg with error", closed)
	}
}

func TestScanModel(t *testing.T) {
	devices := []*discovery.Device{{Name: "RuuviGatewayEEFF", IP: "192.168.1.20", Port: 80}}
	m := NewScanModel(context.Background(), time.Second, func(context.Context) ([]*discovery.Device, error) {
		return devices, nil
	})
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	m.now = func() time.Time { return now }

	if m.Percent() != 0 {
		t.Errorf("Percent() before tick = %v, want 0", m.Percent())
	}

	next, _ := m.Update(scanTickMsg(start))
	m = next.(ScanModel)
	now = start.Add(500 * time.Millisecond)
	if p := m.Percent(); p < 0.49 || p > 0.51 {
		t.Errorf("Percent() halfway = %v, want 0.5", p)
	}
	if !strings.Contains(m.View(), "Scanning for gateways") {
		t.Errorf("View() = %q", m.View())
	}

	next, cmd := m.Update(scanDoneMsg{devices: devices})
	m = next.(ScanModel)
	if cmd == nil {
		t.Fatal("done should quit")
	}
	got, err := m.Result()
	if err != nil || len(got) != 1 {
		t.Errorf("Result() = %v, %v", got, err)
	}
	if m.Percent() != 1 || m.View() != "" {
		t.Error("finished scan should be complete and render nothing")
	}
}

func TestRenderDevices(t *testing.T) {
	if out := RenderDevices(nil, 80); !strings.Contains(out, "No gateways found") {
		t.Errorf("RenderDevices(nil) = %q", out)
	}

	out := RenderDevices([]*discovery.Device{
		{Name: "RuuviGateway0001", IP: "10.0.0.1", Port: 80, Metadata: map[string]string{"fw_ver": "v1.2.0"}},
		{Name: "RuuviGateway0002", IP: "10.0.0.2", Port: 8080},
	}, 80)
	for _, want := range []string{"2 GATEWAYS", "RuuviGateway0001", "http://10.0.0.1:80/ruuvi.json", "v1.2.0", "http://10.0.0.2:8080/ruuvi.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderDevices() missing %q:\n%s", want, out)
		}
	}
}
