package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/blegw/internal/gwcfg"
)

// RenderPanel renders a titled, bordered list of fields.
func RenderPanel(title string, fields []Field, width int) string {
	width = clampWidth(width)
	content := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(title)),
		renderFields(fields, 16),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 2).
		Render(content)
}

// ConfigFields summarizes a configuration record. Secrets are shown only as
// set or unset.
func ConfigFields(cfg *gwcfg.Config) []Field {
	fields := []Field{
		{"Hostname", cfg.Device.Hostname},
		{"Firmware", cfg.Device.FirmwareVersion},
		{"Network", networkSummary(cfg)},
		{"Wi-Fi SSID", orNone(cfg.WiFi.STA.SSID)},
		{"Wi-Fi pass", setOrUnset(cfg.WiFi.STA.Password)},
		{"HTTP", httpSummary(cfg.HTTP)},
		{"HTTP stats", onOff(cfg.HTTPStat.Use)},
		{"MQTT", mqttSummary(cfg.MQTT)},
		{"Remote config", remoteSummary(cfg.Remote)},
		{"LAN auth", cfg.LANAuth.Type.String()},
		{"Auto-update", cfg.AutoUpdate.Cycle.String()},
		{"NTP", onOff(cfg.NTP.Use)},
		{"Company filter", companySummary(cfg.Filter)},
		{"Scan filter", fmt.Sprintf("%d addresses", cfg.ScanFilter.Length)},
	}
	if cfg.Coordinates != "" {
		fields = append(fields, Field{"Coordinates", cfg.Coordinates})
	}
	return fields
}

func networkSummary(cfg *gwcfg.Config) string {
	if !cfg.Eth.UseEth {
		return "Wi-Fi"
	}
	if cfg.Eth.DHCP {
		return "Ethernet (DHCP)"
	}
	return "Ethernet (" + cfg.Eth.StaticIP + ")"
}

func httpSummary(h gwcfg.HTTPConfig) string {
	switch {
	case h.UseHTTP:
		return h.URL + " [" + h.DataFormat.String() + "]"
	case h.UseHTTPRuuvi:
		return "vendor endpoint"
	default:
		return "off"
	}
}

func mqttSummary(m gwcfg.MQTTConfig) string {
	if !m.Use {
		return "off"
	}
	return m.Transport.Scheme() + "://" + m.Server + ":" + strconv.Itoa(int(m.Port))
}

func remoteSummary(r gwcfg.RemoteConfig) string {
	if !r.Use {
		return "off"
	}
	return fmt.Sprintf("%s every %d min", r.URL, r.RefreshIntervalMinutes)
}

func companySummary(f gwcfg.FilterConfig) string {
	if !f.UseFiltering {
		return "off"
	}
	return fmt.Sprintf("0x%04X", f.CompanyID)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func setOrUnset(s string) string {
	if s == "" {
		return "not set"
	}
	return "set"
}
