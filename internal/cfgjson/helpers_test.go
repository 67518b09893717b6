package cfgjson

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

func testParams() gwcfg.DefaultInitParams {
	return gwcfg.DefaultInitParams{
		WiFiMAC:              gwcfg.MustParseMAC("AA:BB:CC:DD:EE:F1"),
		EthMAC:               gwcfg.MustParseMAC("AA:BB:CC:DD:EE:F2"),
		NRF52MAC:             gwcfg.MustParseMAC("C8:25:2D:8E:9C:2C"),
		DeviceID:             gwcfg.DeviceID{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
		FirmwareVersion:      "v1.15.0",
		NRF52FirmwareVersion: "v1.0.0",
	}
}

func testDefaults() *gwcfg.Config {
	return gwcfg.Defaults(testParams())
}

// customConfig returns a config with every section moved off its default.
func customConfig() *gwcfg.Config {
	cfg := testDefaults()
	cfg.WiFi.STA = gwcfg.WiFiSTAConfig{SSID: "home", Password: "wifi-secret"}
	cfg.WiFi.AP = gwcfg.WiFiAPConfig{Password: "ap-secret1", Channel: 6}
	cfg.Eth = gwcfg.EthConfig{
		UseEth:   true,
		StaticIP: "192.168.1.10",
		Netmask:  "255.255.255.0",
		Gateway:  "192.168.1.1",
		DNS1:     "1.1.1.1",
		DNS2:     "8.8.8.8",
	}
	cfg.Remote = gwcfg.RemoteConfig{
		Use:                    true,
		URL:                    "https://cfg.example.com/gw.json",
		Auth:                   gwcfg.BearerAuth("remote-token"),
		UseSSLServerCert:       true,
		RefreshIntervalMinutes: 30,
	}
	cfg.HTTP = gwcfg.HTTPConfig{
		UseHTTPRuuvi: false,
		UseHTTP:      true,
		URL:          "https://ingest.example.com/",
		DataFormat:   gwcfg.HTTPDataFormatDecoded,
		Auth:         gwcfg.BasicAuth("http-user", "http-secret"),
	}
	cfg.HTTPStat = gwcfg.HTTPStatConfig{
		Use:  true,
		URL:  "https://stat.example.com/",
		User: "stat-user",
		Pass: "stat-secret",
	}
	cfg.MQTT = gwcfg.MQTTConfig{
		Use:             true,
		Transport:       gwcfg.MQTTTransportWSS,
		Server:          "broker.example.com",
		Port:            8884,
		SendingInterval: 10,
		Prefix:          "site/gw1/",
		ClientID:        "gw1",
		User:            "mqtt-user",
		Pass:            "mqtt-secret",
	}
	cfg.LANAuth = gwcfg.LANAuthConfig{
		Type:     gwcfg.LANAuthBasic,
		User:     "operator",
		Pass:     "lan-secret",
		APIKey:   "ro-key",
		APIKeyRW: "rw-key",
	}
	cfg.AutoUpdate = gwcfg.AutoUpdateConfig{
		Cycle:           gwcfg.AutoUpdateBeta,
		WeekdaysBitmask: 0x3E,
		IntervalFrom:    2,
		IntervalTo:      5,
		TZOffsetHours:   -5,
	}
	cfg.NTP = gwcfg.NTPConfig{
		Use:     true,
		UseDHCP: true,
		Servers: [gwcfg.NumNTPServers]string{"ntp1.example.com", "ntp2.example.com", "", ""},
	}
	cfg.Filter = gwcfg.FilterConfig{CompanyID: 0x004C, UseFiltering: false}
	cfg.Scan = gwcfg.ScanConfig{CodedPHY: true, Channel37: true}
	cfg.ScanFilter.AllowListed = true
	_ = cfg.ScanFilter.SetList([]gwcfg.MAC{
		gwcfg.MustParseMAC("AA:BB:CC:00:00:01"),
		gwcfg.MustParseMAC("AA:BB:CC:00:00:02"),
	})
	cfg.Coordinates = "60.17,24.94"
	cfg.FWUpdate.URL = "https://fw.example.com/"
	return cfg
}

// observeLogs routes package logging to an in-memory core for the test.
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(prev) })
	return logs
}

// keysLogged returns the "key" fields of entries with the given message.
func keysLogged(logs *observer.ObservedLogs, msg string) map[string]int {
	out := make(map[string]int)
	for _, entry := range logs.FilterMessage(msg).All() {
		if key, ok := entry.ContextMap()["key"].(string); ok {
			out[key]++
		}
	}
	return out
}

func mustEncode(t *testing.T, cfg *gwcfg.Config) []byte {
	t.Helper()
	out, err := EncodeForSaving(cfg)
	if err != nil {
		t.Fatalf("EncodeForSaving() error = %v", err)
	}
	return out
}

func asMap(t *testing.T, doc []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("encoded document is not valid JSON: %v\n%s", err, doc)
	}
	return m
}
