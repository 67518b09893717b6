package cfgjson

import (
	"bytes"
	"testing"

	"github.com/muurk/blegw/internal/gwcfg"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gwcfg.Config)
	}{
		{"defaults", func(*gwcfg.Config) {}},
		{"custom", func(*gwcfg.Config) {}},
		{"remote basic", func(c *gwcfg.Config) { c.Remote.Auth = gwcfg.BasicAuth("ru", "rp") }},
		{"remote token", func(c *gwcfg.Config) { c.Remote.Auth = gwcfg.TokenAuth("rt") }},
		{"remote apikey", func(c *gwcfg.Config) { c.Remote.Auth = gwcfg.APIKeyAuth("rk") }},
		{"remote none", func(c *gwcfg.Config) { c.Remote.Auth = gwcfg.NoAuth() }},
		{"http bearer", func(c *gwcfg.Config) { c.HTTP.Auth = gwcfg.BearerAuth("hb") }},
		{"http token", func(c *gwcfg.Config) { c.HTTP.Auth = gwcfg.TokenAuth("ht") }},
		{"http apikey", func(c *gwcfg.Config) { c.HTTP.Auth = gwcfg.APIKeyAuth("hk") }},
		{"http none with ssl", func(c *gwcfg.Config) {
			c.HTTP.Auth = gwcfg.NoAuth()
			c.HTTP.UseSSLServerCert = true
		}},
		{"http raw and decoded", func(c *gwcfg.Config) { c.HTTP.DataFormat = gwcfg.HTTPDataFormatRawAndDecoded }},
		{"http both channels", func(c *gwcfg.Config) { c.HTTP.UseHTTPRuuvi = true }},
		{"http disabled", func(c *gwcfg.Config) { c.HTTP = testDefaults().HTTP; c.HTTP.UseHTTPRuuvi = false }},
		{"mqtt tcp", func(c *gwcfg.Config) { c.MQTT.Transport = gwcfg.MQTTTransportTCP }},
		{"mqtt ssl", func(c *gwcfg.Config) { c.MQTT.Transport = gwcfg.MQTTTransportSSL }},
		{"mqtt ws", func(c *gwcfg.Config) { c.MQTT.Transport = gwcfg.MQTTTransportWS }},
		{"lan digest", func(c *gwcfg.Config) { c.LANAuth.Type = gwcfg.LANAuthDigest }},
		{"lan allow", func(c *gwcfg.Config) {
			c.LANAuth = gwcfg.LANAuthConfig{Type: gwcfg.LANAuthAllow, APIKey: "k"}
		}},
		{"lan deny", func(c *gwcfg.Config) { c.LANAuth = gwcfg.LANAuthConfig{Type: gwcfg.LANAuthDeny} }},
		{"lan default", func(c *gwcfg.Config) { c.LANAuth = testDefaults().LANAuth }},
		{"manual updates", func(c *gwcfg.Config) { c.AutoUpdate.Cycle = gwcfg.AutoUpdateManual }},
		{"full scan filter", func(c *gwcfg.Config) {
			macs := make([]gwcfg.MAC, gwcfg.ScanFilterCapacity)
			for i := range macs {
				macs[i] = gwcfg.MAC{0x10, 0x20, 0x30, 0x40, 0x50, byte(i)}
			}
			_ = c.ScanFilter.SetList(macs)
		}},
		{"unicode", func(c *gwcfg.Config) {
			c.WiFi.STA.SSID = "kahvila ☕"
			c.Coordinates = "\"quoted\"\\ \t"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := customConfig()
			if tt.name == "defaults" {
				x = testDefaults()
			}
			tt.mutate(x)

			doc := mustEncode(t, x)
			got, err := Decode(testDefaults(), doc)
			if err != nil {
				t.Fatalf("Decode() error = %v\n%s", err, doc)
			}
			if *got != *x {
				t.Errorf("round trip changed sections %v\n%s", gwcfg.Diff(x, got), doc)
			}
		})
	}
}

func TestRoundTrip_EncodingIsStable(t *testing.T) {
	first := mustEncode(t, customConfig())
	decoded, err := Decode(testDefaults(), first)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	second := mustEncode(t, decoded)
	if !bytes.Equal(first, second) {
		t.Errorf("re-encoding differs:\n%s\n---\n%s", first, second)
	}
}

func TestRoundTrip_ShorthandIsIdempotent(t *testing.T) {
	x := testDefaults()
	x.HTTP.UseHTTPRuuvi = false
	x.HTTP.UseHTTP = true

	once, err := Decode(testDefaults(), mustEncode(t, x))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	twice, err := Decode(testDefaults(), mustEncode(t, once))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if once.HTTP != twice.HTTP {
		t.Errorf("shorthand not idempotent: %+v vs %+v", once.HTTP, twice.HTTP)
	}
	if !once.HTTP.UseHTTPRuuvi || once.HTTP.UseHTTP {
		t.Errorf("HTTP flags = %v/%v, want collapsed true/false", once.HTTP.UseHTTPRuuvi, once.HTTP.UseHTTP)
	}
}

func TestRoundTrip_UIDocumentKeepsSecrets(t *testing.T) {
	stored := customConfig()
	ui, err := EncodeForUI(stored, StorageStatus{})
	if err != nil {
		t.Fatalf("EncodeForUI() error = %v", err)
	}
	got, err := Decode(stored, ui)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if *got != *stored {
		t.Errorf("posting the UI document back changed sections %v", gwcfg.Diff(stored, got))
	}
}
