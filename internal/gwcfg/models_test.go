package gwcfg

import (
	"testing"
)

func testParams() DefaultInitParams {
	return DefaultInitParams{
		WiFiMAC:              MustParseMAC("AA:BB:CC:DD:EE:F1"),
		EthMAC:               MustParseMAC("AA:BB:CC:DD:EE:F2"),
		NRF52MAC:             MustParseMAC("C8:25:2D:8E:9C:2C"),
		DeviceID:             DeviceID{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88},
		FirmwareVersion:      "v1.15.0",
		NRF52FirmwareVersion: "v1.0.0",
	}
}

func TestDefaultInitParams_Hostname(t *testing.T) {
	tests := []struct {
		name string
		mac  MAC
		want string
	}{
		{"last two bytes", MustParseMAC("AA:BB:CC:DD:EE:F1"), "RuuviGatewayEEF1"},
		{"lower-case input", MustParseMAC("aa:bb:cc:dd:0a:0b"), "RuuviGateway0A0B"},
		{"all-zero MAC", MAC{}, "RuuviGatewayXXXX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultInitParams{WiFiMAC: tt.mac}
			if got := p.Hostname(); got != tt.want {
				t.Errorf("Hostname() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	p := testParams()
	cfg := Defaults(p)

	if cfg.Device.Hostname != "RuuviGatewayEEF1" {
		t.Errorf("Device.Hostname = %v, want RuuviGatewayEEF1", cfg.Device.Hostname)
	}
	if cfg.Device.Params() != p {
		t.Errorf("Device.Params() = %+v, want %+v", cfg.Device.Params(), p)
	}
	if !cfg.HTTP.UseHTTPRuuvi || cfg.HTTP.UseHTTP {
		t.Errorf("HTTP use flags = %v/%v, want true/false", cfg.HTTP.UseHTTPRuuvi, cfg.HTTP.UseHTTP)
	}
	if !cfg.HTTP.ExplicitIsVendorDefault() {
		t.Error("default HTTP config should equal the vendor default")
	}
	if cfg.MQTT.Prefix != "ruuvi/C8:25:2D:8E:9C:2C/" {
		t.Errorf("MQTT.Prefix = %v, want ruuvi/C8:25:2D:8E:9C:2C/", cfg.MQTT.Prefix)
	}
	if cfg.MQTT.ClientID != "C8:25:2D:8E:9C:2C" {
		t.Errorf("MQTT.ClientID = %v, want C8:25:2D:8E:9C:2C", cfg.MQTT.ClientID)
	}
	if cfg.LANAuth.Type != LANAuthDefault || cfg.LANAuth.User != DefaultLANAuthUser {
		t.Errorf("LANAuth = %v/%v, want lan_auth_default/Admin", cfg.LANAuth.Type, cfg.LANAuth.User)
	}
	if len(cfg.LANAuth.Pass) != 32 {
		t.Errorf("LANAuth.Pass length = %d, want 32 hex chars", len(cfg.LANAuth.Pass))
	}
	if cfg.Filter.CompanyID != 0x0499 {
		t.Errorf("Filter.CompanyID = %#x, want 0x0499", cfg.Filter.CompanyID)
	}
	if cfg.AutoUpdate.WeekdaysBitmask != 0x7F || cfg.AutoUpdate.IntervalTo != 24 {
		t.Errorf("AutoUpdate = %+v, want all weekdays 0-24", cfg.AutoUpdate)
	}
	if cfg.WiFi.AP.Channel != 1 {
		t.Errorf("WiFi.AP.Channel = %d, want 1", cfg.WiFi.AP.Channel)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("Validate(Defaults()) = %v, want no errors", errs)
	}
}

func TestDefaultLANAuthPassword_Deterministic(t *testing.T) {
	p := testParams()
	a := DefaultLANAuthPassword(p)
	b := DefaultLANAuthPassword(p)
	if a != b {
		t.Errorf("DefaultLANAuthPassword() not deterministic: %v != %v", a, b)
	}

	other := p
	other.DeviceID[0] = 0xFF
	if DefaultLANAuthPassword(other) == a {
		t.Error("DefaultLANAuthPassword() should depend on the device id")
	}
}

func TestConfig_CloneIsIndependent(t *testing.T) {
	cfg := Defaults(testParams())
	cp := cfg.Clone()
	cp.MQTT.Server = "broker.example.com"
	cp.ScanFilter.MACs[0] = MustParseMAC("01:02:03:04:05:06")

	if cfg.MQTT.Server == "broker.example.com" {
		t.Error("Clone() shares MQTT settings with the original")
	}
	if cfg.ScanFilter.MACs[0] != (MAC{}) {
		t.Error("Clone() shares the scan filter array with the original")
	}
	if (*Config)(nil).Clone() != nil {
		t.Error("Clone() of nil should be nil")
	}
}

func TestScanFilterConfig_SetList(t *testing.T) {
	var sf ScanFilterConfig
	macs := []MAC{MustParseMAC("AA:BB:CC:DD:EE:01"), MustParseMAC("AA:BB:CC:DD:EE:02")}
	if err := sf.SetList(macs); err != nil {
		t.Fatalf("SetList() error = %v", err)
	}
	got := sf.List()
	if len(got) != 2 || got[0] != macs[0] || got[1] != macs[1] {
		t.Errorf("List() = %v, want %v", got, macs)
	}

	tooMany := make([]MAC, ScanFilterCapacity+1)
	if err := sf.SetList(tooMany); !IsValidationError(err) {
		t.Errorf("SetList(over capacity) error = %v, want validation error", err)
	}
	if sf.Length != 2 {
		t.Errorf("Length after failed SetList = %d, want 2", sf.Length)
	}
}

func TestLANAuthConfig_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       LANAuthConfig
		wantUser string
		wantPass string
		wantKey  string
	}{
		{"basic keeps everything", LANAuthConfig{Type: LANAuthBasic, User: "u", Pass: "p", APIKey: "k"}, "u", "p", "k"},
		{"allow clears user and pass", LANAuthConfig{Type: LANAuthAllow, User: "u", Pass: "p", APIKey: "k"}, "", "", "k"},
		{"deny clears everything", LANAuthConfig{Type: LANAuthDeny, User: "u", Pass: "p", APIKey: "k"}, "", "", ""},
		{"default drops api keys", LANAuthConfig{Type: LANAuthDefault, User: "Admin", Pass: "x", APIKey: "k"}, "Admin", "x", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.User != tt.wantUser || got.Pass != tt.wantPass || got.APIKey != tt.wantKey {
				t.Errorf("Normalize() = %+v, want user=%q pass=%q key=%q", got, tt.wantUser, tt.wantPass, tt.wantKey)
			}
		})
	}
}

func TestParseMAC(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AA:BB:CC:DD:EE:FF", "AA:BB:CC:DD:EE:FF", false},
		{"aa:bb:cc:dd:ee:ff", "AA:BB:CC:DD:EE:FF", false},
		{"AA:BB:CC:DD:EE", "", true},
		{"AA-BB-CC-DD-EE-FF", "", true},
		{"GG:BB:CC:DD:EE:FF", "", true},
		{"A:BB:CC:DD:EE:FFF", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMAC(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMAC(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.String() != tt.want {
				t.Errorf("ParseMAC(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDeviceID(t *testing.T) {
	id, err := ParseDeviceID("11:22:33:44:55:66:77:88")
	if err != nil {
		t.Fatalf("ParseDeviceID() error = %v", err)
	}
	if id.String() != "11:22:33:44:55:66:77:88" {
		t.Errorf("String() = %v, want 11:22:33:44:55:66:77:88", id.String())
	}
	if _, err := ParseDeviceID("11:22"); err == nil {
		t.Error("ParseDeviceID(short) should fail")
	}
}
