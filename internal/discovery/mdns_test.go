package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name       string
		entry      *zeroconf.ServiceEntry
		wantNil    bool
		wantName   string
		wantSuffix string
		wantIP     string
		wantPort   int
	}{
		{
			name: "gateway with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGatewayEEFF.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
				Text:     []string{"path=/ruuvi.json", "fw_ver=v1.2.0"},
			},
			wantName:   "RuuviGatewayEEFF",
			wantSuffix: "EEFF",
			wantIP:     "192.168.4.16",
			wantPort:   80,
		},
		{
			name: "hostname without trailing dot",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGateway1A2B.local",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantName:   "RuuviGateway1A2B",
			wantSuffix: "1A2B",
			wantIP:     "10.0.0.5",
			wantPort:   8080,
		},
		{
			name: "placeholder name is not a gateway",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGatewayXXXX.local.",
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.6")},
			},
			wantNil: true,
		},
		{
			name: "matched on instance name",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "RuuviGateway00C1"},
				HostName:      "esp32.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantName:   "RuuviGateway00C1",
			wantSuffix: "00C1",
			wantIP:     "172.16.0.1",
			wantPort:   DefaultPort,
		},
		{
			name: "other device",
			entry: &zeroconf.ServiceEntry{
				HostName: "printer.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "lowercase suffix",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGatewayeeff.local.",
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGatewayEEFF.local.",
				Port:     80,
			},
			wantNil: true,
		},
		{
			name: "IPv6 only",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGateway2222.local.",
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantName:   "RuuviGateway2222",
			wantSuffix: "2222",
			wantIP:     "fe80::1",
			wantPort:   80,
		},
		{
			name: "IPv4 preferred over IPv6",
			entry: &zeroconf.ServiceEntry{
				HostName: "RuuviGateway3333.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantName:   "RuuviGateway3333",
			wantSuffix: "3333",
			wantIP:     "192.168.1.50",
			wantPort:   80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", device)
				}
				return
			}
			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}

			if device.Name != tt.wantName {
				t.Errorf("device.Name = %v, want %v", device.Name, tt.wantName)
			}
			if device.Suffix != tt.wantSuffix {
				t.Errorf("device.Suffix = %v, want %v", device.Suffix, tt.wantSuffix)
			}
			if device.IP != tt.wantIP {
				t.Errorf("device.IP = %v, want %v", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("device.Port = %v, want %v", device.Port, tt.wantPort)
			}
			if time.Since(device.DiscoveredAt) > time.Second {
				t.Errorf("device.DiscoveredAt is not recent: %v", device.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "RuuviGatewayEEFF.local.",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
		Text:     []string{"path=/ruuvi.json", "fw_ver=v1.2.0", "flag", "url=http://x/?a=b"},
	}

	device := parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}

	expected := map[string]string{
		"path":   "/ruuvi.json",
		"fw_ver": "v1.2.0",
		"flag":   "",
		"url":    "http://x/?a=b",
	}
	if len(device.Metadata) != len(expected) {
		t.Errorf("device.Metadata has %d entries, want %d", len(device.Metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := device.Metadata[key]; !ok {
			t.Errorf("device.Metadata missing key %q", key)
		} else if got != want {
			t.Errorf("device.Metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestParseServiceEntry_HostnameFromInstance(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "RuuviGatewayABCD"},
		AddrIPv4:      []net.IP{net.ParseIP("10.1.1.1")},
	}
	device := parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil, want device")
	}
	if device.Hostname != "RuuviGatewayABCD.local." {
		t.Errorf("device.Hostname = %v, want RuuviGatewayABCD.local.", device.Hostname)
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestAdvertise_RejectsInvalidHostname(t *testing.T) {
	for _, name := range []string{"", "RuuviGatewayXXXX", "gateway", "RuuviGatewayEEFF0"} {
		if _, err := Advertise(name, 80, nil); err == nil {
			t.Errorf("Advertise(%q) error = nil, want error", name)
		}
	}
}

func TestAdvertisement_ShutdownNil(t *testing.T) {
	var a *Advertisement
	a.Shutdown()
}

func TestNamePattern(t *testing.T) {
	tests := []struct {
		hostname    string
		shouldMatch bool
		suffix      string
	}{
		{"RuuviGatewayEEFF", true, "EEFF"},
		{"RuuviGatewayEEFF.local", true, "EEFF"},
		{"RuuviGatewayEEFF.local.", true, "EEFF"},
		{"RuuviGateway0000.local.", true, "0000"},
		{"ruuvigatewayEEFF.local", false, ""},
		{"RuuviGatewayEEF.local", false, ""},
		{"RuuviGatewayEEFF1.local", false, ""},
		{"RuuviGatewayXXXX", false, ""},
		{"RuuviGatewayEEFF.lan", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			matches := namePattern.FindStringSubmatch(tt.hostname)
			if !tt.shouldMatch {
				if matches != nil {
					t.Errorf("namePattern matched %q, want no match", tt.hostname)
				}
				return
			}
			if matches == nil {
				t.Fatalf("namePattern did not match %q", tt.hostname)
			}
			if matches[2] != tt.suffix {
				t.Errorf("namePattern suffix = %q, want %q", matches[2], tt.suffix)
			}
		})
	}
}
