package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Name:     "RuuviGatewayEEFF",
		Hostname: "RuuviGatewayEEFF.local.",
		IP:       "192.168.4.16",
		Port:     80,
	}

	expected := "Gateway RuuviGatewayEEFF (RuuviGatewayEEFF.local.) at 192.168.4.16:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "standard HTTP port",
			device:   &Device{IP: "192.168.4.16", Port: 80},
			expected: "http://192.168.4.16:80",
		},
		{
			name:     "custom port",
			device:   &Device{IP: "10.0.0.5", Port: 8080},
			expected: "http://10.0.0.5:8080",
		},
		{
			name:     "IPv6 address",
			device:   &Device{IP: "fe80::1", Port: 80},
			expected: "http://[fe80::1]:80",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_ConfigURL(t *testing.T) {
	device := &Device{IP: "192.168.1.20", Port: 8080}
	if got, want := device.ConfigURL(), "http://192.168.1.20:8080/ruuvi.json"; got != want {
		t.Errorf("Device.ConfigURL() = %v, want %v", got, want)
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{
			"path":   "/ruuvi.json",
			"fw_ver": "v1.2.0",
		},
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"path", "/ruuvi.json"},
		{"fw_ver", "v1.2.0"},
		{"missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := device.GetMetadata(tt.key); got != tt.expected {
				t.Errorf("Device.GetMetadata(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}

	var empty Device
	if got := empty.GetMetadata("path"); got != "" {
		t.Errorf("GetMetadata() on nil metadata = %q, want empty", got)
	}
}
