package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a gateway found on the network
type Device struct {
	// Name is the gateway hostname without domain (e.g., "RuuviGatewayEEFF")
	Name string

	// Suffix is the hex tail of the name, taken from the last two Wi-Fi MAC bytes
	Suffix string

	// Hostname is the mDNS hostname (e.g., "RuuviGatewayEEFF.local.")
	Hostname string

	// IP is the address the gateway answered from, IPv4 preferred
	IP string

	// Port is the configuration endpoint port
	Port int

	// Metadata contains the mDNS TXT record data ("fw_ver", "path")
	Metadata map[string]string

	// DiscoveredAt is when the gateway was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Gateway %s (%s) at %s:%d", d.Name, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

// ConfigURL returns the URL of the gateway's configuration document.
func (d *Device) ConfigURL() string {
	return d.BaseURL() + "/ruuvi.json"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
