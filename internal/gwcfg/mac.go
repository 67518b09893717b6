package gwcfg

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// MAC is a MAC-48 address.
type MAC [6]byte

// ParseMAC parses the textual form XX:XX:XX:XX:XX:XX (case-insensitive).
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	parts := strings.Split(s, ":")
	if len(parts) != len(mac) {
		return MAC{}, NewValidationError(fmt.Sprintf("invalid MAC address %q", s))
	}
	for i, p := range parts {
		if len(p) != 2 {
			return MAC{}, NewValidationError(fmt.Sprintf("invalid MAC address %q", s))
		}
		b, err := hex.DecodeString(p)
		if err != nil {
			return MAC{}, NewValidationError(fmt.Sprintf("invalid MAC address %q", s))
		}
		mac[i] = b[0]
	}
	return mac, nil
}

// MustParseMAC is ParseMAC for compile-time constants; it panics on error.
func MustParseMAC(s string) MAC {
	mac, err := ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return mac
}

// String returns the upper-case colon-separated form.
func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IsZero reports whether all bytes are zero.
func (m MAC) IsZero() bool {
	return m == MAC{}
}

// DeviceID is the 8-byte identifier of the companion BLE chip.
type DeviceID [8]byte

// ParseDeviceID parses the colon-separated hex form of a device id.
func ParseDeviceID(s string) (DeviceID, error) {
	var id DeviceID
	raw, err := hex.DecodeString(strings.ReplaceAll(s, ":", ""))
	if err != nil || len(raw) != len(id) {
		return DeviceID{}, NewValidationError(fmt.Sprintf("invalid device id %q", s))
	}
	copy(id[:], raw)
	return id, nil
}

// String returns the upper-case colon-separated form.
func (d DeviceID) String() string {
	parts := make([]string, len(d))
	for i, b := range d {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}
