// Package gwcfg defines the gateway configuration record.
//
// A Config describes everything the gateway needs to bring up its network
// link and forward BLE advertisements: Wi-Fi and Ethernet settings, remote
// configuration download, the HTTP, HTTP-statistics and MQTT egress channels,
// local web UI authentication, the auto-update window, NTP servers and the
// BLE scan policy.
//
// Config is a plain value type. Copying it copies every field (the scan
// filter list has a fixed capacity), and two records can be compared with
// Equal or Diff.
//
// # Defaults
//
// Defaults builds the compiled-in record for one device from a small
// DefaultInitParams value. The Wi-Fi hotspot SSID and mDNS hostname derive
// from the last two bytes of the Wi-Fi MAC:
//
//	p := gwcfg.DefaultInitParams{WiFiMAC: gwcfg.MustParseMAC("AA:BB:CC:DD:EE:FF")}
//	p.Hostname() // "RuuviGatewayEEFF"
//
// # Credentials
//
// The remote-config and HTTP channels use the Auth union. Exactly one arm is
// populated and the accessors report whether an arm is active:
//
//	a := gwcfg.BasicAuth("user", "secret")
//	if user, pass, ok := a.Basic(); ok { ... }
//
// # Validation
//
// Validate never mutates the record and returns every problem found;
// ValidateAll folds them into one error.
package gwcfg
