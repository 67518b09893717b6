package gwcfg

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Compiled-in defaults.
const (
	DefaultHTTPURL      = "https://network.ruuvi.com/record"
	DefaultHTTPStatURL  = "https://network.ruuvi.com/status"
	DefaultFWUpdateURL  = "https://network.ruuvi.com/firmwareupdate"
	DefaultMQTTServer   = "test.mosquitto.org"
	DefaultMQTTPort     = 1883
	DefaultLANAuthUser  = "Admin"
	DefaultCompanyID    = 0x0499
	DefaultAPChannel    = 1
	DefaultWeekdays     = 0x7F
	DefaultUpdateFrom   = 0
	DefaultUpdateTo     = 24
	DefaultTZOffsetHour = 3

	hostnamePrefix      = "RuuviGateway"
	hostnamePlaceholder = "XXXX"
)

// DefaultNTPServers are the compiled-in time servers.
var DefaultNTPServers = [NumNTPServers]string{
	"time.google.com",
	"time.cloudflare.com",
	"time.nist.gov",
	"pool.ntp.org",
}

// DefaultInitParams is the device identity the defaults are derived from.
type DefaultInitParams struct {
	WiFiMAC              MAC
	EthMAC               MAC
	NRF52MAC             MAC
	DeviceID             DeviceID
	FirmwareVersion      string
	NRF52FirmwareVersion string
}

// Hostname returns the Wi-Fi AP SSID and mDNS hostname. It is built from the
// last two bytes of the Wi-Fi MAC, or a fixed placeholder for an all-zero MAC.
func (p DefaultInitParams) Hostname() string {
	if p.WiFiMAC.IsZero() {
		return hostnamePrefix + hostnamePlaceholder
	}
	return fmt.Sprintf("%s%02X%02X", hostnamePrefix, p.WiFiMAC[4], p.WiFiMAC[5])
}

// DefaultLANAuthPassword derives the factory LAN password from the device identity.
func DefaultLANAuthPassword(p DefaultInitParams) string {
	sum := md5.Sum([]byte(DefaultLANAuthUser + ":" + p.Hostname() + ":" + p.DeviceID.String()))
	return hex.EncodeToString(sum[:])
}

// DefaultMQTTPrefix returns the topic prefix used when none is configured.
func DefaultMQTTPrefix(nrf52MAC MAC) string {
	return "ruuvi/" + nrf52MAC.String() + "/"
}

// DefaultMQTTClientID returns the client id used when none is configured.
func DefaultMQTTClientID(nrf52MAC MAC) string {
	return nrf52MAC.String()
}

// DeviceInfoFromParams builds the read-only identity block.
func DeviceInfoFromParams(p DefaultInitParams) DeviceInfo {
	return DeviceInfo{
		FirmwareVersion:      p.FirmwareVersion,
		NRF52FirmwareVersion: p.NRF52FirmwareVersion,
		NRF52MAC:             p.NRF52MAC,
		NRF52DeviceID:        p.DeviceID,
		WiFiMAC:              p.WiFiMAC,
		EthMAC:               p.EthMAC,
		Hostname:             p.Hostname(),
	}
}

// Defaults returns the compiled-in configuration for a device.
func Defaults(p DefaultInitParams) *Config {
	return &Config{
		Device: DeviceInfoFromParams(p),
		WiFi: WiFiConfig{
			AP: WiFiAPConfig{Channel: DefaultAPChannel},
		},
		Eth: EthConfig{
			UseEth: false,
			DHCP:   true,
		},
		Remote: RemoteConfig{
			Auth: NoAuth(),
		},
		HTTP: HTTPConfig{
			UseHTTPRuuvi: true,
			UseHTTP:      false,
			URL:          DefaultHTTPURL,
			DataFormat:   HTTPDataFormatRaw,
			Auth:         NoAuth(),
		},
		HTTPStat: HTTPStatConfig{
			Use: true,
			URL: DefaultHTTPStatURL,
		},
		MQTT: MQTTConfig{
			Transport: MQTTTransportTCP,
			Server:    DefaultMQTTServer,
			Port:      DefaultMQTTPort,
			Prefix:    DefaultMQTTPrefix(p.NRF52MAC),
			ClientID:  DefaultMQTTClientID(p.NRF52MAC),
		},
		LANAuth: LANAuthConfig{
			Type: LANAuthDefault,
			User: DefaultLANAuthUser,
			Pass: DefaultLANAuthPassword(p),
		},
		AutoUpdate: AutoUpdateConfig{
			Cycle:           AutoUpdateRegular,
			WeekdaysBitmask: DefaultWeekdays,
			IntervalFrom:    DefaultUpdateFrom,
			IntervalTo:      DefaultUpdateTo,
			TZOffsetHours:   DefaultTZOffsetHour,
		},
		NTP: NTPConfig{
			Use:     true,
			Servers: DefaultNTPServers,
		},
		Filter: FilterConfig{
			CompanyID:    DefaultCompanyID,
			UseFiltering: true,
		},
		Scan: ScanConfig{
			OneMbitPHY:      true,
			ExtendedPayload: true,
			Channel37:       true,
			Channel38:       true,
			Channel39:       true,
		},
		FWUpdate: FWUpdateConfig{URL: DefaultFWUpdateURL},
	}
}
