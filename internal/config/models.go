package config

import (
	"time"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/version"
)

// SettingsVersion is the only settings file version this build understands.
const SettingsVersion = 1

// Settings is the daemon settings file. It configures the process around the
// gateway record; the record itself lives in the bolt store.
type Settings struct {
	Version    int                `yaml:"version"`
	LogLevel   string             `yaml:"log_level,omitempty"`
	Storage    StorageSettings    `yaml:"storage"`
	Device     DeviceSettings     `yaml:"device"`
	Network    NetworkSettings    `yaml:"network"`
	Server     ServerSettings     `yaml:"server"`
	MDNS       MDNSSettings       `yaml:"mdns"`
	AutoUpdate AutoUpdateSettings `yaml:"auto_update"`
}

// StorageSettings locates the bolt database.
type StorageSettings struct {
	Path string `yaml:"path,omitempty"` // Empty means <config dir>/blegw.db
}

// DeviceSettings is the hardware identity the compiled defaults derive from.
type DeviceSettings struct {
	WiFiMAC    string `yaml:"wifi_mac"`
	EthMAC     string `yaml:"eth_mac"`
	NRF52MAC   string `yaml:"nrf52_mac"`
	DeviceID   string `yaml:"device_id"`
	FWVer      string `yaml:"fw_ver,omitempty"`       // Defaults to the build version
	NRF52FWVer string `yaml:"nrf52_fw_ver,omitempty"` // Reported by the BLE chip
}

// NetworkSettings tunes connectivity bootstrap.
type NetworkSettings struct {
	EthInterface   string        `yaml:"eth_interface"`
	EthLinkWait    time.Duration `yaml:"eth_link_wait"`
	HotspotTimeout time.Duration `yaml:"hotspot_timeout"`
	ShortDelay     time.Duration `yaml:"short_delay"`
}

// ServerSettings configures the local configuration endpoint.
type ServerSettings struct {
	Listen    string  `yaml:"listen"`
	RateLimit float64 `yaml:"rate_limit"` // Requests per second per client, 0 disables
	RateBurst int     `yaml:"rate_burst"`
	TLSCert   string  `yaml:"tls_cert,omitempty"`
	TLSKey    string  `yaml:"tls_key,omitempty"`
}

// MDNSSettings controls the service advertisement.
type MDNSSettings struct {
	Enabled bool `yaml:"enabled"`
}

// AutoUpdateSettings controls how often the update window is checked.
type AutoUpdateSettings struct {
	Schedule string `yaml:"schedule"` // cron spec
}

// NewSettings returns the settings used when no file exists.
func NewSettings() *Settings {
	return &Settings{
		Version: SettingsVersion,
		Device: DeviceSettings{
			WiFiMAC:  "00:00:00:00:00:00",
			EthMAC:   "00:00:00:00:00:00",
			NRF52MAC: "00:00:00:00:00:00",
			DeviceID: "00:00:00:00:00:00:00:00",
		},
		Network: NetworkSettings{
			EthInterface:   "eth0",
			EthLinkWait:    10 * time.Second,
			HotspotTimeout: 60 * time.Second,
			ShortDelay:     5 * time.Second,
		},
		Server: ServerSettings{
			Listen:    ":8080",
			RateLimit: 10,
			RateBurst: 20,
		},
		MDNS: MDNSSettings{
			Enabled: true,
		},
		AutoUpdate: AutoUpdateSettings{
			Schedule: "@every 1h",
		},
	}
}

// InitParams converts the device section into the identity the gateway
// defaults are built from.
func (s *Settings) InitParams() (gwcfg.DefaultInitParams, error) {
	var p gwcfg.DefaultInitParams
	var err error

	if p.WiFiMAC, err = parseMACField("device.wifi_mac", s.Device.WiFiMAC); err != nil {
		return p, err
	}
	if p.EthMAC, err = parseMACField("device.eth_mac", s.Device.EthMAC); err != nil {
		return p, err
	}
	if p.NRF52MAC, err = parseMACField("device.nrf52_mac", s.Device.NRF52MAC); err != nil {
		return p, err
	}
	if s.Device.DeviceID != "" {
		if p.DeviceID, err = gwcfg.ParseDeviceID(s.Device.DeviceID); err != nil {
			return p, err
		}
	}

	p.FirmwareVersion = s.Device.FWVer
	if p.FirmwareVersion == "" {
		p.FirmwareVersion = version.Version
	}
	p.NRF52FirmwareVersion = s.Device.NRF52FWVer
	return p, nil
}

func parseMACField(field, value string) (gwcfg.MAC, error) {
	if value == "" {
		return gwcfg.MAC{}, nil
	}
	mac, err := gwcfg.ParseMAC(value)
	if err != nil {
		return gwcfg.MAC{}, gwcfg.NewValidationError(field + ": " + err.Error())
	}
	return mac, nil
}
