package gwcfg

// Size limits of the bounded string fields, excluding the terminator the
// device firmware reserves.
const (
	MaxSSIDLen         = 32
	MaxWiFiPasswordLen = 64
	MaxIPAddrLen       = 15
	MaxURLLen          = 256
	MaxUserLen         = 50
	MaxPasswordLen     = 50
	MaxTokenLen        = 1024
	MaxMQTTServerLen   = 256
	MaxMQTTPrefixLen   = 256
	MaxMQTTClientIDLen = 128
	MaxLANAPIKeyLen    = 64
	MaxNTPServerLen    = 32
	MaxCoordinatesLen  = 64

	// ScanFilterCapacity is the maximum number of MACs in the scan filter list.
	ScanFilterCapacity = 50

	// NumNTPServers is the number of NTP server slots.
	NumNTPServers = 4
)

// Config is the complete gateway configuration record.
// It is a plain value: assignment copies it and == compares it.
type Config struct {
	Device      DeviceInfo
	WiFi        WiFiConfig
	Eth         EthConfig
	Remote      RemoteConfig
	HTTP        HTTPConfig
	HTTPStat    HTTPStatConfig
	MQTT        MQTTConfig
	LANAuth     LANAuthConfig
	AutoUpdate  AutoUpdateConfig
	NTP         NTPConfig
	Filter      FilterConfig
	Scan        ScanConfig
	ScanFilter  ScanFilterConfig
	Coordinates string
	FWUpdate    FWUpdateConfig
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// DeviceInfo is the read-only identity of the gateway. It is set once at
// construction and never persisted.
type DeviceInfo struct {
	FirmwareVersion      string
	NRF52FirmwareVersion string
	NRF52MAC             MAC
	NRF52DeviceID        DeviceID
	WiFiMAC              MAC
	EthMAC               MAC
	Hostname             string
}

// Params returns the init params the device info was built from.
func (d DeviceInfo) Params() DefaultInitParams {
	return DefaultInitParams{
		WiFiMAC:              d.WiFiMAC,
		EthMAC:               d.EthMAC,
		NRF52MAC:             d.NRF52MAC,
		DeviceID:             d.NRF52DeviceID,
		FirmwareVersion:      d.FirmwareVersion,
		NRF52FirmwareVersion: d.NRF52FirmwareVersion,
	}
}

// WiFiConfig holds station and access-point settings.
type WiFiConfig struct {
	STA WiFiSTAConfig
	AP  WiFiAPConfig
}

// WiFiSTAConfig holds the station credentials.
type WiFiSTAConfig struct {
	SSID     string
	Password string
}

// Configured reports whether a station network has been set up.
func (w WiFiSTAConfig) Configured() bool {
	return w.SSID != ""
}

// WiFiAPConfig holds the hotspot settings. The SSID is derived from the MAC.
type WiFiAPConfig struct {
	Password string
	Channel  uint8
}

// EthConfig holds wired network settings. Static fields are empty when DHCP is used.
type EthConfig struct {
	UseEth   bool
	DHCP     bool
	StaticIP string
	Netmask  string
	Gateway  string
	DNS1     string
	DNS2     string
}

// RemoteConfig controls periodic download of the configuration from a server.
type RemoteConfig struct {
	Use                    bool
	URL                    string
	Auth                   Auth
	UseSSLClientCert       bool
	UseSSLServerCert       bool
	RefreshIntervalMinutes uint16
}

// HTTPConfig controls the generic HTTP egress channel.
// UseHTTPRuuvi selects the vendor endpoint; UseHTTP enables the custom endpoint
// described by the remaining fields.
type HTTPConfig struct {
	UseHTTPRuuvi     bool
	UseHTTP          bool
	URL              string
	DataFormat       HTTPDataFormat
	Auth             Auth
	UseSSLClientCert bool
	UseSSLServerCert bool
}

// ExplicitIsVendorDefault reports whether the custom endpoint fields equal
// the built-in vendor endpoint.
func (h HTTPConfig) ExplicitIsVendorDefault() bool {
	return h.URL == DefaultHTTPURL &&
		h.DataFormat == HTTPDataFormatRaw &&
		h.Auth.Type() == AuthNone &&
		!h.UseSSLClientCert &&
		!h.UseSSLServerCert
}

// HTTPStatConfig controls the statistics channel.
type HTTPStatConfig struct {
	Use              bool
	URL              string
	User             string
	Pass             string
	UseSSLClientCert bool
	UseSSLServerCert bool
}

// MQTTConfig controls the MQTT egress channel.
type MQTTConfig struct {
	Use                     bool
	DisableRetainedMessages bool
	Transport               MQTTTransport
	Server                  string
	Port                    uint16
	SendingInterval         uint32
	Prefix                  string
	ClientID                string
	User                    string
	Pass                    string
	UseSSLClientCert        bool
	UseSSLServerCert        bool
}

// LANAuthConfig controls access to the local web UI. Password is meaningful
// only when Type.HasPassword; API keys only when Type.HasAPIKeys.
type LANAuthConfig struct {
	Type     LANAuthType
	User     string
	Pass     string
	APIKey   string
	APIKeyRW string
}

// Normalize clears the fields the auth type does not carry.
func (l LANAuthConfig) Normalize() LANAuthConfig {
	switch l.Type {
	case LANAuthAllow, LANAuthDeny:
		l.User = ""
		l.Pass = ""
	}
	if !l.Type.HasAPIKeys() {
		l.APIKey = ""
		l.APIKeyRW = ""
	}
	return l
}

// AutoUpdateConfig describes when firmware updates may run.
type AutoUpdateConfig struct {
	Cycle AutoUpdateCycle
	// WeekdaysBitmask has bit 0 for Sunday through bit 6 for Saturday.
	WeekdaysBitmask uint8
	// IntervalFrom and IntervalTo bound the allowed hours as [from, to).
	IntervalFrom  uint8
	IntervalTo    uint8
	TZOffsetHours int8
}

// NTPConfig holds time synchronisation settings.
type NTPConfig struct {
	Use     bool
	UseDHCP bool
	Servers [NumNTPServers]string
}

// FilterConfig restricts forwarded advertisements to one manufacturer.
type FilterConfig struct {
	CompanyID    uint16
	UseFiltering bool
}

// ScanConfig selects BLE PHYs and advertising channels.
type ScanConfig struct {
	CodedPHY        bool
	OneMbitPHY      bool
	ExtendedPayload bool
	Channel37       bool
	Channel38       bool
	Channel39       bool
}

// ScanFilterConfig is an allow or deny list of BLE MACs with fixed capacity.
type ScanFilterConfig struct {
	AllowListed bool
	Length      int
	MACs        [ScanFilterCapacity]MAC
}

// List returns the populated entries.
func (s *ScanFilterConfig) List() []MAC {
	n := s.Length
	if n < 0 {
		n = 0
	}
	if n > ScanFilterCapacity {
		n = ScanFilterCapacity
	}
	out := make([]MAC, n)
	copy(out, s.MACs[:n])
	return out
}

// SetList replaces the entries. It fails when macs exceeds the capacity.
func (s *ScanFilterConfig) SetList(macs []MAC) error {
	if len(macs) > ScanFilterCapacity {
		return NewValidationError("scan filter list exceeds capacity")
	}
	s.MACs = [ScanFilterCapacity]MAC{}
	copy(s.MACs[:], macs)
	s.Length = len(macs)
	return nil
}

// FWUpdateConfig holds the firmware image location.
type FWUpdateConfig struct {
	URL string
}
