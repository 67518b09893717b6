package gwcfg

import "fmt"

// HTTPDataFormat selects the payload shape sent by the HTTP egress channel.
type HTTPDataFormat int

const (
	// HTTPDataFormatRaw sends raw advertisements (wire name "ruuvi").
	HTTPDataFormatRaw HTTPDataFormat = iota
	// HTTPDataFormatRawAndDecoded sends raw and decoded measurements.
	HTTPDataFormatRawAndDecoded
	// HTTPDataFormatDecoded sends decoded measurements only.
	HTTPDataFormatDecoded
)

var httpDataFormatNames = map[HTTPDataFormat]string{
	HTTPDataFormatRaw:           "ruuvi",
	HTTPDataFormatRawAndDecoded: "ruuvi_raw_and_decoded",
	HTTPDataFormatDecoded:       "ruuvi_decoded",
}

func (f HTTPDataFormat) String() string {
	if s, ok := httpDataFormatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("HTTPDataFormat(%d)", int(f))
}

// ParseHTTPDataFormat maps wire text to a data format.
func ParseHTTPDataFormat(s string) (HTTPDataFormat, bool) {
	for f, name := range httpDataFormatNames {
		if name == s {
			return f, true
		}
	}
	return HTTPDataFormatRaw, false
}

// MQTTTransport is the MQTT connection transport.
type MQTTTransport int

const (
	MQTTTransportTCP MQTTTransport = iota
	MQTTTransportSSL
	MQTTTransportWS
	MQTTTransportWSS
)

var mqttTransportNames = map[MQTTTransport]string{
	MQTTTransportTCP: "TCP",
	MQTTTransportSSL: "SSL",
	MQTTTransportWS:  "WS",
	MQTTTransportWSS: "WSS",
}

func (t MQTTTransport) String() string {
	if s, ok := mqttTransportNames[t]; ok {
		return s
	}
	return fmt.Sprintf("MQTTTransport(%d)", int(t))
}

// Scheme returns the broker URL scheme for the transport.
func (t MQTTTransport) Scheme() string {
	switch t {
	case MQTTTransportSSL:
		return "ssl"
	case MQTTTransportWS:
		return "ws"
	case MQTTTransportWSS:
		return "wss"
	default:
		return "tcp"
	}
}

// IsSecure reports whether the transport runs over TLS.
func (t MQTTTransport) IsSecure() bool {
	return t == MQTTTransportSSL || t == MQTTTransportWSS
}

// ParseMQTTTransport maps wire text to a transport.
func ParseMQTTTransport(s string) (MQTTTransport, bool) {
	for t, name := range mqttTransportNames {
		if name == s {
			return t, true
		}
	}
	return MQTTTransportTCP, false
}

// LANAuthType selects how the local web UI authenticates clients.
type LANAuthType int

const (
	LANAuthDeny LANAuthType = iota
	LANAuthAllow
	LANAuthBasic
	LANAuthDigest
	// LANAuthDefault authenticates with the device-derived password.
	LANAuthDefault
	// LANAuthBranded is the legacy vendor mode. Decoding never produces it.
	LANAuthBranded
)

var lanAuthTypeNames = map[LANAuthType]string{
	LANAuthDeny:    "lan_auth_deny",
	LANAuthAllow:   "lan_auth_allow",
	LANAuthBasic:   "lan_auth_basic",
	LANAuthDigest:  "lan_auth_digest",
	LANAuthDefault: "lan_auth_default",
	LANAuthBranded: "lan_auth_ruuvi",
}

func (t LANAuthType) String() string {
	if s, ok := lanAuthTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("LANAuthType(%d)", int(t))
}

// HasPassword reports whether the type carries a stored password.
func (t LANAuthType) HasPassword() bool {
	return t == LANAuthBasic || t == LANAuthDigest || t == LANAuthBranded
}

// HasAPIKeys reports whether the type carries API keys.
func (t LANAuthType) HasAPIKeys() bool {
	return t == LANAuthBasic || t == LANAuthDigest || t == LANAuthBranded || t == LANAuthAllow
}

// ParseLANAuthType maps wire text to a LAN auth type.
func ParseLANAuthType(s string) (LANAuthType, bool) {
	for t, name := range lanAuthTypeNames {
		if name == s {
			return t, true
		}
	}
	return LANAuthDefault, false
}

// AutoUpdateCycle is the firmware auto-update channel.
type AutoUpdateCycle int

const (
	AutoUpdateRegular AutoUpdateCycle = iota
	AutoUpdateBeta
	AutoUpdateManual
)

var autoUpdateCycleNames = map[AutoUpdateCycle]string{
	AutoUpdateRegular: "regular",
	AutoUpdateBeta:    "beta",
	AutoUpdateManual:  "manual",
}

func (c AutoUpdateCycle) String() string {
	if s, ok := autoUpdateCycleNames[c]; ok {
		return s
	}
	return fmt.Sprintf("AutoUpdateCycle(%d)", int(c))
}

// ParseAutoUpdateCycle maps wire text to a cycle.
func ParseAutoUpdateCycle(s string) (AutoUpdateCycle, bool) {
	for c, name := range autoUpdateCycleNames {
		if name == s {
			return c, true
		}
	}
	return AutoUpdateRegular, false
}
