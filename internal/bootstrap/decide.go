package bootstrap

import "fmt"

// Mode is the active network role of the gateway.
type Mode int

const (
	ModeNone Mode = iota
	ModeEthernet
	ModeWiFiStation
	ModeWiFiHotspot
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "NONE"
	case ModeEthernet:
		return "ETHERNET"
	case ModeWiFiStation:
		return "WIFI_STATION"
	case ModeWiFiHotspot:
		return "WIFI_HOTSPOT"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Inputs are the facts the mode decision is made from.
type Inputs struct {
	ForceHotspot  bool
	ConfigEmpty   bool
	UseEth        bool
	STAConfigured bool
}

// Decision is the outcome of Decide.
type Decision struct {
	Mode Mode
	// ClearForce asks the caller to lower the one-shot force flag.
	ClearForce bool
	// FirstBootAfterErase is set when nothing has been configured yet.
	FirstBootAfterErase bool
	Reason              string
}

// Decide picks the network mode:
//
//  1. a pending force-hotspot request wins and is consumed;
//  2. a stored config that enables Ethernet or has no station selects Ethernet;
//  3. a configured station selects station mode;
//  4. otherwise the hotspot is started for first-time setup.
func Decide(in Inputs) Decision {
	switch {
	case in.ForceHotspot:
		return Decision{Mode: ModeWiFiHotspot, ClearForce: true, Reason: "force hotspot requested"}
	case !in.ConfigEmpty && (in.UseEth || !in.STAConfigured):
		return Decision{Mode: ModeEthernet, Reason: "ethernet configured"}
	case in.STAConfigured && !in.UseEth:
		return Decision{Mode: ModeWiFiStation, Reason: "wifi station configured"}
	default:
		return Decision{Mode: ModeWiFiHotspot, FirstBootAfterErase: true, Reason: "not configured"}
	}
}
