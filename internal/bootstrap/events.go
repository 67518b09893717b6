package bootstrap

import "fmt"

// EventKind identifies a link-state notification from the network driver.
type EventKind int

const (
	EventEthLinkUp EventKind = iota
	EventEthLinkDown
	EventEthConnected
	EventStaConnected
	EventStaDisconnected
	EventAPClientConnected
	EventAPClientDisconnected
	EventAPClientIPAssigned
	// EventReevaluate asks for a fresh decision, e.g. after a config change.
	EventReevaluate

	eventHotspotExpired
	eventEthWaitExpired
)

var eventNames = map[EventKind]string{
	EventEthLinkUp:            "eth_link_up",
	EventEthLinkDown:          "eth_link_down",
	EventEthConnected:         "eth_connected",
	EventStaConnected:         "sta_connected",
	EventStaDisconnected:      "sta_disconnected",
	EventAPClientConnected:    "ap_client_connected",
	EventAPClientDisconnected: "ap_client_disconnected",
	EventAPClientIPAssigned:   "ap_client_ip_assigned",
	EventReevaluate:           "reevaluate",
	eventHotspotExpired:       "hotspot_expired",
	eventEthWaitExpired:       "eth_wait_expired",
}

func (k EventKind) String() string {
	if s, ok := eventNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to a Machine through Post.
type Event struct {
	Kind EventKind

	gen uint64
}

// State is a snapshot of the machine.
type State struct {
	Mode Mode
	// Countdown is set while the hotspot deactivation timer runs.
	Countdown           bool
	EthLink             bool
	APClients           int
	FirstBootAfterErase bool
	Disconnects         uint64
}
