package bootstrap

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/logging"
)

// DefaultProbeInterval is how often LinkProbe samples the interface.
const DefaultProbeInterval = time.Second

// LinkProbe watches the carrier of a wired interface and posts
// EventEthLinkUp and EventEthLinkDown when it changes.
type LinkProbe struct {
	iface    string
	interval time.Duration
	post     func(Event)
	linkUp   func(name string) (bool, error)
}

// NewLinkProbe creates a probe for iface that reports to post.
func NewLinkProbe(iface string, interval time.Duration, post func(Event)) *LinkProbe {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &LinkProbe{
		iface:    iface,
		interval: interval,
		post:     post,
		linkUp:   interfaceLinkUp,
	}
}

// Run samples the interface until ctx ends. The first sample always
// produces an event.
func (p *LinkProbe) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var (
		known bool
		last  bool
	)
	sample := func() {
		up, err := p.linkUp(p.iface)
		if err != nil {
			logging.Debug("Link probe failed", zap.String("iface", p.iface), zap.Error(err))
			up = false
		}
		if known && up == last {
			return
		}
		known, last = true, up
		if up {
			p.post(Event{Kind: EventEthLinkUp})
		} else {
			p.post(Event{Kind: EventEthLinkDown})
		}
	}

	sample()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sample()
		}
	}
}

func interfaceLinkUp(name string) (bool, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return false, err
	}
	return ifi.Flags&net.FlagUp != 0 && ifi.Flags&net.FlagRunning != 0, nil
}
