package bootstrap

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// Default timings.
const (
	DefaultEthLinkWait    = 10 * time.Second
	DefaultHotspotTimeout = 60 * time.Second
	DefaultShortDelay     = 5 * time.Second

	eventQueueSize = 64
)

// Driver controls the network interfaces. Calls are made from the machine's
// goroutine only.
type Driver interface {
	StartEthernet() error
	StopEthernet() error
	StartStation(sta gwcfg.WiFiSTAConfig) error
	StopStation() error
	StartHotspot(ssid string, ap gwcfg.WiFiAPConfig) error
	StopHotspot() error
}

// ConfigSource gives read access to the running configuration.
type ConfigSource interface {
	View(fn func(cfg *gwcfg.Config)) error
	IsEmpty() bool
}

// ForceFlag is the persisted one-shot force-hotspot request.
type ForceFlag interface {
	Get() bool
	Clear() error
}

// Options tunes the machine timings.
type Options struct {
	// EthLinkWait bounds how long Ethernet may go without a link before the
	// hotspot is started instead.
	EthLinkWait time.Duration
	// HotspotTimeout is how long an idle hotspot stays up.
	HotspotTimeout time.Duration
	// ShortDelay replaces HotspotTimeout once a client has left a hotspot on
	// a configured gateway.
	ShortDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.EthLinkWait <= 0 {
		o.EthLinkWait = DefaultEthLinkWait
	}
	if o.HotspotTimeout <= 0 {
		o.HotspotTimeout = DefaultHotspotTimeout
	}
	if o.ShortDelay <= 0 {
		o.ShortDelay = DefaultShortDelay
	}
	return o
}

// Machine decides and drives the network mode. Events are queued by Post and
// handled one at a time by Run.
type Machine struct {
	drv   Driver
	cfg   ConfigSource
	force ForceFlag
	opts  Options

	events   chan Event
	onChange func(State)

	hotspotTimer *restartTimer
	ethWaitTimer *restartTimer

	// Owned by the Run goroutine.
	ethRunning bool
	staRunning bool
	apRunning  bool

	mu    sync.Mutex
	state State
}

// New creates a machine. force may be nil when no flag store exists.
func New(drv Driver, cfg ConfigSource, force ForceFlag, opts Options) *Machine {
	m := &Machine{
		drv:    drv,
		cfg:    cfg,
		force:  force,
		opts:   opts.withDefaults(),
		events: make(chan Event, eventQueueSize),
	}
	m.hotspotTimer = newRestartTimer(eventHotspotExpired, m.Post)
	m.ethWaitTimer = newRestartTimer(eventEthWaitExpired, m.Post)
	return m
}

// OnChange registers the listener called after every state change. It must
// be set before Run and must not block.
func (m *Machine) OnChange(fn func(State)) {
	m.onChange = fn
}

// Post queues an event without blocking. Events are dropped when the queue
// is full.
func (m *Machine) Post(ev Event) {
	select {
	case m.events <- ev:
	default:
		logging.Warn("Bootstrap event queue full, dropping event", zap.Stringer("event", ev.Kind))
	}
}

// State returns a snapshot of the machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	return m.State().Mode
}

// Disconnects returns how many link losses have been seen.
func (m *Machine) Disconnects() uint64 {
	return m.State().Disconnects
}

// FirstBootAfterErase reports whether the gateway started unconfigured.
func (m *Machine) FirstBootAfterErase() bool {
	return m.State().FirstBootAfterErase
}

// Run makes the boot decision and then handles events until ctx ends.
func (m *Machine) Run(ctx context.Context) error {
	m.evaluate("boot")
	for {
		select {
		case <-ctx.Done():
			m.hotspotTimer.Stop()
			m.ethWaitTimer.Stop()
			return nil
		case ev := <-m.events:
			m.handle(ev)
		}
	}
}

func (m *Machine) update(fn func(s *State)) State {
	m.mu.Lock()
	fn(&m.state)
	s := m.state
	m.mu.Unlock()
	return s
}

func (m *Machine) notify(s State) {
	if m.onChange != nil {
		m.onChange(s)
	}
}

func (m *Machine) inputs() Inputs {
	in := Inputs{ConfigEmpty: m.cfg.IsEmpty()}
	if m.force != nil {
		in.ForceHotspot = m.force.Get()
	}
	err := m.cfg.View(func(cfg *gwcfg.Config) {
		in.UseEth = cfg.Eth.UseEth
		in.STAConfigured = cfg.WiFi.STA.Configured()
	})
	if err != nil {
		logging.Warn("Config not available for mode decision", zap.Error(err))
		in.ConfigEmpty = true
	}
	return in
}

func (m *Machine) evaluate(reason string) {
	d := Decide(m.inputs())
	if d.ClearForce {
		if err := m.force.Clear(); err != nil {
			logging.Error("Failed to clear force hotspot flag", zap.Error(err))
		}
	}
	m.update(func(s *State) { s.FirstBootAfterErase = d.FirstBootAfterErase })
	logging.Debug("Network mode decided",
		zap.Stringer("mode", d.Mode),
		zap.String("trigger", reason),
		zap.String("reason", d.Reason))

	switch d.Mode {
	case ModeEthernet:
		m.enterEthernet(d.Reason)
	case ModeWiFiStation:
		m.enterStation(d.Reason)
	default:
		m.enterHotspot(d.Reason, !d.FirstBootAfterErase)
	}
}

func (m *Machine) setMode(to Mode, reason string) {
	var from Mode
	s := m.update(func(s *State) {
		from = s.Mode
		s.Mode = to
		s.Countdown = m.hotspotTimer.Active()
	})
	if from != to {
		logging.LogModeChange(from.String(), to.String(), reason)
	}
	m.notify(s)
}

func (m *Machine) enterEthernet(reason string) {
	m.stopCountdown()
	m.stopHotspot()
	m.stopStation()
	m.startEthernet()
	if !m.State().EthLink {
		m.ethWaitTimer.Start(m.opts.EthLinkWait)
	}
	m.setMode(ModeEthernet, reason)
}

func (m *Machine) enterStation(reason string) {
	m.stopCountdown()
	m.ethWaitTimer.Stop()
	m.stopHotspot()
	m.stopEthernet()

	var sta gwcfg.WiFiSTAConfig
	_ = m.cfg.View(func(cfg *gwcfg.Config) { sta = cfg.WiFi.STA })
	if !m.staRunning {
		if err := m.drv.StartStation(sta); err != nil {
			logging.Error("Failed to start wifi station", zap.String("ssid", sta.SSID), zap.Error(err))
		} else {
			m.staRunning = true
		}
	}
	m.setMode(ModeWiFiStation, reason)
}

// enterHotspot starts the hotspot. Ethernet keeps running so that a cable
// insertion is still noticed. With countdown set, an idle hotspot is torn
// down after HotspotTimeout.
func (m *Machine) enterHotspot(reason string, countdown bool) {
	m.ethWaitTimer.Stop()
	m.stopStation()

	var (
		ssid string
		ap   gwcfg.WiFiAPConfig
	)
	_ = m.cfg.View(func(cfg *gwcfg.Config) {
		ssid = cfg.Device.Hostname
		ap = cfg.WiFi.AP
	})
	if !m.apRunning {
		if err := m.drv.StartHotspot(ssid, ap); err != nil {
			logging.Error("Failed to start wifi hotspot", zap.String("ssid", ssid), zap.Error(err))
		} else {
			m.apRunning = true
		}
	}
	if countdown && m.State().APClients == 0 {
		m.hotspotTimer.Start(m.opts.HotspotTimeout)
	}
	m.setMode(ModeWiFiHotspot, reason)
}

func (m *Machine) handle(ev Event) {
	mode := m.Mode()

	switch ev.Kind {
	case EventEthLinkUp, EventEthConnected:
		m.update(func(s *State) { s.EthLink = true })
		switch mode {
		case ModeEthernet:
			m.ethWaitTimer.Stop()
		case ModeWiFiHotspot:
			m.enterEthernet("ethernet cable connected")
		}

	case EventEthLinkDown:
		s := m.update(func(s *State) {
			s.EthLink = false
			s.Disconnects++
		})
		logging.Info("Ethernet link lost", zap.Uint64("disconnects", s.Disconnects))
		m.notify(s)

	case EventStaConnected:
		logging.Info("WiFi station connected")

	case EventStaDisconnected:
		s := m.update(func(s *State) { s.Disconnects++ })
		logging.Info("WiFi station disconnected", zap.Uint64("disconnects", s.Disconnects))
		m.notify(s)

	case EventAPClientConnected:
		m.update(func(s *State) { s.APClients++ })
		m.stopCountdown()
		if mode == ModeWiFiHotspot && m.ethRunning {
			m.stopEthernet()
		}
		m.notify(m.State())

	case EventAPClientIPAssigned:
		m.stopCountdown()

	case EventAPClientDisconnected:
		s := m.update(func(s *State) {
			if s.APClients > 0 {
				s.APClients--
			}
		})
		if mode == ModeWiFiHotspot && s.APClients == 0 && !s.FirstBootAfterErase {
			delay := m.opts.HotspotTimeout
			if !m.cfg.IsEmpty() {
				delay = m.opts.ShortDelay
			}
			m.hotspotTimer.Start(delay)
			m.update(func(s *State) { s.Countdown = true })
		}
		m.notify(m.State())

	case EventReevaluate:
		if mode == ModeWiFiHotspot && m.State().APClients > 0 {
			logging.Debug("Hotspot client attached, deferring mode change")
			return
		}
		m.evaluate("config changed")

	case eventHotspotExpired:
		if !m.hotspotTimer.Fired(ev.gen) {
			return
		}
		m.update(func(s *State) { s.Countdown = false })
		logging.Info("Hotspot idle timeout")
		m.stopHotspot()
		m.evaluate("hotspot timeout")

	case eventEthWaitExpired:
		if !m.ethWaitTimer.Fired(ev.gen) || mode != ModeEthernet || m.State().EthLink {
			return
		}
		m.enterHotspot("no ethernet link", false)
	}
}

func (m *Machine) stopCountdown() {
	m.hotspotTimer.Stop()
	m.update(func(s *State) { s.Countdown = false })
}

func (m *Machine) startEthernet() {
	if m.ethRunning {
		return
	}
	if err := m.drv.StartEthernet(); err != nil {
		logging.Error("Failed to start ethernet", zap.Error(err))
		return
	}
	m.ethRunning = true
}

func (m *Machine) stopEthernet() {
	if !m.ethRunning {
		return
	}
	if err := m.drv.StopEthernet(); err != nil {
		logging.Error("Failed to stop ethernet", zap.Error(err))
	}
	m.ethRunning = false
}

func (m *Machine) stopStation() {
	if !m.staRunning {
		return
	}
	if err := m.drv.StopStation(); err != nil {
		logging.Error("Failed to stop wifi station", zap.Error(err))
	}
	m.staRunning = false
}

func (m *Machine) stopHotspot() {
	if !m.apRunning {
		return
	}
	if err := m.drv.StopHotspot(); err != nil {
		logging.Error("Failed to stop wifi hotspot", zap.Error(err))
	}
	m.apRunning = false
}
