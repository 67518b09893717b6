package cfgmgr

import (
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// ErrNotInitialized is returned when the manager is used outside Init/Deinit.
var ErrNotInitialized = gwcfg.NewNotInitializedError("config manager")

// ChangeFunc is called after every update with the new configuration, or
// with nil when the configuration was reset to defaults. It runs on the
// updating goroutine after the write lock has been released. Callbacks run
// one at a time in the order the updates were applied, so a ChangeFunc must
// not call Update or Rollback itself.
type ChangeFunc func(cfg *gwcfg.Config)

// Manager owns the process-wide configuration behind a reader/writer lock.
type Manager struct {
	mu *rwLock
	// notifyMu is held from the swap until the callback returns. Readers
	// never take it.
	notifyMu sync.Mutex

	cfg      gwcfg.Config
	defaults gwcfg.Config
	empty    bool
	ready    bool
	onChange ChangeFunc
	history  *History
}

// New creates a manager whose reset state is defaults.
func New(defaults *gwcfg.Config) *Manager {
	m := &Manager{mu: newRWLock(), history: NewHistory(DefaultHistorySize)}
	if defaults != nil {
		m.defaults = *defaults
	}
	return m
}

// Init starts the manager with the defaults as the current configuration.
// A nil callback disables change notification.
func (m *Manager) Init(onChange ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cfg = m.defaults
	m.empty = true
	m.ready = true
	m.onChange = onChange
	m.history.Clear()
	logging.Debug("Config manager initialized", zap.Bool("notify", onChange != nil))
}

// Deinit stops the manager. Later calls fail with ErrNotInitialized.
func (m *Manager) Deinit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ready = false
	m.onChange = nil
	m.cfg = gwcfg.Config{}
}

// LockRO acquires the read lock and returns the current configuration
// together with the function that releases it. The pointer must not be used
// or retained after release. When the manager is not initialized the lock is
// not held and cfg is nil.
//
// Read sections may nest, also while an Update is waiting. Calling Update
// while holding the read lock deadlocks.
//
//	cfg, release := m.LockRO()
//	defer release()
func (m *Manager) LockRO() (cfg *gwcfg.Config, release func()) {
	m.mu.RLock()
	if !m.ready {
		m.mu.RUnlock()
		return nil, func() {}
	}
	var once sync.Once
	return &m.cfg, func() { once.Do(m.mu.RUnlock) }
}

// View runs fn with the current configuration under the read lock.
func (m *Manager) View(fn func(cfg *gwcfg.Config)) error {
	cfg, release := m.LockRO()
	defer release()
	if cfg == nil {
		return ErrNotInitialized
	}
	fn(cfg)
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() (*gwcfg.Config, error) {
	var out *gwcfg.Config
	err := m.View(func(cfg *gwcfg.Config) { out = cfg.Clone() })
	return out, err
}

// Update replaces the configuration, or resets it to defaults when cfg is
// nil, and then notifies the change callback. The device info block is never
// taken from cfg.
func (m *Manager) Update(cfg *gwcfg.Config) error {
	return m.update(cfg, "update", true)
}

func (m *Manager) update(cfg *gwcfg.Config, reason string, record bool) error {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return ErrNotInitialized
	}
	prev, prevEmpty := m.cfg, m.empty
	if cfg == nil {
		m.cfg = m.defaults
		m.empty = true
	} else {
		next := *cfg
		next.Device = m.defaults.Device
		m.cfg = next
		m.empty = false
	}
	if record {
		m.history.Push(Snapshot{Config: prev, Empty: prevEmpty, Description: reason})
	}
	notify := m.onChange
	current := m.cfg
	m.mu.Unlock()

	logging.Info("Configuration updated",
		zap.String("reason", reason),
		zap.Bool("reset", cfg == nil),
		zap.Any("sections", gwcfg.Diff(&prev, &current)))

	if notify == nil {
		return nil
	}
	if cfg == nil {
		notify(nil)
	} else {
		notify(&current)
	}
	return nil
}

// Rollback restores the configuration saved before the latest update.
func (m *Manager) Rollback() error {
	snap, ok := m.history.Pop()
	if !ok {
		return gwcfg.NewValidationError("no configuration snapshot to roll back to")
	}
	reason := "rollback: " + snap.Description
	if snap.Empty {
		return m.update(nil, reason, false)
	}
	return m.update(&snap.Config, reason, false)
}

// History returns the retained snapshots, oldest first.
func (m *Manager) History() []Snapshot {
	return m.history.All()
}

// IsEmpty reports whether no configuration has been applied since Init or
// the last reset.
func (m *Manager) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.empty
}

// IsReady reports whether the manager is between Init and Deinit.
func (m *Manager) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// DeviceInfo returns the read-only device identity.
func (m *Manager) DeviceInfo() gwcfg.DeviceInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaults.Device
}

// Defaults returns a copy of the reset state.
func (m *Manager) Defaults() *gwcfg.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def := m.defaults
	return &def
}
