package gateway

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/autoupdate"
	"github.com/muurk/blegw/internal/bootstrap"
	"github.com/muurk/blegw/internal/cfgmgr"
	"github.com/muurk/blegw/internal/config"
	"github.com/muurk/blegw/internal/discovery"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/server"
	"github.com/muurk/blegw/internal/storage"
)

// Option customizes an App.
type Option func(*App)

// WithDriver sets the network driver used by connectivity bootstrap.
func WithDriver(d bootstrap.Driver) Option {
	return func(a *App) { a.driver = d }
}

// WithUpdateListener sets the function called when the auto-update window
// opens.
func WithUpdateListener(fn autoupdate.Listener) Option {
	return func(a *App) { a.onUpdate = fn }
}

// App is the running gateway: configuration, persistence, connectivity
// bootstrap and the local configuration endpoint.
type App struct {
	settings *config.Settings
	params   gwcfg.DefaultInitParams

	store   *storage.Store
	persist *Persistence
	mgr     *cfgmgr.Manager
	machine *bootstrap.Machine
	probe   *bootstrap.LinkProbe
	server  *server.Server
	sched   *autoupdate.Scheduler

	driver   bootstrap.Driver
	onUpdate autoupdate.Listener
}

// New opens the store, loads the configuration and builds every component.
// Nothing runs until Run is called.
func New(settings *config.Settings, opts ...Option) (*App, error) {
	a := &App{
		settings: settings,
		driver:   newLogDriver(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.onUpdate == nil {
		a.onUpdate = logUpdateWindow
	}

	local, err := OpenLocal(settings, a.onConfigChanged)
	if err != nil {
		return nil, err
	}
	a.params = local.Params
	a.store = local.Store
	a.persist = local.Persist
	a.mgr = local.Manager

	a.machine = bootstrap.New(a.driver, a.mgr, a.store.ForceHotspotFlag(), bootstrap.Options{
		EthLinkWait:    settings.Network.EthLinkWait,
		HotspotTimeout: settings.Network.HotspotTimeout,
		ShortDelay:     settings.Network.ShortDelay,
	})
	if settings.Network.EthInterface != "" {
		a.probe = bootstrap.NewLinkProbe(settings.Network.EthInterface, bootstrap.DefaultProbeInterval, a.machine.Post)
	}

	a.server, err = server.New(server.Config{
		Listen:    settings.Server.Listen,
		RateLimit: settings.Server.RateLimit,
		RateBurst: settings.Server.RateBurst,
		TLSCert:   settings.Server.TLSCert,
		TLSKey:    settings.Server.TLSKey,
	}, a.mgr,
		server.WithStorageStatus(a.persist.Namespace().Status),
		server.WithNetworkState(a.machine.State),
	)
	if err != nil {
		return nil, err
	}
	a.machine.OnChange(a.server.NotifyNetwork)

	a.sched, err = autoupdate.NewScheduler(settings.AutoUpdate.Schedule, a.autoUpdateConfig, a.onUpdate)
	if err != nil {
		return nil, err
	}

	logging.Info("Gateway initialized",
		zap.String("hostname", a.params.Hostname()),
		zap.String("storage", a.store.Path()),
		zap.Bool("configured", local.Configured),
	)
	return a, nil
}

// Manager returns the configuration manager.
func (a *App) Manager() *cfgmgr.Manager { return a.mgr }

// Machine returns the connectivity state machine.
func (a *App) Machine() *bootstrap.Machine { return a.machine }

// Server returns the configuration endpoint.
func (a *App) Server() *server.Server { return a.server }

// Persistence returns the configuration store.
func (a *App) Persistence() *Persistence { return a.persist }

// Run starts every component and blocks until ctx ends or one of them fails.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}

	run("bootstrap", a.machine.Run)
	if a.probe != nil {
		run("link probe", a.probe.Run)
	}
	run("server", a.server.Start)
	a.sched.Start()

	if a.settings.MDNS.Enabled {
		if adv := a.advertise(); adv != nil {
			defer adv.Shutdown()
		}
	}

	<-ctx.Done()

	select {
	case <-a.sched.Stop().Done():
	case <-time.After(5 * time.Second):
		logging.Warn("Auto-update check still running at shutdown")
	}
	wg.Wait()
	a.mgr.Deinit()
	logging.Info("Gateway stopped")

	mu.Lock()
	defer mu.Unlock()
	return errs
}

func (a *App) advertise() *discovery.Advertisement {
	_, portStr, err := net.SplitHostPort(a.settings.Server.Listen)
	if err != nil {
		logging.Warn("mDNS disabled: cannot parse listen address", zap.Error(err))
		return nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port == 0 {
		logging.Warn("mDNS disabled: no fixed listen port", zap.String("listen", a.settings.Server.Listen))
		return nil
	}

	adv, err := discovery.Advertise(a.params.Hostname(), port, map[string]string{
		"path":   "/ruuvi.json",
		"fw_ver": a.params.FirmwareVersion,
	})
	if err != nil {
		logging.Warn("mDNS advertisement failed", zap.Error(err))
		return nil
	}
	return adv
}

// onConfigChanged runs after the record has been persisted. It asks
// bootstrap to re-decide and pushes the change to websocket clients.
func (a *App) onConfigChanged(cfg *gwcfg.Config) {
	if a.machine != nil {
		a.machine.Post(bootstrap.Event{Kind: bootstrap.EventReevaluate})
	}
	if a.server != nil {
		a.server.NotifyConfigChanged(cfg)
	}
}

func (a *App) autoUpdateConfig() (gwcfg.AutoUpdateConfig, error) {
	var out gwcfg.AutoUpdateConfig
	err := a.mgr.View(func(cfg *gwcfg.Config) { out = cfg.AutoUpdate })
	return out, err
}

func logUpdateWindow(now time.Time, cfg gwcfg.AutoUpdateConfig) {
	logging.Info("Auto-update window open",
		zap.String("cycle", cfg.Cycle.String()),
		zap.Time("at", now),
	)
}
