package gateway

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/cfgmgr"
	"github.com/muurk/blegw/internal/config"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/storage"
)

// Local is the configuration stack without networking: the store, the
// persisted record and a manager holding it. The daemon builds on it and the
// offline tools use it directly.
type Local struct {
	Params  gwcfg.DefaultInitParams
	Store   *storage.Store
	Persist *Persistence
	Manager *cfgmgr.Manager

	// Configured is true when a stored record was loaded.
	Configured bool
}

// OpenLocal opens the store named by settings and loads the stored record.
// Every later change is written back to the store and then passed to notify,
// which may be nil.
func OpenLocal(settings *config.Settings, notify cfgmgr.ChangeFunc) (*Local, error) {
	params, err := settings.InitParams()
	if err != nil {
		return nil, err
	}
	path, err := settings.StoragePath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage path: %w", err)
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	ns := store.Namespace(storage.NamespaceGWCfg)
	if err := ns.Init(); err != nil {
		return nil, err
	}

	l := &Local{
		Params:  params,
		Store:   store,
		Persist: NewPersistence(ns, params),
	}
	defaults := l.Persist.Defaults()
	l.Manager = cfgmgr.New(defaults)

	loaded, found, err := l.Persist.Load(defaults)
	if err != nil {
		logging.Warn("Stored configuration unreadable, starting from defaults", zap.Error(err))
	}
	l.Manager.Init(func(cfg *gwcfg.Config) {
		l.persistChange(cfg)
		if notify != nil {
			notify(cfg)
		}
	})
	if found {
		if err := l.Manager.Update(loaded); err != nil {
			return nil, err
		}
	}
	l.Configured = found
	return l, nil
}

// Apply validates cfg and makes it the current configuration. Nil resets to
// defaults.
func (l *Local) Apply(cfg *gwcfg.Config) error {
	if cfg != nil {
		if err := gwcfg.ValidateAll(cfg); err != nil {
			return err
		}
	}
	return l.Manager.Update(cfg)
}

func (l *Local) persistChange(cfg *gwcfg.Config) {
	if cfg == nil {
		if err := l.Persist.Reset(); err != nil {
			logging.Error("Failed to remove stored configuration", zap.Error(err))
		}
		return
	}
	written, err := l.Persist.Save(cfg)
	if err != nil {
		logging.Error("Failed to save configuration", zap.Error(err))
	} else if written {
		logging.Info("Configuration saved")
	}
}

// Close stops the manager.
func (l *Local) Close() {
	l.Manager.Deinit()
}
