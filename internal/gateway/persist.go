package gateway

import (
	"bytes"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/cfgjson"
	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
	"github.com/muurk/blegw/internal/storage"
)

// Persistence stores the gateway record in the gw_cfg namespace using the
// saving encoding.
type Persistence struct {
	ns     *storage.Namespace
	params gwcfg.DefaultInitParams

	mu    sync.Mutex
	codec *cfgjson.Codec
	last  []byte
}

// NewPersistence returns a Persistence for ns. Defaults derive from params
// and the installed default profile, if any.
func NewPersistence(ns *storage.Namespace, params gwcfg.DefaultInitParams) *Persistence {
	p := &Persistence{ns: ns, params: params}
	p.codec = cfgjson.New(cfgjson.WithDefaults(p.Defaults()))
	return p
}

// Namespace returns the underlying store namespace.
func (p *Persistence) Namespace() *storage.Namespace {
	return p.ns
}

// Codec returns the codec whose missing-key defaults are Defaults().
func (p *Persistence) Codec() *cfgjson.Codec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.codec
}

// Defaults returns the compiled defaults with the default profile decoded
// over them. An unreadable profile is logged and ignored.
func (p *Persistence) Defaults() *gwcfg.Config {
	base := gwcfg.Defaults(p.params)

	raw, err := p.ns.Read(storage.KeyDefaultConfig)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.Warn("Failed to read default profile", zap.Error(err))
		}
		return base
	}

	cfg, err := cfgjson.Decode(base, raw)
	if err != nil {
		logging.Warn("Default profile is invalid, using compiled defaults", zap.Error(err))
		return base
	}
	logging.Info("Default profile applied", zap.Int("bytes", len(raw)))
	return cfg
}

// Load reads the stored record and decodes it over defaults. found is false
// when nothing is stored; in that case, and on error, defaults is returned.
func (p *Persistence) Load(defaults *gwcfg.Config) (cfg *gwcfg.Config, found bool, err error) {
	raw, err := p.ns.Read(storage.KeyConfig)
	if errors.Is(err, storage.ErrNotFound) {
		return defaults, false, nil
	}
	if err != nil {
		return defaults, false, err
	}

	cfg, err = p.Codec().Decode(defaults, raw)
	if err != nil {
		return defaults, false, err
	}

	p.mu.Lock()
	p.last = raw
	p.mu.Unlock()
	return cfg, true, nil
}

// Save writes cfg unless the encoded document equals the last one loaded or
// saved. It reports whether a write happened.
func (p *Persistence) Save(cfg *gwcfg.Config) (bool, error) {
	data, err := p.Codec().EncodeForSaving(cfg)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last != nil && bytes.Equal(data, p.last) {
		logging.Debug("Configuration unchanged, skipping write")
		return false, nil
	}
	if err := p.ns.Write(storage.KeyConfig, data); err != nil {
		return false, err
	}
	p.last = data
	return true, nil
}

// Reset removes the stored record so the next boot starts from defaults.
func (p *Persistence) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ns.Delete(storage.KeyConfig); err != nil {
		return err
	}
	p.last = nil
	return nil
}

// SetDefaultProfile installs data as the default profile after checking
// that it decodes.
func (p *Persistence) SetDefaultProfile(data []byte) error {
	if _, err := cfgjson.Decode(gwcfg.Defaults(p.params), data); err != nil {
		return err
	}
	if err := p.ns.Write(storage.KeyDefaultConfig, data); err != nil {
		return err
	}
	p.refreshCodec()
	return nil
}

// FactoryReset erases the namespace but keeps the default profile.
func (p *Persistence) FactoryReset() error {
	if err := p.ns.DeinitEraseReinit(); err != nil {
		return err
	}
	p.mu.Lock()
	p.last = nil
	p.mu.Unlock()
	p.refreshCodec()
	return nil
}

func (p *Persistence) refreshCodec() {
	codec := cfgjson.New(cfgjson.WithDefaults(p.Defaults()))
	p.mu.Lock()
	p.codec = codec
	p.mu.Unlock()
}
