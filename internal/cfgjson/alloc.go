package cfgjson

import (
	"errors"

	"github.com/muurk/blegw/internal/gwcfg"
)

// ErrAllocFailed is returned by allocators that refuse a node.
var ErrAllocFailed = errors.New("cfgjson: allocation failed")

// Allocator accounts for the nodes of a document while it is being built or
// parsed. Every successful Alloc is matched by exactly one Free before the
// encode or decode call returns, whether it succeeds or not.
type Allocator interface {
	Alloc() error
	Free()
}

type heapAllocator struct{}

func (heapAllocator) Alloc() error { return nil }
func (heapAllocator) Free()        {}

// Codec converts between gwcfg.Config and JSON text.
type Codec struct {
	alloc    Allocator
	defaults *gwcfg.Config
}

// Option configures a Codec.
type Option func(*Codec)

// WithAllocator routes node accounting through a.
func WithAllocator(a Allocator) Option {
	return func(c *Codec) {
		if a != nil {
			c.alloc = a
		}
	}
}

// WithDefaults makes Decode fall back to def instead of the compiled
// defaults derived from the previous record's device identity.
func WithDefaults(def *gwcfg.Config) Option {
	return func(c *Codec) {
		c.defaults = def.Clone()
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{alloc: heapAllocator{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var std = New()

// EncodeForSaving encodes cfg with every credential, for persistence.
func EncodeForSaving(cfg *gwcfg.Config) ([]byte, error) {
	return std.EncodeForSaving(cfg)
}

// EncodeForUI encodes cfg for an untrusted local client.
func EncodeForUI(cfg *gwcfg.Config, st StorageStatus) ([]byte, error) {
	return std.EncodeForUI(cfg, st)
}

// Decode parses text on top of prev and returns the resulting record.
func Decode(prev *gwcfg.Config, text []byte) (*gwcfg.Config, error) {
	return std.Decode(prev, text)
}

// DecodeInto parses text on top of *dst. On error *dst is left unchanged.
func DecodeInto(dst *gwcfg.Config, text []byte) error {
	return std.DecodeInto(dst, text)
}
