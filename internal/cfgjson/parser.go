package cfgjson

import (
	"encoding/json"
	"math"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

type object map[string]json.RawMessage

// parser reads typed values out of a decoded document while accounting for
// the nodes it materialises. After the first failed allocation every getter
// reports the key as absent and stops logging.
type parser struct {
	alloc Allocator
	held  int
	err   error

	// prefix qualifies logged keys while a nested object is being read.
	prefix string
}

// within runs fn with logged keys qualified as "<prefix>.<key>". Lookups
// still use the bare key.
func (p *parser) within(prefix string, fn func()) {
	saved := p.prefix
	p.prefix = prefix
	defer func() { p.prefix = saved }()
	fn()
}

// name is the key as it appears in logs and errors.
func (p *parser) name(key string) string {
	if p.prefix == "" {
		return key
	}
	return p.prefix + "." + key
}

func (p *parser) take(key string) bool {
	if p.err != nil {
		return false
	}
	if err := p.alloc.Alloc(); err != nil {
		p.err = gwcfg.NewAllocError(p.name(key), err)
		return false
	}
	p.held++
	return true
}

func (p *parser) release() {
	for ; p.held > 0; p.held-- {
		p.alloc.Free()
	}
}

func (p *parser) failed() bool {
	return p.err != nil
}

func (p *parser) object(obj object, key string) (object, bool) {
	raw, ok := obj[key]
	if !ok || p.failed() {
		return nil, false
	}
	var sub object
	if err := json.Unmarshal(raw, &sub); err != nil || sub == nil {
		return nil, false
	}
	if !p.take(key) {
		return nil, false
	}
	return sub, true
}

func (p *parser) str(obj object, key string) (string, bool) {
	raw, ok := obj[key]
	if !ok || p.failed() {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	if !p.take(key) {
		return "", false
	}
	return s, true
}

func (p *parser) boolean(obj object, key string) (bool, bool) {
	raw, ok := obj[key]
	if !ok || p.failed() {
		return false, false
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	return v, true
}

// integer reads a whole JSON number within [lo, hi]. warned reports that
// the key held a number that was rejected and already logged.
func (p *parser) integer(obj object, key string, lo, hi int64) (v int64, ok, warned bool) {
	raw, found := obj[key]
	if !found || p.failed() {
		return 0, false, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false, false
	}
	if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		logging.Warn("Config value out of range, using default value",
			zap.String("key", p.name(key)),
			zap.String("value", string(raw)))
		return 0, false, true
	}
	return int64(f), true, false
}

func (p *parser) boolOr(obj object, key string, def bool) bool {
	v, ok := p.boolean(obj, key)
	if !ok {
		p.missing(key)
		return def
	}
	return v
}

func (p *parser) strOr(obj object, key, def string, max int) string {
	v, ok := p.str(obj, key)
	if !ok {
		p.missing(key)
		return def
	}
	return truncate(p.name(key), v, max)
}

func (p *parser) intOr(obj object, key string, lo, hi, def int64) int64 {
	v, ok, warned := p.integer(obj, key, lo, hi)
	if !ok {
		if !warned {
			p.missing(key)
		}
		return def
	}
	return v
}

// secretOr reads a credential. A missing credential keeps prev.
func (p *parser) secretOr(obj object, key, prev string, max int) string {
	v, ok := p.str(obj, key)
	if !ok {
		p.unchanged(key)
		return prev
	}
	return truncate(p.name(key), v, max)
}

func (p *parser) missing(key string) {
	if !p.failed() {
		logging.LogKeyDefault(p.name(key))
	}
}

func (p *parser) unchanged(key string) {
	if !p.failed() {
		logging.LogKeyUnchanged(p.name(key))
	}
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(key, s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	logging.Warn("Config value too long, truncating",
		zap.String("key", key),
		zap.Int("max", max))
	return s[:cut]
}

func ntpServerKey(i int) string {
	return "ntp_server" + strconv.Itoa(i+1)
}
