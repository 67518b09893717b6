package cfgjson

import (
	"encoding/json"

	"github.com/muurk/blegw/internal/gwcfg"
)

// Decode parses text on top of prev and returns the resulting record.
//
// Fields missing from text fall back per field: credentials and auth types
// keep their value from prev, everything else takes the compiled default.
// The device info block is always carried over from prev. prev itself is
// never modified.
func (c *Codec) Decode(prev *gwcfg.Config, text []byte) (*gwcfg.Config, error) {
	if prev == nil {
		return nil, gwcfg.NewValidationError("nil previous config")
	}

	p := &parser{alloc: c.alloc}
	defer p.release()

	if !p.take("") {
		return nil, p.err
	}
	var root object
	if err := json.Unmarshal(text, &root); err != nil {
		return nil, gwcfg.NewParseError("invalid JSON", err)
	}
	if root == nil {
		return nil, gwcfg.NewParseError("document is not a JSON object", nil)
	}

	d := decoder{
		p:    p,
		root: root,
		def:  c.defaultsFor(prev),
		prev: prev,
		out:  prev.Clone(),
	}
	d.wifi()
	d.eth()
	d.remote()
	d.http()
	d.httpStat()
	d.mqtt()
	d.lanAuth()
	d.autoUpdate()
	d.ntp()
	d.filter()
	d.scan()
	d.scanFilter()
	d.out.Coordinates = p.strOr(root, "coordinates", d.def.Coordinates, gwcfg.MaxCoordinatesLen)
	d.out.FWUpdate.URL = p.strOr(root, "fw_update_url", d.def.FWUpdate.URL, gwcfg.MaxURLLen)

	if p.err != nil {
		return nil, p.err
	}
	return d.out, nil
}

// DecodeInto parses text on top of *dst. On error *dst is left unchanged.
func (c *Codec) DecodeInto(dst *gwcfg.Config, text []byte) error {
	out, err := c.Decode(dst, text)
	if err != nil {
		return err
	}
	*dst = *out
	return nil
}

func (c *Codec) defaultsFor(prev *gwcfg.Config) *gwcfg.Config {
	if c.defaults == nil {
		return gwcfg.Defaults(prev.Device.Params())
	}
	def := c.defaults.Clone()
	def.Device = prev.Device
	return def
}

type decoder struct {
	p    *parser
	root object
	def  *gwcfg.Config
	prev *gwcfg.Config
	out  *gwcfg.Config
}
