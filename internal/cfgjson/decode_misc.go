package cfgjson

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// lanAuth decodes the LAN access settings. A missing type keeps the previous
// settings as a whole. The legacy branded type is migrated to the default
// type, which always uses the device-derived credentials.
func (d *decoder) lanAuth() {
	p, r := d.p, d.root

	s, ok := p.str(r, "lan_auth_type")
	if !ok {
		p.unchanged("lan_auth_type")
		d.out.LANAuth = d.prev.LANAuth
		return
	}
	kind, known := gwcfg.ParseLANAuthType(s)
	if !known {
		logging.LogUnknownValue("lan_auth_type", s, kind.String())
	}
	if kind == gwcfg.LANAuthBranded {
		logging.Info("Migrating legacy LAN auth type",
			zap.String("from", s),
			zap.String("to", gwcfg.LANAuthDefault.String()))
		kind = gwcfg.LANAuthDefault
	}

	l := gwcfg.LANAuthConfig{Type: kind}
	switch kind {
	case gwcfg.LANAuthDefault:
		l.User = gwcfg.DefaultLANAuthUser
		l.Pass = gwcfg.DefaultLANAuthPassword(d.prev.Device.Params())
	case gwcfg.LANAuthBasic, gwcfg.LANAuthDigest:
		l.User = p.strOr(r, "lan_auth_user", d.def.LANAuth.User, gwcfg.MaxUserLen)
		l.Pass = p.secretOr(r, "lan_auth_pass", d.prev.LANAuth.Pass, gwcfg.MaxPasswordLen)
	}
	if kind.HasAPIKeys() {
		l.APIKey = p.secretOr(r, "lan_auth_api_key", d.prev.LANAuth.APIKey, gwcfg.MaxLANAPIKeyLen)
		l.APIKeyRW = p.secretOr(r, "lan_auth_api_key_rw", d.prev.LANAuth.APIKeyRW, gwcfg.MaxLANAPIKeyLen)
	}
	d.out.LANAuth = l
}

func (d *decoder) autoUpdate() {
	p, r, def := d.p, d.root, d.def.AutoUpdate

	a := gwcfg.AutoUpdateConfig{
		Cycle:           def.Cycle,
		WeekdaysBitmask: uint8(p.intOr(r, "auto_update_weekdays_bitmask", 0, 0x7F, int64(def.WeekdaysBitmask))),
		IntervalFrom:    uint8(p.intOr(r, "auto_update_interval_from", 0, 24, int64(def.IntervalFrom))),
		IntervalTo:      uint8(p.intOr(r, "auto_update_interval_to", 0, 24, int64(def.IntervalTo))),
		TZOffsetHours:   int8(p.intOr(r, "auto_update_tz_offset_hours", -12, 14, int64(def.TZOffsetHours))),
	}
	if s, ok := p.str(r, "auto_update_cycle"); ok {
		cycle, known := gwcfg.ParseAutoUpdateCycle(s)
		if !known {
			logging.LogUnknownValue("auto_update_cycle", s, cycle.String())
		}
		a.Cycle = cycle
	} else {
		p.missing("auto_update_cycle")
	}
	d.out.AutoUpdate = a
}

func (d *decoder) ntp() {
	p, r, def := d.p, d.root, d.def.NTP

	n := gwcfg.NTPConfig{
		Use:     p.boolOr(r, "ntp_use", def.Use),
		UseDHCP: p.boolOr(r, "ntp_use_dhcp", def.UseDHCP),
	}
	for i := range n.Servers {
		n.Servers[i] = p.strOr(r, ntpServerKey(i), def.Servers[i], gwcfg.MaxNTPServerLen)
	}
	d.out.NTP = n
}

// filter decodes the manufacturer filter. company_id is a JSON number or a
// "0x"-prefixed hex string.
func (d *decoder) filter() {
	p, r, def := d.p, d.root, d.def.Filter

	id := def.CompanyID
	v, ok, warned := p.integer(r, "company_id", 0, math.MaxUint16)
	switch {
	case ok:
		id = uint16(v)
	case warned:
	default:
		if s, ok := p.str(r, "company_id"); ok {
			if v, err := parseCompanyID(s); err == nil {
				id = v
			} else {
				logging.LogUnknownValue("company_id", s, strconv.Itoa(int(def.CompanyID)))
			}
		} else {
			p.missing("company_id")
		}
	}

	d.out.Filter = gwcfg.FilterConfig{
		CompanyID:    id,
		UseFiltering: p.boolOr(r, "company_use_filtering", def.UseFiltering),
	}
}

func parseCompanyID(s string) (uint16, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	return uint16(v), err
}

func (d *decoder) scan() {
	p, r, def := d.p, d.root, d.def.Scan

	d.out.Scan = gwcfg.ScanConfig{
		CodedPHY:        p.boolOr(r, "scan_coded_phy", def.CodedPHY),
		OneMbitPHY:      p.boolOr(r, "scan_1mbit_phy", def.OneMbitPHY),
		ExtendedPayload: p.boolOr(r, "scan_extended_payload", def.ExtendedPayload),
		Channel37:       p.boolOr(r, "scan_channel_37", def.Channel37),
		Channel38:       p.boolOr(r, "scan_channel_38", def.Channel38),
		Channel39:       p.boolOr(r, "scan_channel_39", def.Channel39),
	}
}

// scanFilter decodes the MAC list. Malformed entries are skipped and entries
// past the capacity are dropped.
func (d *decoder) scanFilter() {
	p, r, def := d.p, d.root, d.def.ScanFilter

	sf := gwcfg.ScanFilterConfig{
		AllowListed: p.boolOr(r, "scan_filter_allow_listed", def.AllowListed),
	}
	items, ok := p.stringArray(r, "scan_filter_list")
	if !ok {
		p.missing("scan_filter_list")
		_ = sf.SetList(def.List())
		d.out.ScanFilter = sf
		return
	}

	macs := make([]gwcfg.MAC, 0, len(items))
	for _, item := range items {
		mac, err := gwcfg.ParseMAC(item)
		if err != nil {
			logging.Warn("Skipping malformed scan filter entry", zap.String("value", item))
			continue
		}
		if len(macs) == gwcfg.ScanFilterCapacity {
			logging.Warn("Scan filter list exceeds capacity, dropping remaining entries",
				zap.Int("capacity", gwcfg.ScanFilterCapacity))
			break
		}
		macs = append(macs, mac)
	}
	_ = sf.SetList(macs)
	d.out.ScanFilter = sf
}

// stringArray reads an array of strings. Non-string elements are skipped.
func (p *parser) stringArray(obj object, key string) ([]string, bool) {
	raw, ok := obj[key]
	if !ok || p.failed() {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		return nil, false
	}
	if !p.take(key) {
		return nil, false
	}
	out := make([]string, 0, len(elems))
	for _, elem := range elems {
		var s string
		if err := json.Unmarshal(elem, &s); err != nil {
			continue
		}
		if !p.take(key) {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
