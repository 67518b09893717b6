package cfgjson

import (
	"github.com/muurk/blegw/internal/gwcfg"
)

// CertFlag reports whether one certificate file is present in storage.
type CertFlag struct {
	Name    string
	Present bool
}

// StorageStatus is the storage block of a UI document.
type StorageStatus struct {
	Ready bool
	Certs []CertFlag
}

// encodeMode selects which credentials an encoded document carries.
type encodeMode int

const (
	modeSaving encodeMode = iota
	modeUI
)

func (m encodeMode) hideSecrets() bool {
	return m == modeUI
}

// EncodeForSaving encodes cfg with every credential, for persistence.
func (c *Codec) EncodeForSaving(cfg *gwcfg.Config) ([]byte, error) {
	return c.encode(cfg, modeSaving, StorageStatus{})
}

// EncodeForUI encodes cfg with a device info block and without secrets.
// Presence of the LAN API keys is reported as booleans.
func (c *Codec) EncodeForUI(cfg *gwcfg.Config, st StorageStatus) ([]byte, error) {
	return c.encode(cfg, modeUI, st)
}

func (c *Codec) encode(cfg *gwcfg.Config, mode encodeMode, st StorageStatus) ([]byte, error) {
	if cfg == nil {
		return nil, gwcfg.NewValidationError("nil config")
	}
	b := newBuilder(c.alloc)
	root := b.object(nil, "")

	e := encoder{b: b, root: root, hide: mode.hideSecrets()}
	if mode == modeUI {
		e.deviceInfo(cfg.Device, st)
	}
	e.wifi(cfg.WiFi)
	e.eth(cfg.Eth)
	e.remote(cfg.Remote)
	e.http(cfg.HTTP)
	e.httpStat(cfg.HTTPStat)
	e.mqtt(cfg.MQTT)
	e.lanAuth(cfg.LANAuth)
	e.autoUpdate(cfg.AutoUpdate)
	e.ntp(cfg.NTP)
	e.filter(cfg.Filter)
	e.scan(cfg.Scan)
	e.scanFilter(&cfg.ScanFilter)
	b.addString(root, "coordinates", cfg.Coordinates)
	b.addString(root, "fw_update_url", cfg.FWUpdate.URL)

	return b.finish(root)
}

type encoder struct {
	b    *builder
	root *node
	hide bool
}

// secret emits a credential unless the document is for the UI.
func (e *encoder) secret(parent *node, key, val string) {
	if e.hide {
		return
	}
	e.b.addString(parent, key, val)
}

func (e *encoder) deviceInfo(d gwcfg.DeviceInfo, st StorageStatus) {
	e.b.addString(e.root, "fw_ver", d.FirmwareVersion)
	e.b.addString(e.root, "nrf52_fw_ver", d.NRF52FirmwareVersion)
	e.b.addString(e.root, "gw_mac", d.NRF52MAC.String())

	storage := e.b.object(e.root, "storage")
	e.b.addBool(storage, "storage_ready", st.Ready)
	for _, f := range st.Certs {
		e.b.addBool(storage, f.Name, f.Present)
	}
}

func (e *encoder) wifi(w gwcfg.WiFiConfig) {
	sta := e.b.object(e.root, "wifi_sta_config")
	e.b.addString(sta, "ssid", w.STA.SSID)
	e.secret(sta, "password", w.STA.Password)

	ap := e.b.object(e.root, "wifi_ap_config")
	e.secret(ap, "password", w.AP.Password)
	channel := w.AP.Channel
	if channel == 0 {
		channel = gwcfg.DefaultAPChannel
	}
	e.b.addNumber(ap, "channel", int64(channel))
}

func (e *encoder) eth(eth gwcfg.EthConfig) {
	e.b.addBool(e.root, "use_eth", eth.UseEth)
	e.b.addBool(e.root, "eth_dhcp", eth.DHCP)
	e.b.addString(e.root, "eth_static_ip", eth.StaticIP)
	e.b.addString(e.root, "eth_netmask", eth.Netmask)
	e.b.addString(e.root, "eth_gw", eth.Gateway)
	e.b.addString(e.root, "eth_dns1", eth.DNS1)
	e.b.addString(e.root, "eth_dns2", eth.DNS2)
}

func (e *encoder) remote(r gwcfg.RemoteConfig) {
	e.b.addBool(e.root, "remote_cfg_use", r.Use)
	e.b.addString(e.root, "remote_cfg_url", r.URL)
	e.b.addString(e.root, "remote_cfg_auth_type", r.Auth.Type().String())
	switch r.Auth.Type() {
	case gwcfg.AuthBasic:
		user, pass, _ := r.Auth.Basic()
		e.b.addString(e.root, "remote_cfg_auth_basic_user", user)
		e.secret(e.root, "remote_cfg_auth_basic_pass", pass)
	case gwcfg.AuthBearer:
		e.secret(e.root, "remote_cfg_auth_bearer_token", r.Auth.Secret())
	case gwcfg.AuthToken:
		e.secret(e.root, "remote_cfg_auth_token", r.Auth.Secret())
	case gwcfg.AuthAPIKey:
		e.secret(e.root, "remote_cfg_auth_api_key", r.Auth.Secret())
	}
	e.b.addBool(e.root, "remote_cfg_use_ssl_client_cert", r.UseSSLClientCert)
	e.b.addBool(e.root, "remote_cfg_use_ssl_server_cert", r.UseSSLServerCert)
	e.b.addNumber(e.root, "remote_cfg_refresh_interval_minutes", int64(r.RefreshIntervalMinutes))
}

func (e *encoder) http(h gwcfg.HTTPConfig) {
	useRuuvi, useHTTP := h.UseHTTPRuuvi, h.UseHTTP
	if useHTTP && h.ExplicitIsVendorDefault() {
		useRuuvi, useHTTP = true, false
	}
	e.b.addBool(e.root, "use_http_ruuvi", useRuuvi)
	e.b.addBool(e.root, "use_http", useHTTP)
	if !useHTTP {
		return
	}
	e.b.addBool(e.root, "http_use_ssl_client_cert", h.UseSSLClientCert)
	e.b.addBool(e.root, "http_use_ssl_server_cert", h.UseSSLServerCert)
	e.b.addString(e.root, "http_url", h.URL)
	e.b.addString(e.root, "http_data_format", h.DataFormat.String())
	e.b.addString(e.root, "http_auth", h.Auth.Type().String())
	switch h.Auth.Type() {
	case gwcfg.AuthBasic:
		user, pass, _ := h.Auth.Basic()
		e.b.addString(e.root, "http_user", user)
		e.secret(e.root, "http_pass", pass)
	case gwcfg.AuthBearer:
		e.secret(e.root, "http_bearer_token", h.Auth.Secret())
	case gwcfg.AuthToken, gwcfg.AuthAPIKey:
		e.secret(e.root, "http_api_key", h.Auth.Secret())
	}
}

func (e *encoder) httpStat(s gwcfg.HTTPStatConfig) {
	e.b.addBool(e.root, "use_http_stat", s.Use)
	e.b.addString(e.root, "http_stat_url", s.URL)
	e.b.addString(e.root, "http_stat_user", s.User)
	e.secret(e.root, "http_stat_pass", s.Pass)
	e.b.addBool(e.root, "http_stat_use_ssl_client_cert", s.UseSSLClientCert)
	e.b.addBool(e.root, "http_stat_use_ssl_server_cert", s.UseSSLServerCert)
}

func (e *encoder) mqtt(m gwcfg.MQTTConfig) {
	e.b.addBool(e.root, "use_mqtt", m.Use)
	e.b.addBool(e.root, "mqtt_disable_retained_messages", m.DisableRetainedMessages)
	e.b.addString(e.root, "mqtt_transport", m.Transport.String())
	e.b.addString(e.root, "mqtt_server", m.Server)
	e.b.addNumber(e.root, "mqtt_port", int64(m.Port))
	e.b.addNumber(e.root, "mqtt_sending_interval", int64(m.SendingInterval))
	e.b.addString(e.root, "mqtt_prefix", m.Prefix)
	e.b.addString(e.root, "mqtt_client_id", m.ClientID)
	e.b.addString(e.root, "mqtt_user", m.User)
	e.secret(e.root, "mqtt_pass", m.Pass)
	e.b.addBool(e.root, "mqtt_use_ssl_client_cert", m.UseSSLClientCert)
	e.b.addBool(e.root, "mqtt_use_ssl_server_cert", m.UseSSLServerCert)
}

func (e *encoder) lanAuth(l gwcfg.LANAuthConfig) {
	e.b.addString(e.root, "lan_auth_type", l.Type.String())
	e.b.addString(e.root, "lan_auth_user", l.User)
	if l.Type.HasPassword() {
		e.secret(e.root, "lan_auth_pass", l.Pass)
	}
	if !l.Type.HasAPIKeys() {
		return
	}
	if e.hide {
		e.b.addBool(e.root, "lan_auth_api_key_use", l.APIKey != "")
		e.b.addBool(e.root, "lan_auth_api_key_rw_use", l.APIKeyRW != "")
		return
	}
	e.b.addString(e.root, "lan_auth_api_key", l.APIKey)
	e.b.addString(e.root, "lan_auth_api_key_rw", l.APIKeyRW)
}

func (e *encoder) autoUpdate(a gwcfg.AutoUpdateConfig) {
	e.b.addString(e.root, "auto_update_cycle", a.Cycle.String())
	e.b.addNumber(e.root, "auto_update_weekdays_bitmask", int64(a.WeekdaysBitmask))
	e.b.addNumber(e.root, "auto_update_interval_from", int64(a.IntervalFrom))
	e.b.addNumber(e.root, "auto_update_interval_to", int64(a.IntervalTo))
	e.b.addNumber(e.root, "auto_update_tz_offset_hours", int64(a.TZOffsetHours))
}

func (e *encoder) ntp(n gwcfg.NTPConfig) {
	e.b.addBool(e.root, "ntp_use", n.Use)
	e.b.addBool(e.root, "ntp_use_dhcp", n.UseDHCP)
	for i, server := range n.Servers {
		e.b.addString(e.root, ntpServerKey(i), server)
	}
}

func (e *encoder) filter(f gwcfg.FilterConfig) {
	e.b.addNumber(e.root, "company_id", int64(f.CompanyID))
	e.b.addBool(e.root, "company_use_filtering", f.UseFiltering)
}

func (e *encoder) scan(s gwcfg.ScanConfig) {
	e.b.addBool(e.root, "scan_coded_phy", s.CodedPHY)
	e.b.addBool(e.root, "scan_1mbit_phy", s.OneMbitPHY)
	e.b.addBool(e.root, "scan_extended_payload", s.ExtendedPayload)
	e.b.addBool(e.root, "scan_channel_37", s.Channel37)
	e.b.addBool(e.root, "scan_channel_38", s.Channel38)
	e.b.addBool(e.root, "scan_channel_39", s.Channel39)
}

func (e *encoder) scanFilter(s *gwcfg.ScanFilterConfig) {
	e.b.addBool(e.root, "scan_filter_allow_listed", s.AllowListed)
	list := e.b.array(e.root, "scan_filter_list")
	for _, mac := range s.List() {
		e.b.addString(list, "", mac.String())
	}
}
