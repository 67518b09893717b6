package cfgjson

import (
	"math"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// authKeys names the document keys of one credential union.
type authKeys struct {
	kind      string
	basicUser string
	basicPass string
	bearer    string
	token     string
	apiKey    string
}

var (
	remoteAuthKeys = authKeys{
		kind:      "remote_cfg_auth_type",
		basicUser: "remote_cfg_auth_basic_user",
		basicPass: "remote_cfg_auth_basic_pass",
		bearer:    "remote_cfg_auth_bearer_token",
		token:     "remote_cfg_auth_token",
		apiKey:    "remote_cfg_auth_api_key",
	}
	httpAuthKeys = authKeys{
		kind:      "http_auth",
		basicUser: "http_user",
		basicPass: "http_pass",
		bearer:    "http_bearer_token",
		token:     "http_api_key",
		apiKey:    "http_api_key",
	}
)

// auth decodes a credential union. A missing type keeps prev entirely; a
// missing secret keeps prev's secret when prev has the same arm.
func (d *decoder) auth(keys authKeys, prev gwcfg.Auth) gwcfg.Auth {
	p, r := d.p, d.root

	s, ok := p.str(r, keys.kind)
	if !ok {
		p.unchanged(keys.kind)
		return prev
	}
	kind, known := gwcfg.ParseAuthType(s)
	if !known {
		logging.LogUnknownValue(keys.kind, s, kind.String())
	}
	prevSecret := ""
	if prev.Type() == kind {
		prevSecret = prev.Secret()
	}

	switch kind {
	case gwcfg.AuthBasic:
		user := p.strOr(r, keys.basicUser, "", gwcfg.MaxUserLen)
		pass := p.secretOr(r, keys.basicPass, prevSecret, gwcfg.MaxPasswordLen)
		return gwcfg.BasicAuth(user, pass)
	case gwcfg.AuthBearer:
		return gwcfg.BearerAuth(p.secretOr(r, keys.bearer, prevSecret, gwcfg.MaxTokenLen))
	case gwcfg.AuthToken:
		return gwcfg.TokenAuth(p.secretOr(r, keys.token, prevSecret, gwcfg.MaxTokenLen))
	case gwcfg.AuthAPIKey:
		return gwcfg.APIKeyAuth(p.secretOr(r, keys.apiKey, prevSecret, gwcfg.MaxTokenLen))
	}
	return gwcfg.NoAuth()
}

func (d *decoder) remote() {
	p, r, def := d.p, d.root, d.def.Remote

	d.out.Remote = gwcfg.RemoteConfig{
		Use:                    p.boolOr(r, "remote_cfg_use", def.Use),
		URL:                    p.strOr(r, "remote_cfg_url", def.URL, gwcfg.MaxURLLen),
		Auth:                   d.auth(remoteAuthKeys, d.prev.Remote.Auth),
		UseSSLClientCert:       p.boolOr(r, "remote_cfg_use_ssl_client_cert", def.UseSSLClientCert),
		UseSSLServerCert:       p.boolOr(r, "remote_cfg_use_ssl_server_cert", def.UseSSLServerCert),
		RefreshIntervalMinutes: uint16(p.intOr(r, "remote_cfg_refresh_interval_minutes", 0, math.MaxUint16, int64(def.RefreshIntervalMinutes))),
	}
}

// http decodes the HTTP channel. The explicit endpoint fields are read only
// when use_http is set; when it is false they take their defaults and when it
// is absent they are kept from prev along with their credential. An explicit
// endpoint equal to the vendor endpoint is folded into use_http_ruuvi.
func (d *decoder) http() {
	p, r, def := d.p, d.root, d.def.HTTP

	useRuuvi := p.boolOr(r, "use_http_ruuvi", def.UseHTTPRuuvi)
	use, ok := p.boolean(r, "use_http")
	if !ok {
		p.unchanged("use_http")
		h := d.prev.HTTP
		h.UseHTTPRuuvi = useRuuvi
		d.out.HTTP = h
		return
	}

	h := def
	h.UseHTTPRuuvi = useRuuvi
	h.UseHTTP = use
	if !h.UseHTTP {
		d.out.HTTP = h
		return
	}

	h.UseSSLClientCert = p.boolOr(r, "http_use_ssl_client_cert", def.UseSSLClientCert)
	h.UseSSLServerCert = p.boolOr(r, "http_use_ssl_server_cert", def.UseSSLServerCert)
	h.URL = p.strOr(r, "http_url", def.URL, gwcfg.MaxURLLen)
	if s, ok := p.str(r, "http_data_format"); ok {
		format, known := gwcfg.ParseHTTPDataFormat(s)
		if !known {
			logging.LogUnknownValue("http_data_format", s, format.String())
		}
		h.DataFormat = format
	} else {
		p.missing("http_data_format")
	}
	h.Auth = d.auth(httpAuthKeys, d.prev.HTTP.Auth)

	if h.ExplicitIsVendorDefault() {
		logging.Info("Custom HTTP endpoint equals the vendor endpoint, using use_http_ruuvi")
		h.UseHTTPRuuvi = true
		h.UseHTTP = false
	}
	d.out.HTTP = h
}

func (d *decoder) httpStat() {
	p, r, def := d.p, d.root, d.def.HTTPStat

	d.out.HTTPStat = gwcfg.HTTPStatConfig{
		Use:              p.boolOr(r, "use_http_stat", def.Use),
		URL:              p.strOr(r, "http_stat_url", def.URL, gwcfg.MaxURLLen),
		User:             p.strOr(r, "http_stat_user", def.User, gwcfg.MaxUserLen),
		Pass:             p.secretOr(r, "http_stat_pass", d.prev.HTTPStat.Pass, gwcfg.MaxPasswordLen),
		UseSSLClientCert: p.boolOr(r, "http_stat_use_ssl_client_cert", def.UseSSLClientCert),
		UseSSLServerCert: p.boolOr(r, "http_stat_use_ssl_server_cert", def.UseSSLServerCert),
	}
}

func (d *decoder) mqtt() {
	p, r, def := d.p, d.root, d.def.MQTT

	m := gwcfg.MQTTConfig{
		Use:                     p.boolOr(r, "use_mqtt", def.Use),
		DisableRetainedMessages: p.boolOr(r, "mqtt_disable_retained_messages", def.DisableRetainedMessages),
		Transport:               def.Transport,
		Server:                  p.strOr(r, "mqtt_server", def.Server, gwcfg.MaxMQTTServerLen),
		Port:                    uint16(p.intOr(r, "mqtt_port", 0, math.MaxUint16, int64(def.Port))),
		SendingInterval:         uint32(p.intOr(r, "mqtt_sending_interval", 0, math.MaxUint32, int64(def.SendingInterval))),
		Prefix:                  p.strOr(r, "mqtt_prefix", def.Prefix, gwcfg.MaxMQTTPrefixLen),
		ClientID:                p.strOr(r, "mqtt_client_id", def.ClientID, gwcfg.MaxMQTTClientIDLen),
		User:                    p.strOr(r, "mqtt_user", def.User, gwcfg.MaxUserLen),
		Pass:                    p.secretOr(r, "mqtt_pass", d.prev.MQTT.Pass, gwcfg.MaxPasswordLen),
		UseSSLClientCert:        p.boolOr(r, "mqtt_use_ssl_client_cert", def.UseSSLClientCert),
		UseSSLServerCert:        p.boolOr(r, "mqtt_use_ssl_server_cert", def.UseSSLServerCert),
	}
	if s, ok := p.str(r, "mqtt_transport"); ok {
		transport, known := gwcfg.ParseMQTTTransport(s)
		if !known {
			logging.LogUnknownValue("mqtt_transport", s, transport.String())
		}
		m.Transport = transport
	} else {
		p.missing("mqtt_transport")
	}

	if m.Prefix == "" {
		m.Prefix = gwcfg.DefaultMQTTPrefix(d.prev.Device.NRF52MAC)
	}
	if m.ClientID == "" {
		m.ClientID = gwcfg.DefaultMQTTClientID(d.prev.Device.NRF52MAC)
	}
	d.out.MQTT = m
}
