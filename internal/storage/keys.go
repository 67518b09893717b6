package storage

import "github.com/muurk/blegw/internal/cfgjson"

// Namespaces.
const (
	NamespaceGWCfg = "gw_cfg"
	NamespaceFlags = "gw_flags"
)

// Keys of the gw_cfg namespace.
const (
	KeyConfig        = "gw_cfg"
	KeyDefaultConfig = "gw_cfg_default"
)

// KeyForceHotspot lives in the flags namespace.
const KeyForceHotspot = "force_hotspot"

// Channel is a TLS-capable egress channel.
type Channel int

const (
	ChannelHTTP Channel = iota
	ChannelHTTPStat
	ChannelMQTT
	ChannelRemote
)

// Channels lists every TLS-capable channel.
var Channels = []Channel{ChannelHTTP, ChannelHTTPStat, ChannelMQTT, ChannelRemote}

func (c Channel) prefix() string {
	switch c {
	case ChannelHTTPStat:
		return "stat"
	case ChannelMQTT:
		return "mqtt"
	case ChannelRemote:
		return "rcfg"
	default:
		return "http"
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelHTTPStat:
		return "http_stat"
	case ChannelMQTT:
		return "mqtt"
	case ChannelRemote:
		return "remote"
	default:
		return "http"
	}
}

// CertKind is one of the three TLS files a channel may use.
type CertKind int

const (
	ClientCert CertKind = iota
	ClientKey
	ServerCert
)

var certKinds = []CertKind{ClientCert, ClientKey, ServerCert}

func (k CertKind) suffix() string {
	switch k {
	case ClientKey:
		return "_cli_key"
	case ServerCert:
		return "_srv_cert"
	default:
		return "_cli_cert"
	}
}

// CertKey returns the storage key of a channel's TLS file.
func CertKey(ch Channel, kind CertKind) string {
	return ch.prefix() + kind.suffix()
}

// CertKeys returns every certificate key in a fixed order.
func CertKeys() []string {
	keys := make([]string, 0, len(Channels)*len(certKinds))
	for _, kind := range certKinds {
		for _, ch := range Channels {
			keys = append(keys, CertKey(ch, kind))
		}
	}
	return keys
}

// IsCertKey reports whether key names a certificate file.
func IsCertKey(key string) bool {
	for _, k := range CertKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Status reports readiness and certificate presence for the UI document.
func (n *Namespace) Status() cfgjson.StorageStatus {
	st := cfgjson.StorageStatus{Ready: n.Ready()}
	for _, key := range CertKeys() {
		st.Certs = append(st.Certs, cfgjson.CertFlag{Name: key, Present: st.Ready && n.Check(key)})
	}
	return st
}

// Flag is a persisted one-shot boolean.
type Flag struct {
	ns  *Namespace
	key string
}

// NewFlag returns a flag stored under key in ns.
func NewFlag(ns *Namespace, key string) *Flag {
	return &Flag{ns: ns, key: key}
}

// ForceHotspotFlag returns the flag set by the reset button.
func (s *Store) ForceHotspotFlag() *Flag {
	return NewFlag(s.Namespace(NamespaceFlags), KeyForceHotspot)
}

// Get reports whether the flag is set. Storage errors read as unset.
func (f *Flag) Get() bool {
	v, err := f.ns.Read(f.key)
	if err != nil {
		return false
	}
	return len(v) == 1 && v[0] == 1
}

// Set raises the flag.
func (f *Flag) Set() error {
	return f.ns.Write(f.key, []byte{1})
}

// Clear lowers the flag.
func (f *Flag) Clear() error {
	return f.ns.Delete(f.key)
}
