package gwcfg

// Section names a top-level part of the configuration record.
type Section string

const (
	SectionWiFi        Section = "wifi"
	SectionEth         Section = "eth"
	SectionRemote      Section = "remote"
	SectionHTTP        Section = "http"
	SectionHTTPStat    Section = "http_stat"
	SectionMQTT        Section = "mqtt"
	SectionLANAuth     Section = "lan_auth"
	SectionAutoUpdate  Section = "auto_update"
	SectionNTP         Section = "ntp"
	SectionFilter      Section = "filter"
	SectionScan        Section = "scan"
	SectionScanFilter  Section = "scan_filter"
	SectionCoordinates Section = "coordinates"
	SectionFWUpdate    Section = "fw_update"
)

// Equal reports whether two records hold the same settings. Device identity
// is not compared.
func Equal(a, b *Config) bool {
	if a == nil || b == nil {
		return a == b
	}
	return len(Diff(a, b)) == 0
}

// Diff lists the sections that differ between a and b, in record order.
func Diff(a, b *Config) []Section {
	var changed []Section
	add := func(s Section, same bool) {
		if !same {
			changed = append(changed, s)
		}
	}
	add(SectionWiFi, a.WiFi == b.WiFi)
	add(SectionEth, a.Eth == b.Eth)
	add(SectionRemote, a.Remote == b.Remote)
	add(SectionHTTP, a.HTTP == b.HTTP)
	add(SectionHTTPStat, a.HTTPStat == b.HTTPStat)
	add(SectionMQTT, a.MQTT == b.MQTT)
	add(SectionLANAuth, a.LANAuth == b.LANAuth)
	add(SectionAutoUpdate, a.AutoUpdate == b.AutoUpdate)
	add(SectionNTP, a.NTP == b.NTP)
	add(SectionFilter, a.Filter == b.Filter)
	add(SectionScan, a.Scan == b.Scan)
	add(SectionScanFilter, scanFilterEqual(a.ScanFilter, b.ScanFilter))
	add(SectionCoordinates, a.Coordinates == b.Coordinates)
	add(SectionFWUpdate, a.FWUpdate == b.FWUpdate)
	return changed
}

func scanFilterEqual(a, b ScanFilterConfig) bool {
	if a.AllowListed != b.AllowListed || a.Length != b.Length {
		return false
	}
	la, lb := a.List(), b.List()
	for i := range la {
		if la[i] != lb[i] {
			return false
		}
	}
	return true
}

// WithoutSecrets returns a copy with every password, token and API key cleared.
func (c *Config) WithoutSecrets() *Config {
	cp := c.Clone()
	cp.WiFi.STA.Password = ""
	cp.WiFi.AP.Password = ""
	cp.Remote.Auth = cp.Remote.Auth.WithSecret("")
	cp.HTTP.Auth = cp.HTTP.Auth.WithSecret("")
	cp.HTTPStat.Pass = ""
	cp.MQTT.Pass = ""
	cp.LANAuth.Pass = ""
	cp.LANAuth.APIKey = ""
	cp.LANAuth.APIKeyRW = ""
	return cp
}
