package gwcfg

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.uber.org/multierr"
)

// ValidateLength checks a bounded string field.
func ValidateLength(field, value string, max int) error {
	if len(value) > max {
		return NewValidationError(fmt.Sprintf("%s too long (max %d chars): %d chars", field, max, len(value)))
	}
	return nil
}

// ValidateURL checks an optional http(s) URL. Empty is accepted.
func ValidateURL(field, value string) error {
	if value == "" {
		return nil
	}
	if err := ValidateLength(field, value, MaxURLLen); err != nil {
		return err
	}
	u, err := url.Parse(value)
	if err != nil || u.Host == "" {
		return NewValidationError(fmt.Sprintf("%s is not a valid URL: %q", field, value))
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	default:
		return NewValidationError(fmt.Sprintf("%s must use http or https, got %q", field, u.Scheme))
	}
}

// ValidateIPv4 checks an optional dotted-quad address. Empty is accepted.
func ValidateIPv4(field, value string) error {
	if value == "" {
		return nil
	}
	ip := net.ParseIP(value)
	if ip == nil || ip.To4() == nil || strings.Contains(value, ":") {
		return NewValidationError(fmt.Sprintf("%s is not an IPv4 address: %q", field, value))
	}
	return nil
}

// ValidateWiFi validates the station and hotspot settings.
func ValidateWiFi(w WiFiConfig) []error {
	var errs []error
	if err := ValidateLength("wifi_sta_config.ssid", w.STA.SSID, MaxSSIDLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("wifi_sta_config.password", w.STA.Password, MaxWiFiPasswordLen); err != nil {
		errs = append(errs, err)
	}
	if w.AP.Password != "" && len(w.AP.Password) < 8 {
		errs = append(errs, NewValidationError("wifi_ap_config.password must be empty or at least 8 chars"))
	}
	if err := ValidateLength("wifi_ap_config.password", w.AP.Password, MaxWiFiPasswordLen); err != nil {
		errs = append(errs, err)
	}
	if w.AP.Channel > 13 {
		errs = append(errs, NewValidationError(fmt.Sprintf("wifi_ap_config.channel must be 0-13, got %d", w.AP.Channel)))
	}
	return errs
}

// ValidateEth validates the static addressing fields when DHCP is off.
func ValidateEth(e EthConfig) []error {
	var errs []error
	if e.DHCP {
		return nil
	}
	fields := []struct{ name, value string }{
		{"eth_static_ip", e.StaticIP},
		{"eth_netmask", e.Netmask},
		{"eth_gw", e.Gateway},
		{"eth_dns1", e.DNS1},
		{"eth_dns2", e.DNS2},
	}
	for _, f := range fields {
		if err := ValidateIPv4(f.name, f.value); err != nil {
			errs = append(errs, err)
		}
	}
	if e.UseEth && e.StaticIP == "" {
		errs = append(errs, NewValidationError("eth_static_ip is required when DHCP is disabled"))
	}
	return errs
}

// ValidateAuth validates the active arm of a credential union.
func ValidateAuth(prefix string, a Auth) []error {
	var errs []error
	if user, pass, ok := a.Basic(); ok {
		if err := ValidateLength(prefix+" user", user, MaxUserLen); err != nil {
			errs = append(errs, err)
		}
		if err := ValidateLength(prefix+" password", pass, MaxPasswordLen); err != nil {
			errs = append(errs, err)
		}
		return errs
	}
	if err := ValidateLength(prefix+" token", a.Secret(), MaxTokenLen); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateMQTT validates broker settings.
func ValidateMQTT(m MQTTConfig) []error {
	var errs []error
	if m.Use && m.Server == "" {
		errs = append(errs, NewValidationError("mqtt_server is required when MQTT is enabled"))
	}
	if m.Use && m.Port == 0 {
		errs = append(errs, NewValidationError("mqtt_port is required when MQTT is enabled"))
	}
	if err := ValidateLength("mqtt_server", m.Server, MaxMQTTServerLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("mqtt_prefix", m.Prefix, MaxMQTTPrefixLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("mqtt_client_id", m.ClientID, MaxMQTTClientIDLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("mqtt_user", m.User, MaxUserLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("mqtt_pass", m.Pass, MaxPasswordLen); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateLANAuth validates the local UI credentials.
func ValidateLANAuth(l LANAuthConfig) []error {
	var errs []error
	if l.Type.HasPassword() && l.User == "" {
		errs = append(errs, NewValidationError(fmt.Sprintf("lan_auth_user is required for %s", l.Type)))
	}
	if err := ValidateLength("lan_auth_user", l.User, MaxUserLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("lan_auth_api_key", l.APIKey, MaxLANAPIKeyLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateLength("lan_auth_api_key_rw", l.APIKeyRW, MaxLANAPIKeyLen); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateAutoUpdate validates the update window.
// Weekday bitmask is 7 bits; hours are 0-24 with from <= to.
func ValidateAutoUpdate(a AutoUpdateConfig) []error {
	var errs []error
	if a.WeekdaysBitmask > 0x7F {
		errs = append(errs, NewValidationError(fmt.Sprintf("auto_update_weekdays_bitmask must be 0-127, got %d", a.WeekdaysBitmask)))
	}
	if a.IntervalFrom > 24 || a.IntervalTo > 24 {
		errs = append(errs, NewValidationError("auto_update interval hours must be 0-24"))
	}
	if a.IntervalFrom > a.IntervalTo {
		errs = append(errs, NewValidationError(fmt.Sprintf("auto_update_interval_from (%d) is after auto_update_interval_to (%d)", a.IntervalFrom, a.IntervalTo)))
	}
	if a.TZOffsetHours < -12 || a.TZOffsetHours > 14 {
		errs = append(errs, NewValidationError(fmt.Sprintf("auto_update_tz_offset_hours must be -12..14, got %d", a.TZOffsetHours)))
	}
	return errs
}

// ValidateNTP validates the server names.
func ValidateNTP(n NTPConfig) []error {
	var errs []error
	for i, s := range n.Servers {
		if err := ValidateLength(fmt.Sprintf("ntp_server%d", i+1), s, MaxNTPServerLen); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Validate checks the whole record and returns every problem found.
// It does not modify c.
func Validate(c *Config) []error {
	var errs []error
	errs = append(errs, ValidateWiFi(c.WiFi)...)
	errs = append(errs, ValidateEth(c.Eth)...)
	if err := ValidateURL("remote_cfg_url", c.Remote.URL); err != nil {
		errs = append(errs, err)
	}
	if c.Remote.Use && c.Remote.URL == "" {
		errs = append(errs, NewValidationError("remote_cfg_url is required when remote config is enabled"))
	}
	errs = append(errs, ValidateAuth("remote_cfg_auth", c.Remote.Auth)...)
	if err := ValidateURL("http_url", c.HTTP.URL); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, ValidateAuth("http_auth", c.HTTP.Auth)...)
	if err := ValidateURL("http_stat_url", c.HTTPStat.URL); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, ValidateMQTT(c.MQTT)...)
	errs = append(errs, ValidateLANAuth(c.LANAuth)...)
	errs = append(errs, ValidateAutoUpdate(c.AutoUpdate)...)
	errs = append(errs, ValidateNTP(c.NTP)...)
	if c.ScanFilter.Length < 0 || c.ScanFilter.Length > ScanFilterCapacity {
		errs = append(errs, NewValidationError(fmt.Sprintf("scan_filter_list length %d out of range", c.ScanFilter.Length)))
	}
	if err := ValidateLength("coordinates", c.Coordinates, MaxCoordinatesLen); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateURL("fw_update_url", c.FWUpdate.URL); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateAll is Validate folded into a single error, nil when valid.
func ValidateAll(c *Config) error {
	return multierr.Combine(Validate(c)...)
}
