package cfgjson

import "github.com/muurk/blegw/internal/gwcfg"

func (d *decoder) wifi() {
	p := d.p

	sta, ok := p.object(d.root, "wifi_sta_config")
	if !ok {
		sta = object{}
	}
	p.within("wifi_sta_config", func() {
		d.out.WiFi.STA.SSID = p.strOr(sta, "ssid", d.def.WiFi.STA.SSID, gwcfg.MaxSSIDLen)
		d.out.WiFi.STA.Password = p.secretOr(sta, "password", d.prev.WiFi.STA.Password, gwcfg.MaxWiFiPasswordLen)
	})

	ap, ok := p.object(d.root, "wifi_ap_config")
	if !ok {
		ap = object{}
	}
	var channel int64
	p.within("wifi_ap_config", func() {
		d.out.WiFi.AP.Password = p.secretOr(ap, "password", d.prev.WiFi.AP.Password, gwcfg.MaxWiFiPasswordLen)
		channel = p.intOr(ap, "channel", 0, 13, int64(d.def.WiFi.AP.Channel))
	})
	if channel == 0 {
		channel = gwcfg.DefaultAPChannel
	}
	d.out.WiFi.AP.Channel = uint8(channel)
}

func (d *decoder) eth() {
	p, r, def := d.p, d.root, d.def.Eth

	d.out.Eth = gwcfg.EthConfig{
		UseEth:   p.boolOr(r, "use_eth", def.UseEth),
		DHCP:     p.boolOr(r, "eth_dhcp", def.DHCP),
		StaticIP: p.strOr(r, "eth_static_ip", def.StaticIP, gwcfg.MaxIPAddrLen),
		Netmask:  p.strOr(r, "eth_netmask", def.Netmask, gwcfg.MaxIPAddrLen),
		Gateway:  p.strOr(r, "eth_gw", def.Gateway, gwcfg.MaxIPAddrLen),
		DNS1:     p.strOr(r, "eth_dns1", def.DNS1, gwcfg.MaxIPAddrLen),
		DNS2:     p.strOr(r, "eth_dns2", def.DNS2, gwcfg.MaxIPAddrLen),
	}
}
