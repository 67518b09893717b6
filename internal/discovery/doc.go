// Package discovery advertises the gateway over mDNS and finds other
// gateways on the local network.
//
// A gateway registers its hostname (RuuviGateway followed by four upper-case
// hex digits taken from the Wi-Fi MAC) as a "_http._tcp" service. Scanning
// browses the same service type and keeps only entries whose hostname or
// instance name has that shape.
//
// # Usage Example
//
//	adv, err := discovery.Advertise(params.Hostname(), 8080, map[string]string{"fw_ver": "v1.2.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer adv.Shutdown()
//
//	devices, err := discovery.Scan(ctx, 5*time.Second)
//	for _, d := range devices {
//	    fmt.Println(d.Name, d.ConfigURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Gateways must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
