package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/logging"
)

const (
	// ServiceType is the mDNS service type gateways advertise
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is used when an entry carries no port
	DefaultPort = 80
)

// namePattern matches gateway names with or without the mDNS domain
// (e.g., "RuuviGatewayEEFF", "RuuviGatewayEEFF.local.")
var namePattern = regexp.MustCompile(`^(RuuviGateway([0-9A-F]{4}))(\.local\.?)?$`)

// Advertisement is a running mDNS registration.
type Advertisement struct {
	server *zeroconf.Server
	name   string
}

// Advertise registers hostname as an HTTP service on port. meta becomes the
// TXT record. Call Shutdown to withdraw the registration.
func Advertise(hostname string, port int, meta map[string]string) (*Advertisement, error) {
	if !namePattern.MatchString(hostname) {
		return nil, fmt.Errorf("invalid gateway hostname %q", hostname)
	}

	text := make([]string, 0, len(meta))
	for k, v := range meta {
		text = append(text, k+"="+v)
	}
	sort.Strings(text)

	server, err := zeroconf.Register(hostname, ServiceType, ServiceDomain, port, text, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("mDNS advertisement started",
		zap.String("hostname", hostname),
		zap.Int("port", port),
	)
	return &Advertisement{server: server, name: hostname}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertisement) Shutdown() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	logging.Info("mDNS advertisement stopped", zap.String("hostname", a.name))
}

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every gateway that answers before the timeout or ctx ends.
// Results are sorted by name; a gateway answering more than once is
// reported once.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		found = make(map[string]*Device)
	)
	err := s.browse(ctx, func(d *Device) bool {
		mu.Lock()
		defer mu.Unlock()
		if _, seen := found[d.Name]; !seen {
			found[d.Name] = d
			logging.Debug("Gateway discovered", zap.String("name", d.Name), zap.String("ip", d.IP))
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	devices := make([]*Device, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// WaitForDevice waits for the gateway whose name ends in suffix (four hex
// digits, case-insensitive).
func (s *Scanner) WaitForDevice(ctx context.Context, suffix string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	suffix = strings.ToUpper(suffix)
	deviceChan := make(chan *Device, 1)
	err := s.browse(ctx, func(d *Device) bool {
		if d.Suffix != suffix {
			return false
		}
		select {
		case deviceChan <- d:
		default:
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("gateway RuuviGateway%s not found within timeout", suffix)
	}
}

// browse feeds parsed gateway entries to fn until ctx ends or fn returns
// true.
func (s *Scanner) browse(ctx context.Context, fn func(*Device) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		stopped := false
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if stopped {
					continue
				}
				if device := parseServiceEntry(entry); device != nil {
					stopped = fn(device)
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a gateway or has no address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}

	matches := namePattern.FindStringSubmatch(entry.HostName)
	if matches == nil {
		matches = namePattern.FindStringSubmatch(entry.Instance)
	}
	if matches == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	hostname := entry.HostName
	if hostname == "" {
		hostname = matches[1] + "." + ServiceDomain
	}

	return &Device{
		Name:         matches[1],
		Suffix:       matches[2],
		Hostname:     hostname,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// Scan is a convenience function to scan for gateways with a custom timeout
func Scan(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan(ctx)
}
