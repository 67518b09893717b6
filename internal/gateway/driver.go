package gateway

import (
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// logDriver records interface commands without touching the host network.
// Real link control is supplied through WithDriver.
type logDriver struct {
	log *zap.Logger
}

func newLogDriver() *logDriver {
	return &logDriver{log: logging.Named("netif")}
}

func (d *logDriver) StartEthernet() error {
	d.log.Info("Starting Ethernet")
	return nil
}

func (d *logDriver) StopEthernet() error {
	d.log.Info("Stopping Ethernet")
	return nil
}

func (d *logDriver) StartStation(sta gwcfg.WiFiSTAConfig) error {
	d.log.Info("Connecting to Wi-Fi network",
		zap.String("ssid", sta.SSID),
		logging.Secret("password", sta.Password))
	return nil
}

func (d *logDriver) StopStation() error {
	d.log.Info("Disconnecting from Wi-Fi network")
	return nil
}

func (d *logDriver) StartHotspot(ssid string, ap gwcfg.WiFiAPConfig) error {
	d.log.Info("Starting hotspot",
		zap.String("ssid", ssid),
		zap.Uint8("channel", ap.Channel))
	return nil
}

func (d *logDriver) StopHotspot() error {
	d.log.Info("Stopping hotspot")
	return nil
}
