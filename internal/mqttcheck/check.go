package mqttcheck

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/eclipse/paho.mqtt.golang/packets"
	"go.uber.org/zap"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// DefaultTimeout bounds a check when the context has no deadline.
const DefaultTimeout = 10 * time.Second

// Status classifies the outcome of a broker check.
type Status int

const (
	StatusOK Status = iota
	StatusDNSFailure
	StatusRefused
	StatusAuthFailed
	StatusTimeout
	StatusError
)

var statusNames = map[Status]string{
	StatusOK:         "ok",
	StatusDNSFailure: "dns_failure",
	StatusRefused:    "refused",
	StatusAuthFailed: "auth_failed",
	StatusTimeout:    "timeout",
	StatusError:      "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of Check.
type Result struct {
	Status   Status        `json:"-"`
	Broker   string        `json:"broker"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"-"`
}

// OK reports whether the broker accepted the connection.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// BrokerURL builds the paho broker address for the record.
func BrokerURL(cfg gwcfg.MQTTConfig) string {
	host := net.JoinHostPort(cfg.Server, strconv.Itoa(int(cfg.Port)))
	url := cfg.Transport.Scheme() + "://" + host
	if cfg.Transport == gwcfg.MQTTTransportWS || cfg.Transport == gwcfg.MQTTTransportWSS {
		url += "/mqtt"
	}
	return url
}

// Check connects to the broker described by cfg, then disconnects. It never
// publishes or subscribes.
func Check(ctx context.Context, cfg gwcfg.MQTTConfig) Result {
	broker := BrokerURL(cfg)
	res := Result{Broker: broker}

	timeout := DefaultTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		res.Status = StatusTimeout
		res.Message = "deadline already passed"
		return res
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.User)
	opts.SetPassword(cfg.Pass)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)
	opts.SetCleanSession(true)
	if cfg.Transport.IsSecure() {
		opts.SetTLSConfig(&tls.Config{ServerName: cfg.Server, MinVersion: tls.VersionTLS12})
	}

	logging.Debug("Checking MQTT broker",
		zap.String("broker", broker),
		zap.String("client_id", cfg.ClientID),
		zap.String("user", cfg.User),
		logging.Secret("pass", cfg.Pass),
	)

	start := time.Now()
	client := mqtt.NewClient(opts)
	token := client.Connect()

	select {
	case <-token.Done():
		res.Duration = time.Since(start)
		if err := token.Error(); err != nil {
			res.Status = Classify(err)
			res.Message = err.Error()
			break
		}
		res.Status = StatusOK
		client.Disconnect(250)
	case <-ctx.Done():
		res.Duration = time.Since(start)
		res.Status = StatusTimeout
		res.Message = ctx.Err().Error()
	}

	logging.Info("MQTT broker check finished",
		zap.String("broker", broker),
		zap.Stringer("status", res.Status),
		zap.Duration("duration", res.Duration),
	)
	return res
}

// Classify maps a connect error to a Status.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}

	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return StatusTimeout
		}
		return StatusDNSFailure
	case errors.Is(err, packets.ErrorRefusedBadUsernameOrPassword),
		errors.Is(err, packets.ErrorRefusedNotAuthorised):
		return StatusAuthFailed
	case errors.Is(err, syscall.ECONNREFUSED):
		return StatusRefused
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return StatusTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusTimeout
	}

	// paho flattens some dial errors into text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such host"):
		return StatusDNSFailure
	case strings.Contains(msg, "connection refused"):
		return StatusRefused
	case strings.Contains(msg, "not authori"), strings.Contains(msg, "bad user name or password"):
		return StatusAuthFailed
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return StatusTimeout
	}
	return StatusError
}
