package mqttcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/eclipse/paho.mqtt.golang/packets"

	"github.com/muurk/blegw/internal/gwcfg"
)

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		transport gwcfg.MQTTTransport
		want      string
	}{
		{gwcfg.MQTTTransportTCP, "tcp://broker.local:1883"},
		{gwcfg.MQTTTransportSSL, "ssl://broker.local:1883"},
		{gwcfg.MQTTTransportWS, "ws://broker.local:1883/mqtt"},
		{gwcfg.MQTTTransportWSS, "wss://broker.local:1883/mqtt"},
	}

	for _, tt := range tests {
		t.Run(tt.transport.String(), func(t *testing.T) {
			cfg := gwcfg.MQTTConfig{Transport: tt.transport, Server: "broker.local", Port: 1883}
			if got := BrokerURL(cfg); got != tt.want {
				t.Errorf("BrokerURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"nil", nil, StatusOK},
		{"dns", &net.DNSError{Err: "no such host", Name: "x.invalid", IsNotFound: true}, StatusDNSFailure},
		{"dns timeout", &net.DNSError{Err: "i/o timeout", Name: "x", IsTimeout: true}, StatusTimeout},
		{"refused errno", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), StatusRefused},
		{"bad credentials", packets.ErrorRefusedBadUsernameOrPassword, StatusAuthFailed},
		{"not authorised", packets.ErrorRefusedNotAuthorised, StatusAuthFailed},
		{"deadline", context.DeadlineExceeded, StatusTimeout},
		{"flattened refused", errors.New("network Error : dial tcp 127.0.0.1:1: connect: connection refused"), StatusRefused},
		{"flattened dns", errors.New("dial tcp: lookup broker.invalid: no such host"), StatusDNSFailure},
		{"other", errors.New("boom"), StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// fakeBroker answers the first CONNECT on each connection with a CONNACK
// carrying returnCode.
func fakeBroker(t *testing.T, returnCode byte) (host string, port uint16) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				buf := make([]byte, 512)
				if _, err := c.Read(buf); err != nil {
					return
				}
				_, _ = c.Write([]byte{0x20, 0x02, 0x00, returnCode})
				_, _ = io.Copy(io.Discard, c)
			}(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", uint16(addr.Port)
}

func TestCheck_FakeBroker(t *testing.T) {
	tests := []struct {
		name string
		code byte
		want Status
	}{
		{"accepted", 0x00, StatusOK},
		{"bad credentials", 0x04, StatusAuthFailed},
		{"not authorised", 0x05, StatusAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port := fakeBroker(t, tt.code)
			cfg := gwcfg.MQTTConfig{
				Transport: gwcfg.MQTTTransportTCP,
				Server:    host,
				Port:      port,
				ClientID:  "check-test",
				User:      "user",
				Pass:      "secret",
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			res := Check(ctx, cfg)
			if res.Status != tt.want {
				t.Errorf("Check() status = %v (%s), want %v", res.Status, res.Message, tt.want)
			}
			if res.OK() != (tt.want == StatusOK) {
				t.Errorf("OK() = %v, want %v", res.OK(), tt.want == StatusOK)
			}
		})
	}
}

func TestCheck_Refused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	port, _ := strconv.Atoi(portStr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res := Check(ctx, gwcfg.MQTTConfig{Server: "127.0.0.1", Port: uint16(port), ClientID: "x"})
	if res.Status != StatusRefused {
		t.Errorf("Check() status = %v (%s), want refused", res.Status, res.Message)
	}
	if res.Broker != "tcp://127.0.0.1:"+portStr {
		t.Errorf("Broker = %q", res.Broker)
	}
}

func TestCheck_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	res := Check(ctx, gwcfg.MQTTConfig{Server: "127.0.0.1", Port: 1883})
	if res.Status != StatusTimeout {
		t.Errorf("Check() status = %v, want timeout", res.Status)
	}
}
