package gwclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType is the category of a failed request.
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates the gateway rejected the credentials
	ErrTypeAuth
	// ErrTypeHTTP indicates an unexpected HTTP status
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response
	ErrTypeParse
	// ErrTypeRejected indicates the gateway refused the posted document
	ErrTypeRejected
	// ErrTypeVerify indicates the gateway did not keep what was posted
	ErrTypeVerify
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing listens on the port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeRejected:
		return "Configuration Rejected"
	case ErrTypeVerify:
		return "Verification Failed"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// GatewayError is an error talking to a gateway's configuration endpoint.
type GatewayError struct {
	Type       ErrorType
	Message    string
	StatusCode int   // HTTP status code, when there was a response
	Err        error // Underlying error
	Retryable  bool
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// classifyNetworkError turns a transport error into a GatewayError.
func classifyNetworkError(message string, err error) *GatewayError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	ge := &GatewayError{Type: ErrTypeNetwork, Message: message, Err: err, Retryable: true}

	var dnsErr *net.DNSError
	switch {
	case os.IsTimeout(err):
		ge.Type = ErrTypeTimeout
	case errors.As(err, &dnsErr):
		ge.Type = ErrTypeDNS
		ge.Retryable = false
	case errors.Is(err, syscall.ECONNREFUSED):
		ge.Type = ErrTypeConnectionRefused
	}
	return ge
}

func newAuthError(status int) *GatewayError {
	return &GatewayError{
		Type:       ErrTypeAuth,
		Message:    "authentication failed (check credentials)",
		StatusCode: status,
	}
}

// newStatusError maps an unexpected response. msg is the server's error text,
// if it sent one.
func newStatusError(status int, msg string) *GatewayError {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch {
	case status == http.StatusBadRequest:
		return &GatewayError{Type: ErrTypeRejected, Message: msg, StatusCode: status}
	case status == http.StatusTooManyRequests:
		return &GatewayError{Type: ErrTypeHTTP, Message: msg, StatusCode: status, Retryable: true}
	}
	return &GatewayError{
		Type:       ErrTypeHTTP,
		Message:    msg,
		StatusCode: status,
		Retryable:  status >= 500,
	}
}

func newParseError(message string, err error) *GatewayError {
	return &GatewayError{Type: ErrTypeParse, Message: message, Err: err}
}

func typeOf(err error) (ErrorType, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Type, true
	}
	return 0, false
}

// IsAuthError reports whether err is an authentication failure
func IsAuthError(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeAuth
}

// IsRejected reports whether the gateway refused a posted document
func IsRejected(err error) bool {
	t, ok := typeOf(err)
	return ok && t == ErrTypeRejected
}

// IsNetworkError reports whether err happened below HTTP
func IsNetworkError(err error) bool {
	t, ok := typeOf(err)
	if !ok {
		return false
	}
	switch t {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsRetryable reports whether the request may succeed when repeated
func IsRetryable(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Retryable
	}
	return false
}

// TroubleshootingTips returns advice for an error, one tip per line.
func TroubleshootingTips(err error) []string {
	t, ok := typeOf(err)
	if !ok {
		return nil
	}
	switch t {
	case ErrTypeTimeout:
		return []string{
			"Check that the gateway is powered on",
			"Verify you are on the gateway's network or its setup hotspot",
			"Try increasing --timeout",
		}
	case ErrTypeConnectionRefused:
		return []string{
			"Check the port number (the daemon listens on :8080 by default)",
			"Make sure the daemon is running",
		}
	case ErrTypeDNS:
		return []string{
			"Use the IP address instead of the host name",
			"Run 'blegw-cfg scan' to find the gateway",
		}
	case ErrTypeAuth:
		return []string{
			"Pass --user and --pass, or --token for API key access",
			"The default user is Admin; the default password is derived from the gateway ID",
		}
	case ErrTypeRejected:
		return []string{"Check the fields named in the error and try again"}
	case ErrTypeVerify:
		return []string{"The previous configuration has been restored", "Check the gateway log for details"}
	}
	return []string{"Check your network connection", "Verify the gateway address"}
}

// ShortMessage returns a one-line, user-facing description of err.
func ShortMessage(err error) string {
	var ge *GatewayError
	if !errors.As(err, &ge) {
		return err.Error()
	}
	switch ge.Type {
	case ErrTypeTimeout:
		return "Gateway not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Gateway refused connection"
	case ErrTypeDNS:
		return "Cannot resolve gateway host name"
	case ErrTypeAuth:
		return "Authentication failed - check credentials"
	case ErrTypeHTTP:
		return fmt.Sprintf("Gateway error (HTTP %d)", ge.StatusCode)
	case ErrTypeParse:
		return "Failed to parse gateway response"
	case ErrTypeRejected:
		return "Configuration rejected: " + strings.TrimSpace(ge.Message)
	}
	return ge.Message
}
