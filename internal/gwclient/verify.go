package gwclient

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// VerificationOptions configures how an update is verified.
type VerificationOptions struct {
	// MaxRetries is the maximum number of verification attempts
	// Default: 3
	MaxRetries int

	// InitialDelay gives the gateway time to apply the configuration
	// Default: 500ms
	InitialDelay time.Duration

	// RetryDelay is the delay between attempts
	// Default: 1s
	RetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after every attempt, up to MaxRetryDelay
	// Default: true
	UseExponentialBackoff bool

	// MaxRetryDelay caps the delay between attempts
	// Default: 5s
	MaxRetryDelay time.Duration
}

// DefaultVerificationOptions returns the defaults used when opts is nil.
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          500 * time.Millisecond,
		RetryDelay:            1 * time.Second,
		UseExponentialBackoff: true,
		MaxRetryDelay:         5 * time.Second,
	}
}

// VerificationResult is the outcome of VerifyConfiguration.
type VerificationResult struct {
	Success    bool
	Attempts   int
	Actual     Document // Last document read from the gateway
	Mismatches []string
	Error      error
}

// VerifyConfiguration re-reads the gateway's document until every key of
// expected that the gateway reports matches, or the attempts run out.
func (c *Client) VerifyConfiguration(ctx context.Context, expected Document, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}
	result := &VerificationResult{}

	if !sleepCtx(ctx, opts.InitialDelay) {
		result.Error = ctx.Err()
		return result
	}

	delay := opts.RetryDelay
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		result.Attempts = attempt

		actual, err := c.RefreshConfiguration(ctx)
		if err != nil {
			result.Error = err
		} else {
			result.Actual = actual
			result.Mismatches = Mismatches(expected, actual)
			result.Error = nil
			if len(result.Mismatches) == 0 {
				result.Success = true
				return result
			}
		}

		if attempt == opts.MaxRetries {
			break
		}
		if !sleepCtx(ctx, delay) {
			result.Error = ctx.Err()
			return result
		}
		if opts.UseExponentialBackoff {
			delay *= 2
			if delay > opts.MaxRetryDelay {
				delay = opts.MaxRetryDelay
			}
		}
	}

	if result.Error == nil {
		result.Error = &GatewayError{
			Type:    ErrTypeVerify,
			Message: fmt.Sprintf("%d mismatches after %d attempts: %s", len(result.Mismatches), result.Attempts, strings.Join(result.Mismatches, "; ")),
		}
	}
	return result
}

// UpdateAndVerify posts doc and verifies that the gateway kept it.
func (c *Client) UpdateAndVerify(ctx context.Context, doc Document, opts *VerificationOptions) *VerificationResult {
	if _, err := c.UpdateConfiguration(ctx, doc); err != nil {
		return &VerificationResult{Error: err}
	}
	return c.VerifyConfiguration(ctx, doc, opts)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
