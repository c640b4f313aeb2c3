package pipeline

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
)

const (
	// DefaultRateLimitRetry is the fixed delay after a plugin reports a rate limit.
	DefaultRateLimitRetry = 65 * time.Second
	// ThrottleSlack is added to the remaining cooldown before a deferred retry.
	ThrottleSlack = time.Second
)

var rateLimitSignatures = []string{"rate limit", "429", "too many requests"}

// IsRateLimitMessage matches upstream messages that signal a rate limit.
func IsRateLimitMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, sig := range rateLimitSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}

// RetryPolicy decides whether a failed fetch is retried and after how long.
// Only rate-limit conditions are retried; everything else surfaces to the user.
type RetryPolicy struct {
	// RateLimitDelay applies to plugin-reported rate limits. Throttled
	// fetches wait out the ledger's remaining cooldown instead.
	RateLimitDelay time.Duration
	// MaxAttempts bounds consecutive silent retries; zero means unbounded.
	MaxAttempts int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{RateLimitDelay: DefaultRateLimitRetry}
}

// Next returns the delay before the next attempt. attempt counts the silent
// retries already made in a row.
func (p RetryPolicy) Next(err error, attempt int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		return 0, false
	}

	var throttled *errs.ThrottledError
	if errors.As(err, &throttled) {
		return throttled.RetryAfter, true
	}

	var limited *errs.RateLimitedError
	if errors.As(err, &limited) {
		if limited.RetryAfter > 0 {
			return limited.RetryAfter, true
		}
		return p.RateLimitDelay, true
	}

	if IsUpstreamRateLimit(err) {
		return p.RateLimitDelay, true
	}
	return 0, false
}

// IsUpstreamRateLimit reports a transport error that the gateway answered
// with HTTP 429 or with a rate-limit message in its error body. Local
// failures never match, whatever their text contains.
func IsUpstreamRateLimit(err error) bool {
	var transport *errs.TransportError
	if !errors.As(err, &transport) {
		return false
	}
	return transport.StatusCode == http.StatusTooManyRequests || IsRateLimitMessage(transport.Upstream)
}

// IsSilent reports whether err must stay invisible to the user.
func IsSilent(err error) bool {
	_, ok := DefaultRetryPolicy().Next(err, 0)
	return ok
}
