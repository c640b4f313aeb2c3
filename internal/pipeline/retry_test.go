package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
)

func TestIsRateLimitMessage(t *testing.T) {
	cases := map[string]bool{
		"Rate limit exceeded":                 true,
		"upstream returned 429":               true,
		"Too Many Requests, slow down":        true,
		"plugin request failed with HTTP 500": false,
		"":                                    false,
	}
	for msg, want := range cases {
		assert.Equal(t, want, IsRateLimitMessage(msg), msg)
	}
}

func TestRetryPolicyNext(t *testing.T) {
	p := DefaultRetryPolicy()

	d, ok := p.Next(errs.NewThrottledError("k", 21*time.Second), 0)
	assert.True(t, ok)
	assert.Equal(t, 21*time.Second, d)

	d, ok = p.Next(errs.NewRateLimitedError("rate limit exceeded", 0), 0)
	assert.True(t, ok)
	assert.Equal(t, 65*time.Second, d)

	d, ok = p.Next(errs.NewRateLimitedError("slow down", 5*time.Second), 0)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	d, ok = p.Next(errs.NewTransportError(429, "plugin request failed with HTTP 429 Too Many Requests", nil), 0)
	assert.True(t, ok)
	assert.Equal(t, 65*time.Second, d)

	d, ok = p.Next(errs.NewUpstreamStatusError(503, "plugin request failed with HTTP 503", "Rate limit exceeded"), 0)
	assert.True(t, ok)
	assert.Equal(t, 65*time.Second, d)

	wrapped := fmt.Errorf("refresh: %w", errs.NewRateLimitedError("rate limit", 0))
	_, ok = p.Next(wrapped, 0)
	assert.True(t, ok)
}

func TestRetryPolicyDoesNotRetryOtherFailures(t *testing.T) {
	p := DefaultRetryPolicy()

	for _, err := range []error{
		errs.NewConfigurationError("queryId", "missing"),
		errs.NewDataError("bad query"),
		errs.NewTransportError(500, "plugin request failed with HTTP 500 Internal Server Error", nil),
		errs.NewTransportError(0, `Post "http://gw/plugins/jira/instances/eu-429/query": connection refused`, errors.New("dial")),
		errs.NewUpstreamStatusError(502, "plugin request failed with HTTP 502 Bad Gateway: rate limit", "upstream down"),
		errors.New("boom"),
	} {
		_, ok := p.Next(err, 0)
		assert.False(t, ok, err.Error())
		assert.False(t, IsSilent(err))
	}
}

func TestRetryPolicyMaxAttempts(t *testing.T) {
	p := DefaultRetryPolicy()
	p.MaxAttempts = 2

	_, ok := p.Next(errs.NewRateLimitedError("rate limit", 0), 1)
	assert.True(t, ok)
	_, ok = p.Next(errs.NewRateLimitedError("rate limit", 0), 2)
	assert.False(t, ok)
}
