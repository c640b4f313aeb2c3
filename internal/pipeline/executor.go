package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GregMSThompson/widget-dashboard/internal/errs"
	"github.com/GregMSThompson/widget-dashboard/internal/models"
	"github.com/GregMSThompson/widget-dashboard/pkg/clock"
	"github.com/GregMSThompson/widget-dashboard/pkg/logger"
)

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 10 << 20
	customQueryURI = "query"
)

// Outcome labels reported to a Recorder.
const (
	OutcomeSuccess     = "success"
	OutcomeConfigError = "config_error"
	OutcomeTransport   = "transport_error"
	OutcomeDataError   = "data_error"
	OutcomeRateLimited = "rate_limited"
	OutcomeThrottled   = "throttled"
)

// Doer sends HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies the bearer token for the plugin gateway.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// Recorder receives fetch telemetry. A nil Recorder is ignored.
type Recorder interface {
	ObserveFetch(plugin, outcome string, elapsed time.Duration)
}

type admissionKey struct{}

// WithAdmissionHook returns a context under which Execute calls fn once the
// rate limiter admits the request, before it is sent.
func WithAdmissionHook(ctx context.Context, fn func()) context.Context {
	return context.WithValue(ctx, admissionKey{}, fn)
}

func notifyAdmitted(ctx context.Context) {
	if fn, ok := ctx.Value(admissionKey{}).(func()); ok && fn != nil {
		fn()
	}
}

// Result is a normalized plugin response.
type Result struct {
	Data      any       `json:"data"`
	Raw       any       `json:"-"`
	FetchedAt time.Time `json:"fetchedAt"`
}

type ExecutorConfig struct {
	BaseURL  string
	Client   Doer
	Tokens   TokenSource
	Limiter  *RateLimiter
	Clock    clock.Clock
	Timeout  time.Duration
	Recorder Recorder
}

// Executor turns a widget configuration into a plugin request and normalizes the reply.
type Executor struct {
	baseURL  string
	client   Doer
	tokens   TokenSource
	limiter  *RateLimiter
	clock    clock.Clock
	timeout  time.Duration
	recorder Recorder
}

func NewExecutor(cfg ExecutorConfig) *Executor {
	e := &Executor{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   cfg.Client,
		tokens:   cfg.Tokens,
		limiter:  cfg.Limiter,
		clock:    cfg.Clock,
		timeout:  cfg.Timeout,
		recorder: cfg.Recorder,
	}
	if e.client == nil {
		e.client = http.DefaultClient
	}
	if e.tokens == nil {
		e.tokens = StaticToken("")
	}
	if e.clock == nil {
		e.clock = clock.Real()
	}
	if e.limiter == nil {
		e.limiter = NewRateLimiter(e.clock, DefaultCooldown)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	return e
}

func (e *Executor) Limiter() *RateLimiter { return e.limiter }

type queryRequest struct {
	Query          string                 `json:"query,omitempty"`
	Method         string                 `json:"method,omitempty"`
	Parameters     Params                 `json:"parameters"`
	Filters        []models.Filter        `json:"filters,omitempty"`
	Aggregation    *models.Aggregation    `json:"aggregation,omitempty"`
	GroupBy        *models.GroupBy        `json:"groupBy,omitempty"`
	FieldSelection *models.FieldSelection `json:"fieldSelection,omitempty"`
	Context        Params                 `json:"context,omitempty"`
}

// Validate checks the query invariant: default queries need a queryId and
// custom queries need a non-blank customQuery.
func Validate(cfg models.WidgetConfig) error {
	switch cfg.QueryType {
	case models.QueryTypeDefault, "":
		if strings.TrimSpace(cfg.QueryID) == "" {
			return errs.NewConfigurationError("queryId", "widget is not configured: a default query requires a queryId")
		}
	case models.QueryTypeCustom:
		if strings.TrimSpace(cfg.CustomQuery) == "" {
			return errs.NewConfigurationError("customQuery", "widget is not configured: a custom query requires a query string")
		}
	default:
		return errs.NewConfigurationError("queryType", fmt.Sprintf("widget is not configured: unknown query type %q", cfg.QueryType))
	}
	return nil
}

// Endpoint returns the plugin gateway path for cfg.
func Endpoint(cfg models.WidgetConfig) string {
	base := "/plugins/" + url.PathEscape(cfg.PluginName) + "/instances/" + url.PathEscape(cfg.InstanceID) + "/"
	if cfg.QueryType == models.QueryTypeCustom {
		return base + customQueryURI
	}
	return base + "default-query/" + url.PathEscape(cfg.QueryID)
}

func buildRequest(cfg models.WidgetConfig, vars Params) queryRequest {
	req := queryRequest{
		Parameters:     MergeParameters(cfg.QueryParameters, vars),
		Filters:        cfg.Filters,
		Aggregation:    cfg.Aggregation,
		GroupBy:        cfg.GroupBy,
		FieldSelection: cfg.FieldSelection,
		Context:        vars,
		Method:         cfg.QueryMethod,
	}
	if cfg.QueryType == models.QueryTypeCustom {
		req.Query = cfg.CustomQuery
		if req.Method == "" {
			req.Method = http.MethodGet
		}
	}
	return req
}

// Execute validates cfg, gates it through the rate limiter, performs the
// plugin request and unwraps the response envelope.
//
// Errors: *errs.ConfigurationError, *errs.ThrottledError (not admitted),
// *errs.TransportError, *errs.RateLimitedError and *errs.DataError.
func (e *Executor) Execute(ctx context.Context, cfg models.WidgetConfig, vars Params) (Result, error) {
	log := logger.FromContext(ctx).With("plugin", cfg.PluginName, "instance_id", cfg.InstanceID, "widget", cfg.Name)
	start := e.clock.Now()

	if err := Validate(cfg); err != nil {
		e.observe(cfg.PluginName, OutcomeConfigError, 0)
		return Result{}, err
	}

	key := cfg.RateLimitKey()
	if ok, remaining := e.limiter.Admit(key); !ok {
		e.observe(cfg.PluginName, OutcomeThrottled, 0)
		log.Debug("request deferred by rate limiter", "remaining", remaining)
		return Result{}, errs.NewThrottledError(key, remaining+ThrottleSlack)
	}
	notifyAdmitted(ctx)

	body := buildRequest(cfg, vars)
	if logger.IsDebugEnabled(ctx) {
		log.Debug("sending plugin request", "endpoint", Endpoint(cfg), "parameters", body.Parameters)
	}
	payload, err := e.send(ctx, cfg, body)
	elapsed := e.clock.Now().Sub(start)
	if err != nil {
		e.observe(cfg.PluginName, classify(err), elapsed)
		log.Warn("plugin request failed", "error", err)
		return Result{}, err
	}

	if msg, failed := businessFailure(payload); failed {
		if IsRateLimitMessage(msg) {
			e.observe(cfg.PluginName, OutcomeRateLimited, elapsed)
			log.Info("plugin reported rate limit", "message", msg)
			return Result{}, errs.NewRateLimitedError(msg, 0)
		}
		e.observe(cfg.PluginName, OutcomeDataError, elapsed)
		return Result{}, errs.NewDataError(msg)
	}

	e.observe(cfg.PluginName, OutcomeSuccess, elapsed)
	return Result{Data: Unwrap(payload), Raw: payload, FetchedAt: e.clock.Now()}, nil
}

func (e *Executor) send(ctx context.Context, cfg models.WidgetConfig, body queryRequest) (any, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, errs.NewTransportError(0, "failed to encode plugin request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+Endpoint(cfg), bytes.NewReader(buf))
	if err != nil {
		return nil, errs.NewTransportError(0, "failed to build plugin request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	token, err := e.tokens.Token(ctx)
	if err != nil {
		return nil, errs.NewTransportError(0, "failed to obtain plugin credentials", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.NewTransportError(0, fmt.Sprintf("plugin request timed out after %s", e.timeout), err)
		}
		return nil, errs.NewTransportError(0, "plugin request failed: "+err.Error(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errs.NewTransportError(resp.StatusCode, "failed to read plugin response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("plugin request failed with HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		upstream := upstreamMessage(raw)
		if upstream != "" {
			msg += ": " + upstream
		}
		return nil, errs.NewUpstreamStatusError(resp.StatusCode, msg, upstream)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errs.NewTransportError(resp.StatusCode, "plugin returned a response that is not JSON", err)
	}
	return payload, nil
}

func upstreamMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		if s, ok := body[key].(string); ok {
			return s
		}
	}
	return ""
}

func classify(err error) string {
	if IsUpstreamRateLimit(err) {
		return OutcomeRateLimited
	}
	return OutcomeTransport
}

func (e *Executor) observe(plugin, outcome string, elapsed time.Duration) {
	if e.recorder != nil {
		e.recorder.ObserveFetch(plugin, outcome, elapsed)
	}
}
