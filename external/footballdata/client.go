package footballdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/football-sync/internal/platform/logging"
	"github.com/riskibarqy/football-sync/internal/platform/resilience"
	"github.com/riskibarqy/football-sync/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL           = "https://api.football-data.org/v4"
	DefaultRequestsPerMinute = 10
	authHeader               = "X-Auth-Token"
	dateLayout               = "2006-01-02"
	maxResponseBytes         = 6 << 20
	defaultTimeout           = 20 * time.Second
)

var (
	errTransient = crerr.New("football-data transient failure")

	// ConfigStd copies decoded strings, so the pooled body buffer can be reused.
	jsonAPI = sonic.ConfigStd
)

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
	Clock             clockwork.Clock
}

// Client reads competitions, teams and matches from the football-data.org v4 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	limiter    *rate.Limiter
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

var _ usecase.FootballDataProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		maxRetries: max(cfg.MaxRetries, 0),
		limiter:    limiter,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker, cfg.Clock),
		logger:     logger,
	}
}

func (c *Client) FetchCompetitions(ctx context.Context) ([]usecase.ExternalCompetition, error) {
	var envelope competitionsEnvelope
	if err := c.doJSON(ctx, "/competitions", nil, &envelope); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalCompetition, 0, len(envelope.Competitions))
	for _, item := range envelope.Competitions {
		out = append(out, mapCompetition(item))
	}
	return out, nil
}

func (c *Client) FetchTeams(ctx context.Context, competitionCode string) ([]usecase.ExternalTeam, error) {
	path, err := competitionPath(competitionCode, "teams")
	if err != nil {
		return nil, err
	}

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalTeam, 0, len(envelope.Teams))
	for _, item := range envelope.Teams {
		out = append(out, mapTeam(item))
	}
	return out, nil
}

func (c *Client) FetchMatches(ctx context.Context, competitionCode string, dateFrom, dateTo time.Time) ([]usecase.ExternalMatch, error) {
	path, err := competitionPath(competitionCode, "matches")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("dateFrom", dateFrom.UTC().Format(dateLayout))
	query.Set("dateTo", dateTo.UTC().Format(dateLayout))

	var envelope matchesEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalMatch, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		out = append(out, mapMatch(item))
	}
	return out, nil
}

func competitionPath(code, resource string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", crerr.Wrapf(usecase.ErrInvalidInput, "competition code is required for %s", resource)
	}
	return "/competitions/" + url.PathEscape(code) + "/" + resource, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	if c.token == "" {
		return crerr.Wrap(usecase.ErrMisconfigured, "football-data api key is not configured")
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "football-data circuit breaker rejected request", "path", path, "state", c.breaker.State())
		return &usecase.FetchFailedError{
			Path: path,
			Err:  crerr.Wrap(usecase.ErrDependencyUnavailable, "football-data circuit open"),
		}
	}

	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.SetAttributes(attribute.String("footballdata.path", path))
	}

	status, err := c.executeRequest(ctx, fullURL, target)
	c.breaker.Record(isCircuitFailure(status, err))
	if err != nil {
		if span.SpanContext().IsValid() {
			span.SetAttributes(attribute.Int("footballdata.status", status))
		}
		c.logger.WarnContext(ctx, "football-data request failed", "path", path, "status", status, "error", err)
		return &usecase.FetchFailedError{Path: path, StatusCode: status, Err: err}
	}
	return nil
}

// executeRequest returns the last HTTP status seen, or zero when no response
// arrived. Only transport failures, 429 and 5xx are retried.
func (c *Client) executeRequest(ctx context.Context, fullURL string, target any) (int, error) {
	var (
		lastStatus int
		lastErr    error
	)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return lastStatus, crerr.Wrap(err, "wait for rate limiter")
			}
		}

		lastStatus, lastErr = c.attempt(ctx, fullURL, target)
		if lastErr == nil {
			return lastStatus, nil
		}
		if !crerr.Is(lastErr, errTransient) || attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastStatus, ctx.Err()
		case <-timer.C:
		}
	}
	return lastStatus, lastErr
}

func (c *Client) attempt(ctx context.Context, fullURL string, target any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, crerr.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(authHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, crerr.Mark(crerr.Wrap(err, "send request"), errTransient)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return resp.StatusCode, crerr.Mark(crerr.Wrap(err, "read response body"), errTransient)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
		if isRetryableStatus(resp.StatusCode) {
			statusErr = crerr.Mark(statusErr, errTransient)
		}
		return resp.StatusCode, statusErr
	}

	if err := jsonAPI.Unmarshal(buf.B, target); err != nil {
		return resp.StatusCode, crerr.Wrap(err, "decode provider payload")
	}
	return resp.StatusCode, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// isCircuitFailure counts outages only. A 403 for a gated competition says
// nothing about provider health.
func isCircuitFailure(status int, err error) bool {
	if err == nil {
		return false
	}
	return status == 0 || isRetryableStatus(status)
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.Join(strings.Fields(string(raw)), " ")
	if len(body) <= limit {
		return body
	}
	return fmt.Sprintf("%s...(%d bytes)", body[:limit], len(raw))
}
