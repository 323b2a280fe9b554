package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/scoreline/internal/domain/feed"
	"github.com/riskibarqy/scoreline/internal/platform/logging"
	"github.com/riskibarqy/scoreline/internal/platform/resilience"
)

var apiKeyParamRegex = regexp.MustCompile(`(api_key|apikey|token)=[^&\s"']+`)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
	Breaker    *resilience.CircuitBreaker
}

// Client is the shared JSON fetcher behind every league adapter. It owns
// retries, circuit breaking, and in-flight deduplication; adapters own only
// wire mapping. Every failure carries exactly one feed error marker.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

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
		httpClient.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		maxRetries: maxInt(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    cfg.Breaker,
	}
}

// GetJSON fetches path and decodes the response into target. Concurrent
// calls for the same path and query share one upstream request.
func (c *Client) GetJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return fmt.Errorf("%w: source circuit open", feed.ErrTransient)
		}
	}

	fullURL := c.buildURL(path, query)

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.breaker != nil {
			if feed.Retryable(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("%w: unexpected response payload type %T", feed.ErrMalformed, out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode source payload: %v", feed.ErrMalformed, err)
	}
	return nil
}

func (c *Client) buildURL(path string, query map[string]string) string {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	if c.token != "" {
		values.Set("api_key", c.token)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(c.baseURL)
	if !strings.HasPrefix(path, "/") {
		_ = buf.WriteByte('/')
	}
	_, _ = buf.WriteString(path)
	if encoded := values.Encode(); encoded != "" {
		_ = buf.WriteByte('?')
		_, _ = buf.WriteString(encoded)
	}
	return buf.String()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", feed.ErrMalformed, err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", feed.ErrTransient, c.redact(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()

			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", feed.ErrTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, fmt.Errorf("%w: source status=429", feed.ErrRateLimited)
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: source status=404", feed.ErrNotFound)
			case resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: source status=%d", feed.ErrTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: source status=%d", feed.ErrMalformed, resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", feed.ErrTransient, ctx.Err())
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: source request failed", feed.ErrTransient)
	}
	c.logger.WarnContext(ctx, "source request failed", "url", c.redact(fullURL), "error", lastErr)
	return nil, lastErr
}

func (c *Client) redact(value string) string {
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
