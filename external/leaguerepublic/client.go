package leaguerepublic

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/resilience"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout   = 25 * time.Second
	maxResponseBytes = 6 << 20
	bodyExcerptLimit = 300
)

var errFetchTransient = crerr.New("leaguerepublic transient failure")

// browserHeaders keep the public standings pages from serving the bot a
// challenge page instead of HTML.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "no-cache",
}

type ClientConfig struct {
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches and parses LeagueRepublic standings pages. Concurrent
// fetches of the same URL are collapsed into one request.
type Client struct {
	http           *fasthttp.Client
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		},
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchStandings downloads a standings page and parses its table.
func (c *Client) FetchStandings(ctx context.Context, pageURL string) ([]standings.Row, error) {
	html, err := c.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseStandings(html)
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("%w: standings url is required", usecase.ErrInvalidInput)
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "standings circuit breaker rejected request", "state", c.breaker.State(), "url", pageURL)
			return nil, fmt.Errorf("%w: standings provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err, _ := c.flight.Do(pageURL, func() ([]byte, error) {
		body, reqErr := c.executeRequest(ctx, pageURL)
		if c.circuitEnabled {
			if reqErr != nil {
				if stderrors.Is(reqErr, errFetchTransient) {
					c.breaker.RecordFailure()
				} else {
					c.breaker.RecordSuccess()
				}
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return body, reqErr
	})
	if err != nil {
		c.logger.WarnContext(ctx, "standings page fetch failed", "url", pageURL, "error", err)
		return nil, err
	}

	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(pageURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	for name, value := range browserHeaders {
		req.Header.Set(name, value)
	}

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("%w: %w: fetch %s: %v", usecase.ErrTransport, errFetchTransient, pageURL, err)
	}

	status := resp.StatusCode()
	if status >= fasthttp.StatusBadRequest {
		excerpt := bodyExcerpt(resp.Body())
		if isTransientStatus(status) {
			return nil, fmt.Errorf("%w: %w: status=%d body=%s", usecase.ErrTransport, errFetchTransient, status, excerpt)
		}
		return nil, fmt.Errorf("%w: status=%d body=%s", usecase.ErrTransport, status, excerpt)
	}

	// resp.Body is reused after release.
	body := resp.Body()
	out := make([]byte, len(body))
	copy(out, body)
	return out, nil
}

func isTransientStatus(code int) bool {
	return code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError
}

func bodyExcerpt(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= bodyExcerptLimit {
		return text
	}
	return text[:bodyExcerptLimit] + "..."
}
