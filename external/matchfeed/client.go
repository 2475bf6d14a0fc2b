package matchfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchbet/internal/domain/livematch"
	"github.com/riskibarqy/matchbet/internal/platform/cache"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/platform/resilience"
	"github.com/riskibarqy/matchbet/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultBaseURL      = "https://api.football-data.org/v4"
	defaultRetryBackoff = time.Second
	authHeader          = "X-Auth-Token"
	rateLimitKey        = "matchfeed"
	maxBodyBytes        = 4 << 20
)

var errFeedTransient = crerr.New("match feed transient failure")

// RateLimiter throttles outgoing requests. Wait blocks until a request may be sent.
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	RateLimiter    RateLimiter
	// Cache holds raw response bodies. Nil disables response caching.
	Cache *cache.Store[[]byte]
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	limiter      RateLimiter
	cache        *cache.Store[[]byte]
	flight       resilience.SingleFlight[[]byte]
	now          func() time.Time
}

var _ livematch.Provider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("match feed circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      breaker,
		limiter:      cfg.RateLimiter,
		cache:        cfg.Cache,
		now:          time.Now,
	}
}

// FetchLiveMatches returns matches in play or at half time, ordered by kickoff.
func (c *Client) FetchLiveMatches(ctx context.Context) ([]livematch.Match, error) {
	statuses := []livematch.Status{livematch.StatusInPlay, livematch.StatusPaused}

	p := pool.NewWithResults[[]livematch.Match]().WithContext(ctx).WithMaxGoroutines(len(statuses))
	for _, status := range statuses {
		status := status
		p.Go(func(ctx context.Context) ([]livematch.Match, error) {
			var env matchesEnvelope
			if err := c.doJSON(ctx, "/matches", url.Values{"status": {string(status)}}, &env); err != nil {
				return nil, fmt.Errorf("fetch %s matches: %w", status, err)
			}
			return env.toDomain(), nil
		})
	}
	groups, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make([]livematch.Match, 0)
	for _, group := range groups {
		out = append(out, group...)
	}
	sortByKickoff(out)
	return out, nil
}

// FetchUpcomingMatches returns scheduled matches kicking off within the next days.
func (c *Client) FetchUpcomingMatches(ctx context.Context, days int) ([]livematch.Match, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	today := c.now().UTC()
	query := url.Values{
		"status":   {string(livematch.StatusScheduled) + "," + string(livematch.StatusTimed)},
		"dateFrom": {today.Format(time.DateOnly)},
		"dateTo":   {today.AddDate(0, 0, days).Format(time.DateOnly)},
	}

	var env matchesEnvelope
	if err := c.doJSON(ctx, "/matches", query, &env); err != nil {
		return nil, fmt.Errorf("fetch upcoming matches days=%d: %w", days, err)
	}
	out := env.toDomain()
	sortByKickoff(out)
	return out, nil
}

func (c *Client) FetchMatchDetails(ctx context.Context, matchID string) (livematch.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return livematch.Match{}, fmt.Errorf("match id is required")
	}

	var item matchItem
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID), nil, &item); err != nil {
		return livematch.Match{}, fmt.Errorf("fetch match match_id=%s: %w", matchID, err)
	}
	return item.toDomain(), nil
}

// FetchMatchEvents returns the match events in feed order. Events without a player are dropped.
func (c *Client) FetchMatchEvents(ctx context.Context, matchID string) ([]livematch.RawEvent, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("match id is required")
	}

	var env eventsEnvelope
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/events", nil, &env); err != nil {
		return nil, fmt.Errorf("fetch events match_id=%s: %w", matchID, err)
	}

	out := make([]livematch.RawEvent, 0, len(env.Events))
	for _, item := range env.Events {
		if item.Player.ID <= 0 {
			continue
		}
		out = append(out, livematch.RawEvent{
			ExternalID: item.externalID(),
			Type:       livematch.RawEventType(strings.ToUpper(strings.TrimSpace(item.Type))),
			PlayerID:   strconv.FormatInt(item.Player.ID, 10),
			Minute:     item.Minute,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	if c.cache != nil {
		if raw, ok := c.cache.Get(ctx, fullURL); ok {
			return decode(raw, target)
		}
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "match feed circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: match feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && isCircuitFailure(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	if err := decode(raw, target); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(ctx, fullURL, raw)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, rateLimitKey); err != nil {
				return nil, fmt.Errorf("wait for rate limit: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set(authHeader, c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errFeedTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errFeedTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFeedTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "match feed request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func decode(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func sortByKickoff(items []livematch.Match) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Kickoff.Equal(items[j].Kickoff) {
			return items[i].ID < items[j].ID
		}
		return items[i].Kickoff.Before(items[j].Kickoff)
	})
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

// redactAPIURL strips credentials a caller may have placed in the base URL.
func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.User != nil {
		parsed.User = url.User("REDACTED")
	}
	query := parsed.Query()
	for _, key := range []string{"token", "api_token", "auth"} {
		if query.Has(key) {
			query.Set(key, "REDACTED")
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
