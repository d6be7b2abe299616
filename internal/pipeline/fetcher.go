package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/ecfr-analyzer/internal/cache"
	"github.com/ppiankov/ecfr-analyzer/internal/model"
	"github.com/ppiankov/ecfr-analyzer/internal/util"
	"github.com/ppiankov/ecfr-analyzer/internal/worker"
)

// fetchSleepFunc waits between retries (injectable for tests). It returns early with ctx's error.
var fetchSleepFunc = sleepContext

const (
	fetchBaseBackoff = 2 * time.Second
	fetchMaxBackoff  = time.Minute
)

// errRobotsDisallowed is returned when robots.txt forbids the versioner path
var errRobotsDisallowed = errors.New("disallowed by robots.txt")

// Fetcher retrieves full title XML from the eCFR versioner API
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	maxRetries int
	limiter    *worker.Limiter
	robots     *util.RobotsChecker // nil when robots.txt is not consulted
	cache      cache.Cache         // nil when caching is disabled
}

// NewFetcher creates a Fetcher from configuration
func NewFetcher(cfg *model.Config) *Fetcher {
	client := util.NewHTTPClient(cfg.ECFR.Timeout, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	f := &Fetcher{
		httpClient: client,
		baseURL:    strings.TrimRight(cfg.ECFR.BaseURL, "/"),
		userAgent:  cfg.ECFR.UserAgent,
		maxBytes:   cfg.ECFR.MaxBodyBytes,
		maxRetries: cfg.ECFR.MaxRetries,
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
	}

	if f.maxRetries < 1 {
		f.maxRetries = 1
	}
	if cfg.ECFR.RespectRobots {
		f.robots = util.NewRobotsChecker(cfg.ECFR.UserAgent, client)
	}
	if cfg.Cache.Enabled {
		f.cache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.MemoryMaxBytes, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
	}

	return f
}

// FetchResult contains a fetched document and response metadata
type FetchResult struct {
	Body         []byte
	StatusCode   int
	ContentType  string
	LastModified string
	FinalURL     string
	FromCache    bool
}

// TitleURL returns the versioner URL of a title's full XML as of date
func (f *Fetcher) TitleURL(date string, titleNumber int) string {
	return fmt.Sprintf("%s/versioner/v1/full/%s/title-%d.xml", f.baseURL, date, titleNumber)
}

// FetchTitle returns the full XML of a title as of date. Every failure is a *model.FetchError.
func (f *Fetcher) FetchTitle(ctx context.Context, date string, titleNumber int) ([]byte, error) {
	rawURL := f.TitleURL(date, titleNumber)

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		fe := &model.FetchError{TitleNumber: titleNumber, Date: date, Err: err}
		var se *statusError
		if errors.As(err, &se) {
			fe.StatusCode = se.code
		}
		return nil, fe
	}

	return result.Body, nil
}

// FetchWithRetry fetches rawURL, consulting the cache first and retrying
// transient failures (429, 5xx, transport errors) with exponential backoff.
// Successful responses are cached.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	key := cache.Key(rawURL)
	if f.cache != nil {
		if body, ok := f.cache.Get(key); ok {
			return &FetchResult{Body: body, StatusCode: http.StatusOK, FinalURL: rawURL, FromCache: true}, nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			if err := fetchSleepFunc(ctx, backoff(attempt, lastErr)); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			if f.cache != nil {
				// A failed cache write only costs a refetch later
				_ = f.cache.Set(key, result.Body, 0)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", f.maxRetries, lastErr)
}

// Fetch performs a single rate-limited GET of rawURL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots.txt: %w", err)
		}
		if !allowed {
			return nil, errRobotsDisallowed
		}
		if err := f.limiter.ApplyCrawlDelay(rawURL, delay); err != nil {
			return nil, fmt.Errorf("apply crawl delay: %w", err)
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{op: "fetch", err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &statusError{
			code:       resp.StatusCode,
			status:     resp.Status,
			retryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	body, err := readLimited(resp.Body, f.maxBytes)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:         body,
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		FinalURL:     resp.Request.URL.String(),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// readLimited reads the whole body, failing rather than truncating when it exceeds max
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, &transportError{op: "read body", err: err}
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, &transportError{op: "read body", err: err}
	}
	if int64(len(body)) > max {
		return nil, fmt.Errorf("read body: exceeds %d bytes", max)
	}
	return body, nil
}

// statusError is a non-2xx upstream response
type statusError struct {
	code       int
	status     string
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return "unexpected status: " + e.status
}

// transportError is a connection-level failure, including a body cut off mid-read
type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

// isRetryableFetchError reports whether a fetch error is transient
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}

	var te *transportError
	return errors.As(err, &te)
}

// backoff doubles per attempt from fetchBaseBackoff, honoring a larger Retry-After
func backoff(attempt int, lastErr error) time.Duration {
	d := fetchBaseBackoff << (attempt - 1)
	if d > fetchMaxBackoff {
		d = fetchMaxBackoff
	}

	var se *statusError
	if errors.As(lastErr, &se) && se.retryAfter > d {
		d = se.retryAfter
		if d > fetchMaxBackoff {
			d = fetchMaxBackoff
		}
	}
	return d
}

// parseRetryAfter understands the delay-seconds form of Retry-After
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
