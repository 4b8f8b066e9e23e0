package fetcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTP fetches pages and images with plain HTTP requests. Transient
// failures (connection errors, 5xx, 429) are retried with backoff.
type HTTP struct {
	client  *resty.Client
	limiter *rate.Limiter
	opts    Options
	logger  *zap.Logger
}

// retryLogger routes retryablehttp's messages to zap.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

// NewHTTP creates an HTTP fetcher. logger may be nil.
func NewHTTP(opts Options, logger *zap.Logger) *HTTP {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = retryLogger{s: logger.Sugar()}
	// Hand the final response back instead of an opaque "giving up" error,
	// so the status code reaches the caller.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))

	limit := rate.Inf
	burst := 0
	if opts.ImageRPS > 0 {
		limit = rate.Limit(opts.ImageRPS)
		burst = max(int(opts.ImageRPS), 1)
	}

	return &HTTP{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		opts:    opts,
		logger:  logger,
	}
}

// Fetch downloads the page at url and decodes it to UTF-8.
func (h *HTTP) Fetch(ctx context.Context, url string) (*Result, error) {
	start := time.Now()

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() >= 400 {
		return nil, statusError(url, resp.StatusCode())
	}

	body, err := readLimited(resp.RawBody(), h.opts.MaxBodyBytes)
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode(), Err: err}
	}

	contentType := resp.Header().Get("Content-Type")
	markup, cs, err := decodeBody(body, contentType)
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode(), Err: err}
	}

	finalURL := url
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}

	h.logger.Debug("fetched page",
		zap.String("url", finalURL),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(body)),
		zap.String("charset", cs),
		zap.Duration("took", time.Since(start)),
	)

	return &Result{
		Markup:      markup,
		URL:         finalURL,
		Status:      resp.StatusCode(),
		ContentType: contentType,
		Charset:     cs,
		Header:      resp.Header(),
		FetchTime:   time.Since(start),
	}, nil
}

// FetchImage downloads image bytes, waiting on the image rate limit first.
func (h *HTTP) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*,*/*;q=0.5").
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() >= 400 {
		return nil, statusError(url, resp.StatusCode())
	}

	data, err := readLimited(resp.RawBody(), h.opts.MaxImageBytes)
	if err != nil {
		return nil, &FetchError{URL: url, Status: resp.StatusCode(), Err: err}
	}
	return data, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
