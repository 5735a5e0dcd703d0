// Package http is the transport layer: every network fetch made by lodestone goes
// through the Client defined here.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/lodestone/internal/logger"
	"github.com/glorpus-work/lodestone/pkg/errutils"
	"github.com/glorpus-work/lodestone/pkg/fsutil"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout    = 60 * time.Second
	DefaultRetryCount = 4
	DefaultUserAgent  = "lodestone/dev"
)

// Options configures an HTTPClient. Zero values fall back to the defaults above;
// a negative RetryCount disables retries.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// HTTPClient is the resty-backed Client implementation.
type HTTPClient struct {
	client *resty.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client that retries transient failures.
func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	switch {
	case opts.RetryCount < 0:
		opts.RetryCount = 0
	case opts.RetryCount == 0:
		opts.RetryCount = DefaultRetryCount
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.RetryMaxWait <= 0 {
		opts.RetryMaxWait = 8 * time.Second
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetLogger(logger.RestyAdapter{}).
		AddRetryCondition(isTransient).
		AddRetryHook(func(resp *resty.Response, err error) {
			if err != nil {
				logger.Debug("retrying request", logger.Fields{"error": err.Error()})
				return
			}
			logger.Debug("retrying request", logger.Fields{"url": resp.Request.URL, "status": resp.StatusCode()})
		})

	return &HTTPClient{client: client}
}

// isTransient decides whether a failed attempt is worth repeating. Client errors
// such as 404 are final.
func isTransient(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func (hc *HTTPClient) get(ctx context.Context, url string) (*resty.Response, error) {
	resp, err := hc.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &errutils.TransportError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &errutils.TransportError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp, nil
}

// FetchBytes downloads url into memory.
func (hc *HTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := hc.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// FetchString downloads url and returns the body as text.
func (hc *HTTPClient) FetchString(ctx context.Context, url string) (string, error) {
	body, err := hc.FetchBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchJSON downloads url and decodes it into v.
func (hc *HTTPClient) FetchJSON(ctx context.Context, url string, v any) error {
	body, err := hc.FetchBytes(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &errutils.ParseError{Source: url, Err: err}
	}
	return nil
}

// FetchToFile streams url to a temporary file beside filePath and renames it into
// place once the transfer succeeded.
func (hc *HTTPClient) FetchToFile(ctx context.Context, url string, filePath string) error {
	if err := fsutil.EnsureFileDir(filePath); err != nil {
		return errutils.FS("mkdir", filepath.Dir(filePath), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.part")
	if err != nil {
		return errutils.FS("create", filePath, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() { _ = os.Remove(tmpPath) }()

	resp, err := hc.client.R().SetContext(ctx).SetOutput(tmpPath).Get(url)
	if err != nil {
		return &errutils.TransportError{URL: url, Err: err}
	}
	if !resp.IsSuccess() {
		return &errutils.TransportError{URL: url, StatusCode: resp.StatusCode()}
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return errutils.FS("rename", filePath, err)
	}
	return nil
}
