package telegram

import (
	"net"
	"net/http"
	"path"
	"time"

	"github.com/m3rciful/proverbbot/core/telegram/netutil"
)

// HTTPClientOptions tunes BuildHTTPClient. Zero values pick the defaults below.
type HTTPClientOptions struct {
	Timeout      time.Duration
	// Retries is the number of extra attempts; a negative value disables retrying.
	Retries      int
	RetryBackoff time.Duration
}

const (
	defaultClientTimeout = 30 * time.Second
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 2 * time.Second
)

// retryableMethods are the Bot API calls that are safe to repeat. Sends are
// excluded: the server may have delivered the message before the connection
// failed.
var retryableMethods = map[string]struct{}{
	"getUpdates":     {},
	"getMe":          {},
	"getWebhookInfo": {},
}

// BuildHTTPClient returns an HTTP client for Bot API calls that retries
// transient dial and timeout failures of read-only calls. Long polling relies
// on Timeout being larger than the poll timeout.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultClientTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = defaultRetryAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &retryTransport{
			base:       transport,
			maxRetries: opts.Retries,
			backoff:    opts.RetryBackoff,
		},
	}
}

type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func retryable(req *http.Request) bool {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		return true
	}
	_, ok := retryableMethods[path.Base(req.URL.Path)]
	return ok
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !retryable(req) {
		return t.base.RoundTrip(req)
	}
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		r := req
		if attempt > 0 {
			// a consumed body can only be replayed through GetBody
			if req.Body != nil && req.GetBody == nil {
				return nil, lastErr
			}
			r = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				r.Body = body
			}
		}

		resp, err := t.base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == t.maxRetries {
			break
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt+1))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}
