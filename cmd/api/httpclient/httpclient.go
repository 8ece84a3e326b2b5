package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"time"

	"car-passion/cmd/api/trace"
	"car-passion/logger"

	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetryDelay = time.Second

	contentTypeJSON = "application/json"
	maxBodyLog      = 1024
)

// Config holds the shared settings of a dealership API client.
type Config struct {
	Timeout time.Duration
	// RetryDelay is the pause before the single retry of an unreachable call.
	RetryDelay time.Duration
	// Jar carries dealership session cookies. A fresh jar is created when nil.
	Jar http.CookieJar
	// Transport is wrapped by the logging round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// loggingRoundTripper logs every outbound call and stamps X-Request-Id / X-Span-Id.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	query := ""
	if req.URL != nil {
		query = req.URL.RawQuery
	}
	var bodySnippet string
	if req.Body != nil && strings.HasPrefix(req.Header.Get("Content-Type"), contentTypeJSON) {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			if len(bodyBytes) > maxBodyLog {
				bodySnippet = string(bodyBytes[:maxBodyLog])
			} else {
				bodySnippet = string(bodyBytes)
			}
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"url":        req.URL.String(),
		"query":      query,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" && !strings.Contains(req.URL.Path, "/auth/") {
		fields["body"] = bodySnippet
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}
	fields["status"] = resp.StatusCode
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

// NewJar returns a cookie jar scoped by the public suffix list.
func NewJar() http.CookieJar {
	// cookiejar.New never fails with non-nil options.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return jar
}

// New builds an http.Client with logging, timeout and a cookie jar.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	jar := cfg.Jar
	if jar == nil {
		jar = NewJar()
	}
	return &http.Client{
		Timeout:   timeout,
		Jar:       jar,
		Transport: &loggingRoundTripper{inner: transport},
	}
}

// BaseClient is the single egress point to the dealership API. Apart from
// the cookie jar inside HTTPClient it holds no session state.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
	RetryDelay time.Duration
}

func NewBaseClient(baseURL string, cfg Config) *BaseClient {
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &BaseClient{
		HTTPClient: New(cfg),
		BaseURL:    baseURL,
		RetryDelay: delay,
	}
}

// NewRequest joins relPath onto BaseURL. Query parameters must go through
// query; a "?" in relPath is rejected because path.Join would mangle it.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain query string (use query parameter instead): %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		base.Path = path.Join(base.Path, relPath)
	}
	if len(query) > 0 {
		base.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, base.String(), body)
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("httpclient: decode response: %w", err)
	}
	return nil
}

type requestOptions struct {
	header http.Header
}

// RequestOption customises a single call.
type RequestOption func(*requestOptions)

// WithHeader sets a header on the call, replacing any default of the same name.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

// Request sends one call to the API. body may be nil, []byte, an io.Reader
// (sent as-is) or any value, which is JSON encoded. Content-Type defaults
// to application/json.
//
// A call that gets no response at all is retried once after RetryDelay with
// the same method, URL, headers and body. Timeouts and non-2xx answers are
// returned immediately as *Error. Caller cancellation returns ctx.Err().
func (c *BaseClient) Request(ctx context.Context, method, relPath string, query url.Values, body any, opts ...RequestOption) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	o := requestOptions{header: http.Header{}}
	o.header.Set("Content-Type", contentTypeJSON)
	o.header.Set("Accept", contentTypeJSON)
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := c.NewRequest(ctx, method, relPath, query, reader)
		if err != nil {
			return nil, err
		}
		for k, vs := range o.header {
			req.Header[k] = append([]string(nil), vs...)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			herr := classify(req, err)
			if herr.Kind == KindNetworkUnreachable && attempt == 0 {
				logger.WarnWithFields("httpclient network unreachable, retrying", logger.Fields{
					"method":     method,
					"url":        req.URL.String(),
					"retry_in":   c.RetryDelay.String(),
					"request_id": trace.RequestIDFromContext(ctx),
				})
				if err := wait(ctx, c.RetryDelay); err != nil {
					return nil, err
				}
				continue
			}
			return nil, herr
		}
		return readResponse(ctx, req, resp)
	}
}

func readResponse(ctx context.Context, req *http.Request, resp *http.Response) (*Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, classify(req, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:       KindServer,
			Method:     req.Method,
			URL:        req.URL.Path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
		}
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func classify(req *http.Request, err error) *Error {
	kind := KindNetworkUnreachable
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Method: req.Method, URL: req.URL.Path, Err: err}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, fmt.Errorf("httpclient: read body: %w", err)
		}
		return data, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode body: %w", err)
		}
		return data, nil
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
