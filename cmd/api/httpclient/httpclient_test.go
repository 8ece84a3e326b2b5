package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server, timeout time.Duration) *BaseClient {
	return NewBaseClient(srv.URL+"/api", Config{Timeout: timeout, RetryDelay: 10 * time.Millisecond})
}

// dropConnection closes the TCP connection without writing a response.
func dropConnection(t *testing.T, w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	require.True(t, ok)
	conn, _, err := hj.Hijack()
	require.NoError(t, err)
	_ = conn.Close()
}

func TestNewRequestRejectsQueryInPath(t *testing.T) {
	c := NewBaseClient("http://dealer.test/api", Config{})
	_, err := c.NewRequest(context.Background(), http.MethodGet, "/cars?page=1", nil, nil)
	assert.Error(t, err)

	req, err := c.NewRequest(context.Background(), http.MethodGet, "/cars", url.Values{"page": {"2"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://dealer.test/api/cars?page=2", req.URL.String())
}

func TestRequestSendsJSONAndTraceHeaders(t *testing.T) {
	var gotContentType, gotRequestID, gotSpan string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotSpan = r.Header.Get("X-Span-Id")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	resp, err := c.Request(context.Background(), http.MethodPost, "/cars", nil, map[string]string{"make": "BMW"})
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.Decode(&out))
	assert.True(t, out.OK)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "1", gotSpan)
	assert.Equal(t, "BMW", gotBody["make"])
}

func TestRequestHeaderOverride(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(context.Background(), http.MethodPost, "/upload/images", nil, []byte("--x--"),
		WithHeader("Content-Type", "multipart/form-data; boundary=x"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data; boundary=x", gotContentType)
}

func TestRequestRetriesOnceWhenUnreachable(t *testing.T) {
	var hits int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if atomic.AddInt32(&hits, 1) == 1 {
			dropConnection(t, w)
			return
		}
		_, _ = w.Write([]byte(`{"cars":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(context.Background(), http.MethodPut, "/cars/1", nil, map[string]int{"year": 2020})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1])
}

func TestRequestGivesUpAfterSecondUnreachable(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		dropConnection(t, w)
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(context.Background(), http.MethodGet, "/cars", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetworkUnreachable))
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRequestTimeoutIsNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(srv, 50*time.Millisecond)
	_, err := c.Request(context.Background(), http.MethodGet, "/cars", nil, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTimeout))
	assert.True(t, IsTransient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRequestServerErrorCarriesMessage(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database offline"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(context.Background(), http.MethodGet, "/cars", nil, nil)
	require.Error(t, err)

	var he *Error
	require.True(t, errors.As(err, &he))
	assert.Equal(t, KindServer, he.Kind)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Equal(t, "database offline", Message(err))
	assert.False(t, IsTransient(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestRequestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(ctx, http.MethodGet, "/cars", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsTransient(err))
}

func TestCookieJarCarriesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: "abc", Path: "/"})
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			c, err := r.Cookie("connect.sid")
			if err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"activeSession":true}`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv, time.Second)
	_, err := c.Request(context.Background(), http.MethodPost, "/auth/login", nil, map[string]string{"username": "a"})
	require.NoError(t, err)
	_, err = c.Request(context.Background(), http.MethodGet, "/auth/check-session", nil, nil)
	assert.NoError(t, err)

	other := newTestClient(srv, time.Second)
	_, err = other.Request(context.Background(), http.MethodGet, "/auth/check-session", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}
