package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"car-passion/cmd/api/httpclient"
	"car-passion/cmd/api/middleware"
	"car-passion/cmd/api/services"
	"car-passion/cmd/api/session"
	"car-passion/config"
)

// dealer is a scripted dealership API that records the requests it sees.
type dealer struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func newDealer(t *testing.T, routes map[string]http.HandlerFunc) *dealer {
	t.Helper()
	d := &dealer{t: t}
	d.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r.Body)
		d.mu.Lock()
		d.requests = append(d.requests, r)
		d.bodies = append(d.bodies, buf.String())
		d.mu.Unlock()

		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not found"}`))
			return
		}
		r.Body = http.NoBody
		h(w, r)
	}))
	t.Cleanup(d.srv.Close)
	return d
}

func (d *dealer) last() (*http.Request, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(d.t, d.requests)
	i := len(d.requests) - 1
	return d.requests[i], d.bodies[i]
}

func (d *dealer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func jsonReply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newVisitor(baseURL string) *session.Session {
	return session.New("visitor-1", httpclient.NewBaseClient(baseURL, httpclient.Config{
		Timeout:    2 * time.Second,
		RetryDelay: time.Millisecond,
	}))
}

func newEngine(sess *session.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetSession(c, sess)
		c.Next()
	})
	return r
}

func catalog() *services.CatalogService {
	return services.NewCatalogService(config.ListingConfig{MaxRetries: 2, RetryDelay: time.Millisecond}).
		WithSleep(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })
}

func do(r http.Handler, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

const twoCars = `{"cars":[
	{"_id":"c1","make":"BMW","model":"X5","year":2019,"price":4500000,"description":"<p>Clean <b>title</b></p>"},
	{"_id":"c2","make":"BMW","model":"M3","year":2021,"price":6500000}
],"total":23}`
