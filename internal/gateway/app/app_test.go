package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archrelay/internal/gateway/config"
)

const todoRequest = `{"app_name": "TodoApp", "system_description": "A simple todo list app"}`

const todoResponse = `{"architecture": [{"type": "service", "name": "api", "purpose": "serve requests", "uses": [], "pypi_packages": ["fastapi"], "is_endpoint": true}], "external_infrastructure": ["postgres"]}`

type upstreamSpy struct {
	calls  atomic.Int32
	status int
	body   string
}

func (u *upstreamSpy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.calls.Add(1)
	if r.URL.Path != "/create_architecture" || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(u.status)
	_, _ = io.WriteString(w, u.body)
}

func newTestApp(t *testing.T, upstreamURL string, cacheSize int) http.Handler {
	t.Helper()
	return New(&config.Config{
		Port:     ":0",
		Env:      "test",
		Upstream: config.UpstreamConfig{URL: upstreamURL, Timeout: 2 * time.Second},
		Cache:    config.CacheConfig{Size: cacheSize, TTL: time.Minute},
	}).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateArchitecture_PassesUpstreamBodyThrough(t *testing.T) {
	spy := &upstreamSpy{status: http.StatusOK, body: todoResponse}
	upstream := httptest.NewServer(spy)
	defer upstream.Close()

	h := newTestApp(t, upstream.URL+"/create_architecture", 0)
	rec := do(t, h, http.MethodPost, "/api/architecture", todoRequest)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, todoResponse, rec.Body.String())
	assert.EqualValues(t, 1, spy.calls.Load())
}

func TestCreateArchitecture_InvalidRequestSkipsUpstream(t *testing.T) {
	spy := &upstreamSpy{status: http.StatusOK, body: todoResponse}
	upstream := httptest.NewServer(spy)
	defer upstream.Close()

	h := newTestApp(t, upstream.URL+"/create_architecture", 0)
	for _, body := range []string{
		`{"system_description": "A simple todo list app"}`,
		`{"app_name": "TodoApp"}`,
		`{}`,
	} {
		rec := do(t, h, http.MethodPost, "/api/architecture", body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
	}
	assert.EqualValues(t, 0, spy.calls.Load())
}

func TestCreateArchitecture_UpstreamErrorMirrorsStatus(t *testing.T) {
	spy := &upstreamSpy{status: http.StatusInternalServerError, body: `{"detail":"secret stack trace"}`}
	upstream := httptest.NewServer(spy)
	defer upstream.Close()

	h := newTestApp(t, upstream.URL+"/create_architecture", 0)
	rec := do(t, h, http.MethodPost, "/api/architecture", todoRequest)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Error from architecture service"}`, rec.Body.String())
}

func TestCreateArchitecture_UpstreamRedirectIsMirrored(t *testing.T) {
	var followed atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/create_architecture", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	})
	mux.HandleFunc("/elsewhere", func(w http.ResponseWriter, r *http.Request) {
		followed.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, todoResponse)
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	h := newTestApp(t, upstream.URL+"/create_architecture", 0)
	rec := do(t, h, http.MethodPost, "/api/architecture", todoRequest)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Error from architecture service"}`, rec.Body.String())
	assert.EqualValues(t, 0, followed.Load())
}

func TestCreateArchitecture_UpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL + "/create_architecture"
	upstream.Close()

	h := newTestApp(t, url, 0)
	rec := do(t, h, http.MethodPost, "/api/architecture", todoRequest)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"detail":"Architecture service unavailable"}`, rec.Body.String())
}

func TestHealthz_IndependentOfUpstream(t *testing.T) {
	h := newTestApp(t, "http://127.0.0.1:1/create_architecture", 0)
	rec := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouting_UnknownRouteAndMethod(t *testing.T) {
	h := newTestApp(t, "http://127.0.0.1:1/create_architecture", 0)

	rec := do(t, h, http.MethodGet, "/api/architecture", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())
}

func TestCORSPreflightOnRelayRoute(t *testing.T) {
	h := newTestApp(t, "http://127.0.0.1:1/create_architecture", 0)
	req := httptest.NewRequest(http.MethodOptions, "/api/architecture", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCreateArchitecture_CacheServesRepeatRequests(t *testing.T) {
	spy := &upstreamSpy{status: http.StatusOK, body: todoResponse}
	upstream := httptest.NewServer(spy)
	defer upstream.Close()

	h := newTestApp(t, upstream.URL+"/create_architecture", 8)
	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodPost, "/api/architecture", todoRequest)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, todoResponse, rec.Body.String())
	}
	assert.EqualValues(t, 1, spy.calls.Load())
}
