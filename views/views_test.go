package views

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiradon/RPGLive/registry"
)

func newRouter(v *Views) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/dashboard", v.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/overlay/{id}", v.Overlay).Methods(http.MethodGet)
	return r
}

func TestOverlay_CreatesCounter(t *testing.T) {
	reg := registry.New()
	router := newRouter(New(reg, "/ws"))

	req := httptest.NewRequest(http.MethodGet, "/overlay/ov1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Overlay ov1")
	assert.Contains(t, rec.Body.String(), `<span id="count">0</span>`)

	count, ok := reg.Get("ov1")
	require.True(t, ok)
	assert.Equal(t, int64(0), count)
}

func TestOverlay_ShowsCurrentCount(t *testing.T) {
	reg := registry.New()
	reg.ApplyDelta("ov1", 7)
	router := newRouter(New(reg, "/ws"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/overlay/ov1", nil))

	assert.Contains(t, rec.Body.String(), `<span id="count">7</span>`)
	assert.Equal(t, 1, reg.Len())
}

func TestOverlay_EscapesID(t *testing.T) {
	reg := registry.New()
	router := newRouter(New(reg, "/ws"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/overlay/%3Cb%3E", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<b>")
	_, ok := reg.Get("<b>")
	assert.True(t, ok)
}

func TestDashboard(t *testing.T) {
	reg := registry.New()
	router := newRouter(New(reg, "/ws"))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Host = "example.test:3000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Dashboard</h1>")
	assert.Contains(t, rec.Body.String(), "example.test:3000")
	assert.Equal(t, 0, reg.Len())
}

func TestWSURL(t *testing.T) {
	v := New(registry.New(), "/ws")

	tests := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{
			name:  "plain",
			setup: func(r *http.Request) {},
			want:  "ws://host:8080/ws",
		},
		{
			name:  "tls",
			setup: func(r *http.Request) { r.TLS = &tls.ConnectionState{} },
			want:  "wss://host:8080/ws",
		},
		{
			name:  "behind proxy",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") },
			want:  "wss://host:8080/ws",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.Host = "host:8080"
			tt.setup(req)
			assert.Equal(t, tt.want, v.wsURL(req))
		})
	}
}

func TestOverlay_RejectsInvalidUTF8(t *testing.T) {
	reg := registry.New()
	router := newRouter(New(reg, "/ws"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/overlay/%FF", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, reg.Len())
}
