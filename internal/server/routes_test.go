package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farellandr/museum-tickets/internal/handlers"
	"github.com/farellandr/museum-tickets/internal/helpers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-secret"

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setupRoutes(r, routeDeps{
		handler:   handlers.New(nil, nil, nil, nil),
		jwtSecret: testSecret,
		limiter:   func(c *gin.Context) { c.Next() },
	})
	return r
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := testEngine()
	routes := []struct{ method, path string }{
		{http.MethodPost, "/events"},
		{http.MethodPut, "/events/123"},
		{http.MethodDelete, "/events/123"},
		{http.MethodGet, "/tickets"},
		{http.MethodGet, "/tickets/stats"},
		{http.MethodGet, "/tickets/recent-validations"},
		{http.MethodGet, "/tickets/search?email=a@b.com"},
		{http.MethodGet, "/tickets/search-dni?dni=123"},
		{http.MethodGet, "/tickets/slots"},
		{http.MethodPost, "/tickets/validate-qr"},
		{http.MethodPost, "/tickets/123/cancel"},
		{http.MethodGet, "/auth/profile"},
	}

	userToken, err := helpers.NewAccessToken(testSecret, "user-1", "visitor@museo.com", "user", "Visitor", time.Now(), time.Hour)
	require.NoError(t, err)

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			req := httptest.NewRequest(route.method, route.path, nil)
			req.Header.Set("Authorization", "Bearer "+userToken)
			w = httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	testEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	w := httptest.NewRecorder()
	testEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
