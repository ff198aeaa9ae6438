package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *HTTPMetrics) string {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddleware_CountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics("test")

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/incidents/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/incidents/"+id, nil)
		router.ServeHTTP(w, req)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="/incidents/:id",service="test",status="404"} 3`)
	assert.Contains(t, body, `http_status_category_total{category="4xx",service="test"} 3`)
	assert.NotContains(t, body, `path="/incidents/1"`)
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewHTTPMetrics("test")

	router := gin.New()
	router.Use(m.Middleware())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)

	assert.Contains(t, scrape(t, m), `path="unmatched"`)
}

func TestAuthEvent(t *testing.T) {
	m := NewHTTPMetrics("test")

	m.AuthEvent("login")
	m.AuthEvent("login")
	m.AuthEvent("refresh")

	body := scrape(t, m)
	assert.Contains(t, body, `auth_events_total{event="login",service="test"} 2`)
	assert.Contains(t, body, `auth_events_total{event="refresh",service="test"} 1`)
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, "2xx", statusCategory(201))
	assert.Equal(t, "4xx", statusCategory(401))
	assert.Equal(t, "5xx", statusCategory(500))
	assert.Equal(t, "", statusCategory(302))
}
