package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Payphone-Digital/bilemo/internal/constants"
	"github.com/Payphone-Digital/bilemo/internal/dto"
	"github.com/Payphone-Digital/bilemo/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(engine *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestContextMiddleware_RequestID(t *testing.T) {
	engine := gin.New()
	engine.Use(ContextMiddleware("test", time.Second))
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.GinKeyRequestID))
	})

	rec := perform(engine, http.MethodGet, "/ping", nil)
	generated := rec.Header().Get(constants.HeaderXRequestID)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, rec.Body.String())

	incoming := uuid.NewString()
	rec = perform(engine, http.MethodGet, "/ping", map[string]string{constants.HeaderXRequestID: incoming})
	assert.Equal(t, incoming, rec.Header().Get(constants.HeaderXRequestID))

	rec = perform(engine, http.MethodGet, "/ping", map[string]string{constants.HeaderXRequestID: "not a uuid"})
	assert.NotEqual(t, "not a uuid", rec.Header().Get(constants.HeaderXRequestID))
}

func TestRateLimiter(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	limiter := NewRateLimiter(2, time.Minute)
	now := time.Now()
	limiter.now = func() time.Time { return now }

	engine := gin.New()
	engine.Use(limiter.Middleware(m))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/ping", nil).Code)

	rec = perform(engine, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitedTotal))

	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/ping", nil).Code)
}

func TestCORS(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS([]string{"https://shop.example"}))
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := perform(engine, http.MethodGet, "/ping", map[string]string{"Origin": "https://shop.example"})
	assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = perform(engine, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = perform(engine, http.MethodOptions, "/ping", map[string]string{"Origin": "https://shop.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRole(t *testing.T) {
	withPrincipal := func(p dto.Principal) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(constants.GinKeyPrincipal, p) }
	}

	engine := gin.New()
	engine.GET("/anon", RequireRole(constants.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/user", withPrincipal(dto.Principal{Roles: []string{constants.RoleUser}}),
		RequireRole(constants.RoleAdmin, constants.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/admin", withPrincipal(dto.Principal{Roles: []string{constants.RoleAdmin, constants.RoleUser}}),
		RequireRole(constants.RoleAdmin, constants.RoleSuperAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, perform(engine, http.MethodGet, "/anon", nil).Code)

	rec := perform(engine, http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "you are not allowed to access this resource", body["message"])

	assert.Equal(t, http.StatusOK, perform(engine, http.MethodGet, "/admin", nil).Code)
}

func TestRecoveryAndMetrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())

	engine := gin.New()
	engine.Use(MetricsMiddleware(m), RecoveryMiddleware())
	engine.GET("/boom", func(c *gin.Context) { panic("boom") })
	engine.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusInternalServerError, perform(engine, http.MethodGet, "/boom", nil).Code)
	perform(engine, http.MethodGet, "/items/1", nil)
	perform(engine, http.MethodGet, "/items/2", nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "500")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "200")))
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", "abc"} {
		_, ok := bearerToken(header)
		assert.False(t, ok, header)
	}
}
