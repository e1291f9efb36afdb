package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitByIP(t *testing.T) {
	rl := newIPRateLimiter(1, 2, time.Minute)
	r := gin.New()
	r.POST("/room", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/room", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, do("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusCreated, do("10.0.0.2"))
}

func TestRateLimiterSweep(t *testing.T) {
	rl := newIPRateLimiter(10, 5, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("a")

	now = now.Add(2 * time.Minute)
	rl.getLimiter("b")
	rl.sweep()

	assert.NotContains(t, rl.visitors, "a")
	assert.Contains(t, rl.visitors, "b")
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/room/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/room/9", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)

	req := httptest.NewRequest(http.MethodGet, "/room/9", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	fields := entries[1].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, "/room/9", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
}
