package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"chefmind/internal/infrastructure/config"
	"chefmind/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func okRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw)
	r.POST("/echo", func(c *gin.Context) {
		body, _ := c.GetRawData()
		c.String(http.StatusOK, string(body))
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	// Bucket is empty and the hour-long window refills far too slowly to
	// matter here.
	assert.False(t, rl.Allow())
}

func TestRateLimit_RejectsWith429(t *testing.T) {
	r := okRouter(RateLimit(1, time.Hour))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestBodySizeLimit(t *testing.T) {
	r := okRouter(BodySizeLimit(16))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small"))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")
}

func TestDeduplication_RejectsRepeatPost(t *testing.T) {
	cfg := &config.Config{DedupWindow: time.Minute}
	r := okRouter(Deduplication(cfg))

	body := `{"days":7}`

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	// The handler still sees the body after the middleware hashed it.
	assert.Equal(t, body, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Request too frequent")
}

func TestDeduplication_DifferentBodiesPass(t *testing.T) {
	cfg := &config.Config{DedupWindow: time.Minute}
	r := okRouter(Deduplication(cfg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"days":1}`)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"days":2}`)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeduplication_IgnoresGet(t *testing.T) {
	cfg := &config.Config{DedupWindow: time.Minute}
	r := okRouter(Deduplication(cfg))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
