package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/harukim/task-tracker-api/internal/constants"
	"github.com/stretchr/testify/require"
)

func throttledRouter(limiter *KeyedLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", ThrottleLogin(limiter), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestThrottleLogin_RejectsSixthAttempt(t *testing.T) {
	limiter := NewKeyedLimiter(constants.LoginAttemptsPerMinute)
	r := throttledRouter(limiter)

	for i := 0; i < constants.LoginAttemptsPerMinute; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, "attempt %d should pass", i+1)
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Contains(t, w.Body.String(), "Too many login attempts")

	var response struct {
		Details struct {
			RetryAfter int `json:"retry_after"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.GreaterOrEqual(t, response.Details.RetryAfter, 1)
}

func TestKeyedLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewKeyedLimiter(1)

	ok, _ := limiter.Allow("a")
	require.True(t, ok)

	ok, wait := limiter.Allow("a")
	require.False(t, ok)
	require.Greater(t, wait.Seconds(), 0.0)

	ok, _ = limiter.Allow("b")
	require.True(t, ok, "a saturated key must not affect other keys")
}
