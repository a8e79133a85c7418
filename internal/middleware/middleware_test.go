package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teapot = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestCORS(t *testing.T) {
	rr := httptest.NewRecorder()
	CORS(teapot).ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/tools/brace/calc", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = httptest.NewRecorder()
	CORS(teapot).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/tools/brace/calc", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestIPRateLimiter(t *testing.T) {
	h := NewIPRateLimiter(0.001, 2).LimitMiddleware(teapot)

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusTeapot, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTeapot, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))
	assert.Equal(t, http.StatusTeapot, do("10.0.0.2:1000"))
}

func TestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	rr := httptest.NewRecorder()
	Logger(log)(teapot).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tools/brace/types", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
	assert.Equal(t, "/api/tools/brace/types", entry.Data["path"])
}
