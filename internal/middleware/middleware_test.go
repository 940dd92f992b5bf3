package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type staticAuth string

func (s staticAuth) Authorized(code string) bool { return code == string(s) }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireJoinCode(t *testing.T) {
	h := RequireJoinCode(staticAuth("segreto"))(okHandler())

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		target string
		want   int
	}{
		{name: "header", target: "/", setup: func(r *http.Request) { r.Header.Set(JoinCodeHeader, "segreto") }, want: http.StatusOK},
		{name: "query", target: "/?code=segreto", want: http.StatusOK},
		{name: "wrong", target: "/", setup: func(r *http.Request) { r.Header.Set(JoinCodeHeader, "no") }, want: http.StatusUnauthorized},
		{name: "missing", target: "/", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.setup != nil {
				tt.setup(req)
			}
			resp := httptest.NewRecorder()

			h.ServeHTTP(resp, req)

			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	rl := NewRateLimiter("test", 1, 2, zerolog.Nop())
	h := rl.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
		if resp.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, resp.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients keep their own bucket
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	h := NewRateLimiter("test", 0, 0, zerolog.Nop()).Middleware(okHandler())

	for i := 0; i < 50; i++ {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}
