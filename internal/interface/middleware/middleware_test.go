package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/users-api/internal/application"
)

type fakeAuthenticator struct {
	valid map[string]string
}

func (f fakeAuthenticator) Authenticate(token string) (application.Identity, error) {
	if email, ok := f.valid[token]; ok {
		return application.Identity{Email: email}, nil
	}
	return application.Identity{}, application.ErrUnauthorized
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxAuthEmailKey))
	})
	return r
}

func TestAuth(t *testing.T) {
	r := newEngine(Auth(fakeAuthenticator{valid: map[string]string{"good": "a@x.io"}}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid", "Bearer good", http.StatusOK, "a@x.io"},
		{"lowercase scheme", "bearer good", http.StatusOK, "a@x.io"},
		{"missing", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if got := w.Header().Get("WWW-Authenticate"); got != "Bearer" {
					t.Errorf("WWW-Authenticate = %q", got)
				}
				return
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("body = %q", w.Body.String())
			}
		})
	}
}

func TestRateLimit_LocalFallback(t *testing.T) {
	r := newEngine(RateLimit(nil, 2, time.Minute, KeyByIP(), nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if i == 2 && w.Header().Get("Retry-After") == "" {
			t.Error("missing Retry-After on 429")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "203.0.113.10:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d", w.Code)
	}
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLimiter_CountsAndResets(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := &redisLimiter{rdb: rdb, max: 2, window: time.Minute}
	ctx := context.Background()

	tests := []struct {
		wantOK        bool
		wantRemaining int
	}{
		{true, 1},
		{true, 0},
		{false, 0},
	}
	for i, tt := range tests {
		ok, remaining, reset, err := l.take(ctx, "rl:test")
		if err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
		if ok != tt.wantOK || remaining != tt.wantRemaining {
			t.Errorf("take %d = (%v, %d), want (%v, %d)", i, ok, remaining, tt.wantOK, tt.wantRemaining)
		}
		if reset <= 0 || reset > time.Minute {
			t.Errorf("take %d reset = %v", i, reset)
		}
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _, _, err := l.take(ctx, "rl:test"); err != nil || !ok {
		t.Errorf("after window: ok=%v err=%v", ok, err)
	}
}

func TestRedisLimiter_RestoresLostExpiry(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := &redisLimiter{rdb: rdb, max: 5, window: time.Minute}
	if err := mr.Set("rl:stuck", "3"); err != nil {
		t.Fatal(err)
	}

	_, remaining, reset, err := l.take(context.Background(), "rl:stuck")
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 1 || reset != time.Minute {
		t.Errorf("remaining=%d reset=%v", remaining, reset)
	}
	if ttl := mr.TTL("rl:stuck"); ttl <= 0 {
		t.Errorf("expiry not restored: %v", ttl)
	}
}

func TestRateLimit_RedisFailsOpen(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	r := newEngine(RateLimit(rdb, 1, time.Minute, KeyByIP(), nil))
	mr.Close()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
		if w.Header().Get("X-RateLimit-Limit") != "" {
			t.Errorf("request %d carried limit headers while redis was down", i)
		}
	}
}

func TestRateLimit_AllowBypass(t *testing.T) {
	r := newEngine(RealIP(), RateLimit(nil, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "127.0.0.1:1"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

func TestLocalLimiter_Refills(t *testing.T) {
	l := newLocalLimiter(1, time.Second)
	now := time.Unix(0, 0)
	l.now = func() time.Time { return now }

	if ok, _, _, _ := l.take(context.Background(), "k"); !ok {
		t.Fatal("first take denied")
	}
	ok, _, reset, _ := l.take(context.Background(), "k")
	if ok {
		t.Fatal("second take allowed")
	}
	if reset <= 0 || reset > time.Second {
		t.Errorf("reset = %v", reset)
	}
	now = now.Add(time.Second)
	if ok, _, _, _ := l.take(context.Background(), "k"); !ok {
		t.Error("take after refill denied")
	}
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Body.Len() == 0 || w.Header().Get("X-Request-ID") != w.Body.String() {
		t.Errorf("generated id %q, header %q", w.Body.String(), w.Header().Get("X-Request-ID"))
	}

	const incoming = "3f1c2c8e-1a4f-4b0e-9f5e-6a1c2d3e4f50"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != incoming {
		t.Errorf("incoming id not reused: %q", w.Body.String())
	}
}

func TestRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RealIP())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "198.51.100.7"}, "198.51.100.7"},
		{"forwarded", map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.1"}, "198.51.100.8"},
		{"fallback", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Body.String() != tt.want {
				t.Errorf("real_ip = %q, want %q", w.Body.String(), tt.want)
			}
		})
	}
}

