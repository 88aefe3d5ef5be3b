package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/performance-signup/internal/config"
	"github.com/iliyamo/performance-signup/internal/utils"
)

func protected(secret string) *echo.Echo {
	e := echo.New()
	g := e.Group("/admin", JWTAuth(secret), RequireRole(RoleAdmin))
	g.GET("/whoami", func(c echo.Context) error {
		return c.String(http.StatusOK, subject(c))
	})
	return e
}

func TestJWTAuthAndRole(t *testing.T) {
	admin, err := utils.NewAccessToken("k", "admin", RoleAdmin, 5)
	if err != nil {
		t.Fatal(err)
	}
	viewer, _ := utils.NewAccessToken("k", "viewer", "VIEWER", 5)
	forged, _ := utils.NewAccessToken("other", "admin", RoleAdmin, 5)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + forged.Token, http.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer.Token, http.StatusForbidden},
		{"admin", "Bearer " + admin.Token, http.StatusOK},
	}
	e := protected("k")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != "admin" {
				t.Errorf("expected subject admin, got %q", rec.Body.String())
			}
		})
	}
}

func TestRequestLogger_PassesThroughErrors(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zap.NewNop()))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"ok":true}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"ok":true}` {
		t.Errorf("unexpected decode: %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload(bs[:5]); ok {
		t.Errorf("short payload should not decode")
	}
}

func TestCacheKeyIncludesQuery(t *testing.T) {
	e := echo.New()
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/dates")
		return cacheKey("p", c)
	}
	if key("/v1/dates") == key("/v1/dates?callback=cb") {
		t.Errorf("JSONP and JSON responses must not share a key")
	}
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewRedisCache(cacheWithoutRedis(), nil),
		NewTokenBucket(rateWithoutRedis(), nil, zap.NewNop()),
	)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// Enabled but without Redis: both middlewares must degrade to no-ops.
func cacheWithoutRedis() config.CacheConfig    { return config.CacheConfig{Enabled: true} }
func rateWithoutRedis() config.RateLimitConfig { return config.RateLimitConfig{Enabled: true} }
