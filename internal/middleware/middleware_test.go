package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
	"github.com/iliyamo/airline-reservation/internal/policy"
	"github.com/iliyamo/airline-reservation/internal/service"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) service.Result {
	t.Helper()
	var r service.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func issue(t *testing.T, codec *utils.Codec, userID uint64, role model.RoleName) string {
	t.Helper()
	claims := utils.Claims{UserID: userID, Role: string(role)}
	claims.Subject = "someone@example.com"
	tok, err := codec.Issue(claims, time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func TestJWTAuth(t *testing.T) {
	codec := utils.NewCodec("mw-secret", time.Minute)
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, id)
	}, JWTAuth(codec))

	t.Run("Should challenge requests without a token", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
		r := envelope(t, rec)
		assert.False(t, r.Success)
		assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
	})

	t.Run("Should reject tokens signed with another key", func(t *testing.T) {
		other := utils.NewCodec("other-secret", time.Minute)
		rec := serve(e, http.MethodGet, "/me", issue(t, other, 7, model.RoleCliente))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid token", envelope(t, rec).Message)
	})

	t.Run("Should reject expired tokens", func(t *testing.T) {
		past := utils.NewCodec("mw-secret", time.Minute).WithClock(func() time.Time { return time.Now().Add(-time.Hour) })
		rec := serve(e, http.MethodGet, "/me", issue(t, past, 7, model.RoleCliente))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token expired", envelope(t, rec).Message)
	})

	t.Run("Should reject unknown roles", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/me", issue(t, codec, 7, "Piloto"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Should expose the decoded identity", func(t *testing.T) {
		rec := serve(e, http.MethodGet, "/me", issue(t, codec, 7, model.RoleAgente))
		require.Equal(t, http.StatusOK, rec.Code)
		var id model.Identity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
		assert.Equal(t, uint64(7), id.UserID)
		assert.Equal(t, model.RoleAgente, id.Role)
	})
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
}

func TestRequireAction(t *testing.T) {
	codec := utils.NewCodec("mw-secret", time.Minute)
	e := echo.New()
	e.DELETE("/roles/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		JWTAuth(codec), RequireAction(policy.RoleDelete))

	t.Run("Should forbid roles outside the policy", func(t *testing.T) {
		rec := serve(e, http.MethodDelete, "/roles/4", issue(t, codec, 3, model.RoleAgente))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, http.StatusForbidden, envelope(t, rec).StatusCode)
	})

	t.Run("Should pass allowed roles", func(t *testing.T) {
		rec := serve(e, http.MethodDelete, "/roles/4", issue(t, codec, 1, model.RoleAdministrador))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestTokenBucket(t *testing.T) {
	t.Run("Should block once the bucket is empty", func(t *testing.T) {
		_, rdb := newRedis(t)
		cfg := config.RateLimitConfig{
			Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute,
			TTL: 5 * time.Minute, KeyStrategy: "ip", Prefix: "rl",
		}
		e := echo.New()
		e.GET("/flights", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			NewTokenBucket(cfg, rdb, logger.NewForTests()))

		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/flights", "").Code)
		rec := serve(e, http.MethodGet, "/flights", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

		rec = serve(e, http.MethodGet, "/flights", "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
		assert.Equal(t, http.StatusTooManyRequests, envelope(t, rec).StatusCode)
	})

	t.Run("Should let requests through when Redis is down", func(t *testing.T) {
		mr, rdb := newRedis(t)
		mr.Close()
		cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute, TTL: time.Minute, Prefix: "rl"}
		e := echo.New()
		e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
			NewTokenBucket(cfg, rdb, logger.NewForTests()))
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", "").Code)
		assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/x", "").Code)
	})
}

func TestRedisCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{http.MethodGet: true},
		TTL: time.Minute, KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
	}
	calls := 0
	e := echo.New()
	mw := NewRedisCache(cfg, rdb, logger.NewForTests())
	e.GET("/flights/:id", func(c echo.Context) error {
		calls++
		if c.Param("id") == "404" {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false})
		}
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	}, mw)

	t.Run("Should serve the second read from Redis", func(t *testing.T) {
		first := serve(e, http.MethodGet, "/flights/1", "")
		assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
		second := serve(e, http.MethodGet, "/flights/1", "")
		assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
		assert.Equal(t, http.StatusOK, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Equal(t, 1, calls)
	})

	t.Run("Should key on the concrete path", func(t *testing.T) {
		calls = 0
		rec := serve(e, http.MethodGet, "/flights/2", "")
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.JSONEq(t, `{"id":"2"}`, rec.Body.String())
		assert.Equal(t, 1, calls)
	})

	t.Run("Should not store failures", func(t *testing.T) {
		calls = 0
		serve(e, http.MethodGet, "/flights/404", "")
		rec := serve(e, http.MethodGet, "/flights/404", "")
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.Equal(t, 2, calls)
	})
}

func TestInvalidateCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{
		Enabled: true, Methods: map[string]bool{http.MethodGet: true},
		TTL: time.Minute, KeyStrategy: "route_query", Prefix: "cache", MaxBodyBytes: 1 << 20,
	}
	log := logger.NewForTests()
	version := "v1"
	e := echo.New()
	e.GET("/flights", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"version": version})
	}, NewRedisCache(cfg, rdb, log))
	e.DELETE("/flights", func(c echo.Context) error {
		version = "v2"
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}, InvalidateCache(cfg, rdb, log))
	e.POST("/flights", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false})
	}, InvalidateCache(cfg, rdb, log))

	serve(e, http.MethodGet, "/flights", "")
	require.Equal(t, "HIT", serve(e, http.MethodGet, "/flights", "").Header().Get("X-Cache"))

	t.Run("Should keep entries after a failed write", func(t *testing.T) {
		serve(e, http.MethodPost, "/flights", "")
		assert.Equal(t, "HIT", serve(e, http.MethodGet, "/flights", "").Header().Get("X-Cache"))
	})

	t.Run("Should miss after a successful write", func(t *testing.T) {
		serve(e, http.MethodDelete, "/flights", "")
		rec := serve(e, http.MethodGet, "/flights", "")
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
		assert.JSONEq(t, `{"version":"v2"}`, rec.Body.String())
	})
}

func TestDecodePayloadRejectsShortInput(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
