package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := Identity{}.CurrentUser(r.Context())
		if u == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(u.ID + ":" + u.Email))
	})
}

func TestAuthRoundTrip(t *testing.T) {
	a := NewAuth("test-secret")
	tok, err := a.SignToken("u1", "a@b.c", time.Hour)
	require.NoError(t, err)

	h := a.WithAuth(RequireAuth(whoami()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u1:a@b.c", rr.Body.String())
}

func TestAuthRejectsBadTokens(t *testing.T) {
	a := NewAuth("test-secret")
	other := NewAuth("other-secret")
	foreign, err := other.SignToken("u1", "a@b.c", time.Hour)
	require.NoError(t, err)

	expiredAuth := NewAuth("test-secret")
	expiredAuth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredAuth.SignToken("u1", "a@b.c", time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing": "",
		"foreign": "Bearer " + foreign,
		"expired": "Bearer " + expired,
		"garbage": "Bearer not-a-token",
		"scheme":  "Basic dTE6cHc=",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			a.WithAuth(RequireAuth(whoami())).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)

			rr = httptest.NewRecorder()
			a.WithAuth(whoami()).ServeHTTP(rr, req)
			assert.Equal(t, "anonymous", rr.Body.String())
		})
	}
}

func TestEmptySecretUsesDevSecret(t *testing.T) {
	tok, err := NewAuth("").SignToken("u1", "", time.Minute)
	require.NoError(t, err)
	c, err := NewAuth(DevSecret).parseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := httptest.NewRecorder()
	CORS(nil)(ok).ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	h := CORS([]string{"https://app.example"})(ok)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "https://app.example", rr.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	pre := httptest.NewRequest(http.MethodOptions, "/api/score", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, pre)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLocaleMiddleware(t *testing.T) {
	var got string
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/?lang=fa", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "fa", got)
	assert.Equal(t, "fa", rr.Header().Get("Content-Language"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en", got)
}

func TestHeaderMiddlewares(t *testing.T) {
	rr := httptest.NewRecorder()
	NoStore(SecureHeaders(http.NotFoundHandler())).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "Authorization", rr.Header().Get("Vary"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	SecureHeaders(http.NotFoundHandler()).ServeHTTP(rr, req)
	assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	out := buf.String()
	assert.Contains(t, out, "status=201")
	assert.Contains(t, out, "path=/api/sessions")
}
