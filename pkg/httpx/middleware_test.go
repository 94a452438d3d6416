package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vaultmind/accountd/pkg/httpx"
	"github.com/vaultmind/accountd/pkg/jwtx"
)

func signedToken(t *testing.T, signer *jwtx.HMACSigner) string {
	t.Helper()

	token, err := signer.Sign(jwtx.NewSessionClaims(
		"acc-1", "john_doe", false, time.Minute, "accountd-test", time.Now().UTC()))
	require.NoError(t, err)
	return token
}

func TestExtractTokenSources(t *testing.T) {
	t.Parallel()

	t.Run("token header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httpx.TokenHeader, "abc")
		require.Equal(t, "abc", httpx.ExtractToken(r))
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer abc")
		require.Equal(t, "abc", httpx.ExtractToken(r))
	})

	t.Run("query parameter", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/?"+httpx.TokenHeader+"=abc", nil)
		require.Equal(t, "abc", httpx.ExtractToken(r))
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: httpx.TokenHeader, Value: "abc"})
		require.Equal(t, "abc", httpx.ExtractToken(r))
	})

	t.Run("absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, httpx.ExtractToken(r))
	})
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	signer, err := jwtx.NewHMACSigner("HS512", []byte("test-secret"), "accountd-test")
	require.NoError(t, err)

	var gotClaims *jwtx.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := httpx.ClaimsFromContext(r.Context()); ok {
			gotClaims = &c
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := httpx.AuthnMiddleware(signer)(next)

	t.Run("valid token passes claims through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httpx.TokenHeader, signedToken(t, signer))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotClaims)
		require.Equal(t, "john_doe", gotClaims.Username)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(httpx.TokenHeader, "garbage")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("any origin allowed when unrestricted", func(t *testing.T) {
		handler := httpx.CORSMiddleware(nil)(next)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no headers", func(t *testing.T) {
		handler := httpx.CORSMiddleware([]string{"https://allowed.example.com"})(next)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		handler := httpx.CORSMiddleware(nil)(next)
		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		r.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}
