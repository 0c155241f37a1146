package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feiralabs/feira/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testIssuer() *jwtx.AccessIssuer {
	return jwtx.NewAccessIssuer([]byte("middleware-test-secret"), "identity-test", 15*time.Minute)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestBearerAuth(t *testing.T) {
	t.Parallel()

	issuer := testIssuer()
	handler := Chain(okHandler, BearerAuth(issuer))

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("non bearer scheme rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbled token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := jwtx.NewAccessIssuer([]byte("some-other-secret"), "identity-test", 15*time.Minute)
		token, err := other.Issue("user-1", "alice@example.com", nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes with claims in context", func(t *testing.T) {
		token, err := issuer.Issue("user-1", "alice@example.com", []string{"member"})
		require.NoError(t, err)

		var gotID string
		var gotClaims jwtx.AccessClaims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserIDFromContext(r.Context())
			require.True(t, ok)
			gotID = id

			claims, ok := ClaimsFromContext(r.Context())
			require.True(t, ok)
			gotClaims = claims
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		Chain(inner, BearerAuth(issuer)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "user-1", gotID)
		require.Equal(t, "alice@example.com", gotClaims.Email)
		require.Equal(t, []string{"member"}, gotClaims.Roles)
	})
}

func TestRequireAnyRole(t *testing.T) {
	t.Parallel()

	issuer := testIssuer()
	handler := Chain(okHandler, BearerAuth(issuer), RequireAnyRole("admin"))

	request := func(t *testing.T, roles []string) *httptest.ResponseRecorder {
		t.Helper()
		token, err := issuer.Issue("user-1", "alice@example.com", roles)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("holder of required role passes", func(t *testing.T) {
		rec := request(t, []string{"admin"})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("extra roles do not hurt", func(t *testing.T) {
		rec := request(t, []string{"customer", "admin"})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("authenticated without role gets 403", func(t *testing.T) {
		rec := request(t, []string{"customer"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	})

	t.Run("no roles at all gets 403", func(t *testing.T) {
		rec := request(t, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated gets 401 before role check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
