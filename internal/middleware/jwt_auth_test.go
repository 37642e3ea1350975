package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/anonto42/inkwell/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]auth.Principal

func (s stubVerifier) Verify(_ context.Context, token string) (auth.Principal, error) {
	if token == "broken-store" {
		return auth.Principal{}, errors.New("connection refused")
	}
	if p, ok := s[token]; ok {
		return p, nil
	}
	return auth.Principal{}, errs.Unauthenticated("Invalid token")
}

func serve(t *testing.T, header string, chain ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, auth.Caller, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen auth.Caller
	h := func(c echo.Context) error {
		seen = CallerFrom(c)
		return c.NoContent(http.StatusOK)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return rec, seen, h(c)
}

func TestResolvePrincipal(t *testing.T) {
	alice := auth.Principal{UserID: 1, Username: "alice", Role: models.RoleUser}
	jwt := stubVerifier{"jwt-token": alice}
	firebase := stubVerifier{"firebase-token": {UserID: 2, Username: "bob", Role: models.RoleAdmin}}
	resolve := ResolvePrincipal(jwt, firebase)

	tests := []struct {
		name   string
		header string
		want   uint
		authed bool
	}{
		{"missing header", "", 0, false},
		{"wrong scheme", "Basic jwt-token", 0, false},
		{"invalid token", "Bearer nope", 0, false},
		{"first verifier", "Bearer jwt-token", 1, true},
		{"second verifier", "bearer firebase-token", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, caller, err := serve(t, tt.header, resolve)
			require.NoError(t, err)
			p, ok := caller.Principal()
			assert.Equal(t, tt.authed, ok)
			assert.Equal(t, tt.want, p.UserID)
		})
	}
}

func TestResolvePrincipalStoreFailure(t *testing.T) {
	_, _, err := serve(t, "Bearer broken-store", ResolvePrincipal(stubVerifier{}))
	assert.Error(t, err)
	assert.Equal(t, errs.KindInternal, errs.KindOf(err))
}

func TestRequireAuthAndAdmin(t *testing.T) {
	v := stubVerifier{
		"user":  {UserID: 1, Role: models.RoleUser},
		"admin": {UserID: 2, Role: models.RoleAdmin},
	}

	_, _, err := serve(t, "", ResolvePrincipal(v), RequireAuth())
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))

	rec, _, err := serve(t, "Bearer user", ResolvePrincipal(v), RequireAuth())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, _, err = serve(t, "Bearer user", ResolvePrincipal(v), RequireAdmin())
	assert.True(t, errs.Is(err, errs.KindForbidden))

	_, _, err = serve(t, "", ResolvePrincipal(v), RequireAdmin())
	assert.True(t, errs.Is(err, errs.KindUnauthenticated))

	rec, _, err = serve(t, "Bearer admin", ResolvePrincipal(v), RequireAdmin())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
