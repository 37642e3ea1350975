package middleware

import (
	"strings"

	"github.com/anonto42/inkwell/backend/internal/auth"
	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// ResolvePrincipal classifies every request as Authenticated or Anonymous.
// Verifiers are tried in order; a missing or rejected credential leaves the
// caller anonymous. Only store failures abort the request.
func ResolvePrincipal(verifiers ...auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := auth.Anonymous()
			if token := bearerToken(c); token != "" {
				for _, v := range verifiers {
					p, err := v.Verify(c.Request().Context(), token)
					if err == nil {
						caller = auth.Authenticated(p)
						break
					}
					if !errs.Is(err, errs.KindUnauthenticated) {
						return err
					}
				}
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// bearerToken expects "Bearer <token>".
func bearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CallerFrom returns the caller resolved for this request.
func CallerFrom(c echo.Context) auth.Caller {
	if caller, ok := c.Get(callerKey).(auth.Caller); ok {
		return caller
	}
	return auth.Anonymous()
}

// PrincipalFrom returns the authenticated principal. It is only meaningful
// behind RequireAuth.
func PrincipalFrom(c echo.Context) auth.Principal {
	p, _ := CallerFrom(c).Principal()
	return p
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CallerFrom(c).IsAuthenticated() {
				return errs.Unauthenticated("Unauthorized")
			}
			return next(c)
		}
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := CallerFrom(c).Principal()
			if !ok {
				return errs.Unauthenticated("Unauthorized")
			}
			if !p.IsAdmin() {
				return errs.Forbidden("Admin access required")
			}
			return next(c)
		}
	}
}
