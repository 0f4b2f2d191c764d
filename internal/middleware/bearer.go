package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-service/internal/auth"
)

// Context keys set by BearerAuth for downstream handlers.
const (
	IdentityKey = "identity" // model.Identity of the caller
	UserIDKey   = "user_id"  // identity id as string
	RoleKey     = "role"     // role name, may be empty
)

// BearerAuth returns an Echo middleware that gates every request behind a
// valid access token. It delegates to auth.Authenticate, which verifies
// the token and resolves the identity, and keeps the two failure kinds
// apart in the response body even though both map to 401: clients can
// distinguish "log in again" from "account problem".
func BearerAuth(svc *auth.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Token is expired or invalid."})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			ident, err := svc.Authenticate(ctx, raw)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidUser) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Unauthorized User."})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Token is expired or invalid."})
			}

			c.Set(IdentityKey, ident)
			c.Set(UserIDKey, ident.ID)
			c.Set(RoleKey, ident.Role)
			return next(c)
		}
	}
}
