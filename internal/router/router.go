package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/identity-service/internal/auth"
	"github.com/iliyamo/identity-service/internal/handler"
	"github.com/iliyamo/identity-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the credential endpoints and the protected group.
// The unauthenticated credential endpoints under /v1/auth sit behind the
// rate limiter (they are the brute-force surface); protected endpoints
// under /v1 run the bearer gate instead.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, svc *auth.Service, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	protected := e.Group("/v1")
	protected.Use(middleware.BearerAuth(svc))
	protected.GET("/me", a.Me)
	protected.PUT("/me/password", a.ChangePassword)
}
