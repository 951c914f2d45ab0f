package router

import (
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/handler"
	"github.com/runclubno/runclub-backend/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or state:
// currently only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login
// and refresh live under /v1/auth without middleware; /v1/me and logout
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout with a refresh token in the body needs no access token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	// Logout-all uses the access token to identify the member.
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated event catalogue and the
// Stripe webhook. cacheMW wraps event reads in the Redis response
// cache; pass nil to disable.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, wh *handler.WebhookHandler, cacheMW echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cacheMW != nil {
		mws = append(mws, cacheMW)
	}
	e.GET("/v1/events", ev.List, mws...)
	e.GET("/v1/events/:slug", ev.Get, mws...)
	// Availability is queried right before registering; never cache it.
	e.GET("/v1/events/:slug/availability", ev.Availability)

	// Stripe authenticates with its signature header, not a JWT.
	e.POST("/v1/stripe/webhook", wh.Stripe)
}
