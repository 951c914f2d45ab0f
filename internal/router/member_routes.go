package router

import (
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/handler"
	"github.com/runclubno/runclub-backend/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1. All
// routes require a valid JWT; both MEMBER and ADMIN roles may call
// them.
func RegisterMember(e *echo.Echo, reg *handler.RegistrationHandler, sv *handler.StravaHandler,
	ps *handler.PushHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER", "ADMIN"),
	)

	g.POST("/events/:slug/register", reg.Register)
	g.DELETE("/events/:slug/register", reg.Cancel)
	g.GET("/my-registrations", reg.MyRegistrations)

	g.POST("/strava/connect", sv.Connect)
	g.POST("/strava/sync", sv.Sync)
	g.GET("/strava/activities", sv.Activities)

	g.POST("/push/subscribe", ps.Subscribe)
	g.DELETE("/push/subscribe", ps.Unsubscribe)
}
