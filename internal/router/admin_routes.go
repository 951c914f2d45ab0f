package router

import (
	"github.com/labstack/echo/v4"

	"github.com/runclubno/runclub-backend/internal/handler"
	"github.com/runclubno/runclub-backend/internal/middleware"
)

// RegisterAdmin registers the admin endpoints under /v1/admin. All
// routes require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, ev *handler.AdminEventHandler, at *handler.AdminAttendeeHandler,
	mb *handler.AdminMemberHandler, pay *handler.AdminPaymentHandler, cp *handler.AdminCouponHandler,
	rc *handler.AdminReconcileHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	g.GET("/events", ev.List)
	g.POST("/events", ev.Create)
	g.PUT("/events/:id", ev.Update)
	g.POST("/events/:id/archive", ev.Archive)
	g.POST("/events/:id/unarchive", ev.Unarchive)

	g.GET("/events/:id/attendees", at.List)
	g.POST("/events/:id/attendees", at.Create)
	g.PUT("/events/:id/attendees/:attendee_id", at.Update)
	g.DELETE("/events/:id/attendees/:attendee_id", at.Delete)
	g.POST("/events/:id/attendees/:attendee_id/payment-link", at.PaymentLink)
	g.GET("/events/:id/attendees/export", at.ExportCSV)

	g.GET("/events/:id/duplicates", rc.Duplicates)
	g.POST("/events/:id/duplicates/resolve", rc.Resolve)

	g.GET("/members", mb.List)
	g.PUT("/members/:id/membership", mb.UpdateMembership)

	g.GET("/events/:id/payments", pay.ListByEvent)
	g.GET("/members/:id/payments", pay.ListByMember)
	g.POST("/events/:id/checkin", pay.CheckIn)

	g.POST("/coupons", cp.Create)
	g.GET("/coupons/:code", cp.Get)
}
