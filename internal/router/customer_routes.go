package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterCustomer registers the diner-facing endpoints under /v1.
// All routes require a valid JWT and the CUSTOMER role.  The flow
// endpoints drive the step-by-step reservation (draft, selection,
// menus, confirm); the booking and payment endpoints also serve
// clients that skip the flow.
func RegisterCustomer(e *echo.Echo, d *handler.DraftFlowHandler, b *handler.BookingHandler, p *handler.PaymentHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)

	// Reservation flow.
	g.POST("/stores/:id/drafts", d.CreateDraft)
	g.GET("/drafts/:id", d.GetDraft)
	g.PATCH("/drafts/:id/selection", d.UpdateSelection)
	g.PUT("/drafts/:id/menus", d.SetMenuLine)
	g.POST("/drafts/:id/next", d.Next)
	g.POST("/drafts/:id/back", d.Back)
	g.POST("/drafts/:id/confirm", d.ConfirmDraft)
	g.DELETE("/drafts/:id", d.CloseDraft)
	// Draft-scoped availability uses the draft's own tuple and discards
	// results that arrive after a newer query.
	g.GET("/drafts/:id/available-times", d.DraftAvailableTimes)
	g.GET("/drafts/:id/available-tables", d.DraftAvailableTables)

	// Bookings outside the flow.
	g.POST("/stores/:id/bookings", b.Create)
	g.GET("/bookings", b.List)
	g.GET("/bookings/:id", b.Get)
	g.PATCH("/bookings/:id/cancel", b.Cancel)

	// Deposit payment hand-off.
	g.POST("/payments/request", p.RequestOrder)
	g.POST("/payments/confirm", p.Confirm)
	g.GET("/payments/success", p.Confirm)
	g.GET("/payments/fail", p.Fail)
}
