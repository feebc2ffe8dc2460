package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterOwner registers the owner-side management endpoints under
// /v1/owner.  All routes require a valid JWT and the OWNER role; each
// handler additionally verifies the caller owns the store or table it
// is touching.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, jwtSecret string) {
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// Per-slot availability override (AVAILABLE or BLOCKED).
	g.PATCH("/tables/:id/slots", o.SetSlot)

	// Store-wide break window.
	g.PUT("/stores/:id/break-time", o.SetBreakTime)
	g.DELETE("/stores/:id/break-time", o.ClearBreakTime)
}
