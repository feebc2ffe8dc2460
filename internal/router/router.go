// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated browse and availability
// endpoints.  Guests can inspect stores, menus and table availability
// before logging in to book; responses go through the Redis cache when
// one is configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, a *handler.AvailabilityHandler, rdb *redis.Client) {
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/v1/stores", p.GetPublicStores, cache)
	e.GET("/v1/stores/:id", p.GetPublicStore, cache)
	e.GET("/v1/stores/:id/tables/layout", p.GetPublicStoreLayout, cache)
	// Availability is cached only briefly; the booking transaction is
	// the source of truth, the cache just absorbs selection-time churn.
	e.GET("/v1/stores/:id/bookings/available-times", a.GetAvailableTimes, cache)
	e.GET("/v1/stores/:id/bookings/available-tables", a.GetAvailableTables, cache)
}
