package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/chargedrops/chargedrops-api/pkg/middleware"
	"github.com/chargedrops/chargedrops-api/pkg/observability"
)

// SetupRouter configures the middleware chain and all routes.
func SetupRouter(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})
	e.Use(echo.WrapMiddleware(corsHandler.Handler))
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogging(deps.Logger))
	e.Use(middleware.Recovery(deps.Logger))

	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		limiter := rate.NewLimiter(
			rate.Limit(float64(deps.Config.Server.RateLimitPerSecond)),
			deps.Config.Server.RateLimitBurst,
		)
		e.Use(middleware.RateLimit(limiter))
	}

	if deps.Config.Observability.MetricsEnabled {
		e.Use(observability.MetricsMiddleware())
		e.GET("/metrics", echo.WrapHandler(observability.Handler()))
	}

	e.GET("/healthz", deps.HealthHandler.Healthz)
	e.GET("/ready", deps.HealthHandler.Ready)

	// Public directory.
	e.GET("/", deps.PublicHandler.Home)
	e.GET("/v1/cities", deps.PublicHandler.Home)
	e.GET("/map/:citySlug", deps.PublicHandler.MapSnapshot)
	e.GET("/v1/map/:citySlug", deps.PublicHandler.MapSnapshot)
	e.GET("/v1/map/:citySlug/venues/:id/live", deps.PublicHandler.VenueLive)

	// Admin. Login and logout sit outside the gate.
	e.POST("/v1/admin/login", deps.AuthHandler.Login)
	e.POST("/v1/admin/logout", deps.AuthHandler.Logout)

	admin := e.Group("/v1/admin", deps.Sessions.Middleware())
	admin.GET("/cities", deps.AdminHandler.ListCities)
	admin.GET("/cities/:slug", deps.AdminHandler.GetCity)
	admin.POST("/cities", deps.AdminHandler.SaveCity)
	admin.PUT("/cities/:slug", deps.AdminHandler.SaveCity)
	admin.GET("/venues", deps.AdminHandler.ListVenues)
	admin.GET("/venues/:id", deps.AdminHandler.GetVenue)
	admin.POST("/venues", deps.AdminHandler.CreateVenue)
	admin.PUT("/venues/:id", deps.AdminHandler.UpdateVenue)
	admin.GET("/stations", deps.AdminHandler.ListStations)
	admin.POST("/stations", deps.AdminHandler.CreateStation)
	admin.GET("/places/autocomplete", deps.AdminHandler.Autocomplete)
	admin.GET("/places/:placeID", deps.AdminHandler.PlaceDetails)

	// Historical short links: /austin instead of /map/austin. Registered last
	// so it never shadows the named routes above.
	e.GET("/:citySlug", deps.PublicHandler.LegacyRedirect)

	return e
}
