package main

import (
	"fmt"
	"log/slog"

	"github.com/chargedrops/chargedrops-api/internal/domain/auth"
	"github.com/chargedrops/chargedrops-api/internal/domain/city"
	"github.com/chargedrops/chargedrops-api/internal/domain/places"
	"github.com/chargedrops/chargedrops-api/internal/domain/station"
	"github.com/chargedrops/chargedrops-api/internal/domain/venue"
	"github.com/chargedrops/chargedrops-api/internal/handler"
	"github.com/chargedrops/chargedrops-api/pkg/config"
	"github.com/chargedrops/chargedrops-api/pkg/db"
)

// Dependencies wires the whole service: storage, repositories, services,
// external clients, and handlers, built once at startup.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *db.DB

	CityService  city.Service
	VenueService venue.Service
	StationRepo  station.Repository
	Places       places.Client

	Sessions *auth.SessionManager
	Tokens   *auth.TokenManager

	PublicHandler *handler.PublicHandler
	AdminHandler  *handler.AdminHandler
	AuthHandler   *handler.AuthHandler
	HealthHandler *handler.HealthHandler
}

func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	database, err := db.New(db.Config{DSN: cfg.Database.DSN()}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cityRepo := city.NewCityRepository(database.Pool, logger)
	stationRepo := station.NewStationRepository(database.Pool, logger)
	venueRepo := venue.NewVenueRepository(database.Pool, stationRepo, logger)

	cityService := city.NewCityService(cityRepo, logger)
	venueService := venue.NewVenueService(venueRepo, logger)

	placesClient, err := initPlacesClient(cfg, logger)
	if err != nil {
		database.Close()
		return nil, err
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth, logger)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize authenticator: %w", err)
	}
	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.SessionTTL)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize token manager: %w", err)
	}
	sessions, err := auth.NewSessionManager([]byte(cfg.Auth.SessionSecret), tokens, cfg.Auth.SessionTTL, cfg.Server.Env == "prod")
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}

	return &Dependencies{
		Config:       cfg,
		Logger:       logger,
		DB:           database,
		CityService:  cityService,
		VenueService: venueService,
		StationRepo:  stationRepo,
		Places:       placesClient,
		Sessions:     sessions,
		Tokens:       tokens,

		PublicHandler: handler.NewPublicHandler(cityService, venueService, placesClient, logger),
		AdminHandler:  handler.NewAdminHandler(cityService, venueService, stationRepo, placesClient, logger),
		AuthHandler:   handler.NewAuthHandler(authenticator, sessions, tokens, logger),
		HealthHandler: handler.NewHealthHandler(database),
	}, nil
}

// initPlacesClient builds the live-data client. Without an API key the
// service still runs; venues just render from their cached snapshots.
func initPlacesClient(cfg *config.Config, logger *slog.Logger) (places.Client, error) {
	if cfg.Places.APIKey == "" {
		logger.Warn("MAPS_API_KEY not set; live place lookups disabled")
		return places.Disabled{}, nil
	}
	google, err := places.NewGoogleClient(cfg.Places.APIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize places client: %w", err)
	}
	return places.NewCachedClient(google, cfg.Places.CacheTTL, cfg.Places.RequestTimeout, logger), nil
}

// Cleanup releases long-lived resources.
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
}
