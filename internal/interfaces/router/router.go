package router

import (
	adminsvc "canopy-backend/internal/application/admin"
	authsvc "canopy-backend/internal/application/auth"
	"canopy-backend/internal/application/authz"
	matchsvc "canopy-backend/internal/application/matching"
	prefsvc "canopy-backend/internal/application/preferences"
	propsvc "canopy-backend/internal/application/proposals"
	"canopy-backend/internal/collaborators"
	"canopy-backend/internal/config"
	"canopy-backend/internal/infrastructure/database"
	adminhandler "canopy-backend/internal/interfaces/handlers/admin"
	authhandler "canopy-backend/internal/interfaces/handlers/auth"
	healthhandler "canopy-backend/internal/interfaces/handlers/health"
	matchhandler "canopy-backend/internal/interfaces/handlers/matching"
	prefhandler "canopy-backend/internal/interfaces/handlers/preferences"
	prophandler "canopy-backend/internal/interfaces/handlers/proposals"
	"canopy-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and routes.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.AllowedOriginSuffix,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	// Endpoint references persist in the settings row; config only seeds
	// the first boot.
	endpoints := collaborators.Endpoints{
		EmissionSource: cfg.EmissionSourceURL,
		CreditLedger:   cfg.CreditLedgerURL,
		TokenIssuer:    cfg.TokenIssuerURL,
		Authorization:  cfg.AuthzServiceURL,
		Calculator:     cfg.CalculatorURL,
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
		settings, err := database.EnsureSettings(db, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		endpoints = collaborators.Endpoints{
			EmissionSource: settings.EmissionSourceURL,
			CreditLedger:   settings.CreditLedgerURL,
			TokenIssuer:    settings.TokenIssuerURL,
			Authorization:  settings.AuthzServiceURL,
			Calculator:     settings.CalculatorURL,
		}
	}

	// Collaborator clients share the registry so endpoint updates apply
	// without rebuilds.
	registry := collaborators.NewRegistry(endpoints)
	emissions := &collaborators.HTTPEmissionSource{Registry: registry, APIKey: cfg.CollaboratorKey}
	ledger := &collaborators.HTTPCreditLedger{Registry: registry, APIKey: cfg.CollaboratorKey}
	tokens := &collaborators.HTTPTokenIssuer{Registry: registry, APIKey: cfg.CollaboratorKey}
	authzClient := &collaborators.HTTPAuthorizationService{Registry: registry, APIKey: cfg.CollaboratorKey}

	// Health endpoints (no auth)
	healthHandlers := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		Registry:       registry,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// Auth (no auth middleware)
	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	authHandlers := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// --- Protected modules (auth required) ---
	if db != nil && rdb != nil {
		caps := authz.AnyOf{
			&authz.Owner{DB: db},
			&authz.Remote{Client: authzClient},
		}

		matchingService := &matchsvc.Service{
			DB:        db,
			Emissions: emissions,
			Ledger:    ledger,
			Tokens:    tokens,
		}
		matchingHandlers := &matchhandler.Handlers{Service: matchingService}
		matchingGroup := app.Group("/api/v1/matching", middleware.RequireAuth())
		matchingGroup.Post("/auto-match", matchingHandlers.AutoMatch)
		matchingGroup.Post("/manual-match", matchingHandlers.ManualMatch)
		matchingGroup.Post("/retire", matchingHandlers.Retire)
		matchingGroup.Get("/match/:emitter_id", matchingHandlers.GetMatch)
		matchingGroup.Get("/history/:emitter_id", matchingHandlers.GetHistory)
		matchingGroup.Get("/stats", matchingHandlers.GetStats)

		proposalService := &propsvc.Service{
			DB:       db,
			Ledger:   ledger,
			Matching: matchingService,
			Caps:     caps,
		}
		proposalHandlers := &prophandler.Handlers{Service: proposalService}
		proposalGroup := app.Group("/api/v1/proposals", middleware.RequireAuth())
		proposalGroup.Post("/propose", proposalHandlers.Propose)
		proposalGroup.Post("/approve", proposalHandlers.Approve)
		proposalGroup.Get("/proposal/:emitter_id", proposalHandlers.GetProposal)
		proposalGroup.Post("/purge-expired", proposalHandlers.PurgeExpired)

		preferenceService := &prefsvc.Service{DB: db}
		preferenceHandlers := &prefhandler.Handlers{Service: preferenceService}
		preferenceGroup := app.Group("/api/v1/preferences", middleware.RequireAuth())
		preferenceGroup.Put("/set", preferenceHandlers.Set)
		preferenceGroup.Get("/view", preferenceHandlers.View)

		adminService := &adminsvc.Service{DB: db, Caps: caps, Matching: matchingService, Registry: registry}
		adminHandlers := &adminhandler.Handlers{Service: adminService}
		adminGroup := app.Group("/api/v1/admin", middleware.RequireAuth())
		adminGroup.Post("/pause", adminHandlers.Pause)
		adminGroup.Post("/unpause", adminHandlers.Unpause)
		adminGroup.Post("/set-fee", adminHandlers.SetFee)
		adminGroup.Post("/set-threshold", adminHandlers.SetThreshold)
		adminGroup.Post("/update-collaborators", adminHandlers.UpdateCollaborators)
		adminGroup.Get("/settings", adminHandlers.Settings)
	}

	return app, db, rdb, nil
}
