// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/gateway"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/observability"
	"folio/internal/portfolio"
	"folio/internal/repository"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	gateway        gateway.IdentityGateway
	localGateway   *gateway.LocalGateway
	accountRepo    repository.AccountRepository
	stores         portfolio.Stores
	targets        *cache.TargetCache
	unsubscribe    gateway.Unsubscribe

	// One synchronizer per signed-in owner, created on first admin request
	// and dropped again on sign-out.
	syncMu sync.Mutex
	syncs  map[string]*portfolio.Synchronizer
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with an in-memory SQLite database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	accountRepo := repository.NewAccountRepository(db)
	stores := portfolio.Stores{
		Personal: repository.NewPersonalInfoRepository(db),
		About:    repository.NewAboutInfoRepository(db),
		Social:   repository.NewSocialMediaRepository(db),
		Websites: repository.NewWebsiteProjectRepository(db),
		Videos:   repository.NewVideoProjectRepository(db),
		Blogs:    repository.NewBlogPostRepository(db),
	}

	gw := gateway.NewLocalGateway(gateway.LocalGatewayOptions{
		Accounts:       accountRepo,
		Redis:          redisClient,
		JWTSecret:      cfg.JWTSecret,
		SessionTTL:     time.Duration(cfg.SessionTTLHours) * time.Hour,
		SignupDisabled: cfg.SignupDisabled,
	})

	prom := observability.HTTPMetrics("folio-api")

	srv := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		gateway:        gw,
		localGateway:   gw,
		accountRepo:    accountRepo,
		stores:         stores,
		targets:        cache.NewTargetCache(redisClient),
		syncs:          make(map[string]*portfolio.Synchronizer),
	}

	// Release the per-owner synchronizer when its owner signs out; without
	// this the map grows with every user who ever opened the dashboard.
	srv.unsubscribe = gw.Subscribe(func(ev gateway.Event) {
		if ev.Type != gateway.EventSignedOut || ev.Session == nil {
			return
		}
		srv.syncMu.Lock()
		delete(srv.syncs, ev.Session.UserID)
		srv.syncMu.Unlock()
	})

	return srv, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", s.Signup)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/session", s.GetSession)

	// Public portfolio routes. Specific routes before the :username catch-all.
	api.Get("/portfolio/search", s.SearchPortfolios)
	api.Get("/portfolio", s.GetPortfolio)
	api.Get("/portfolio/:username", s.GetPortfolio)

	// Session event stream for signed-in clients
	api.Get("/session/events", s.AuthRequired(), s.SessionEventsHandler())

	// Admin dashboard routes
	admin := api.Group("/admin", s.AuthRequired())
	admin.Get("/portfolio", s.GetMyPortfolio)
	admin.Put("/personal-info", s.UpdatePersonalInfo)
	admin.Put("/about-info", s.UpdateAboutInfo)
	admin.Put("/social-media", s.UpdateSocialMedia)
	admin.Post("/website-projects", s.AddWebsiteProject)
	admin.Put("/website-projects/:id", s.UpdateWebsiteProject)
	admin.Delete("/website-projects/:id", s.RemoveWebsiteProject)
	admin.Post("/video-projects", s.AddVideoProject)
	admin.Put("/video-projects/:id", s.UpdateVideoProject)
	admin.Delete("/video-projects/:id", s.RemoveVideoProject)
	admin.Post("/blog-posts", s.AddBlogPost)
	admin.Put("/blog-posts/:id", s.UpdateBlogPost)
	admin.Delete("/blog-posts/:id", s.RemoveBlogPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns middleware that resolves the bearer token into a
// session and rejects the request when none resolves.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		session, err := s.gateway.GetSession(c.Context(), token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if session == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("session", session)
		c.Locals("token", token)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, session.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// bearerToken extracts the token from the Authorization header, falling back
// to a query parameter for websocket upgrades where headers are awkward.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return c.Query("token")
}

// requestSession returns the session placed in locals by AuthRequired.
func requestSession(c *fiber.Ctx) *gateway.Session {
	if session, ok := c.Locals("session").(*gateway.Session); ok {
		return session
	}
	return nil
}

// optionalSession resolves a session if the request carries a valid token,
// without enforcing one.
func (s *Server) optionalSession(c *fiber.Ctx) *gateway.Session {
	token := bearerToken(c)
	if token == "" {
		return nil
	}
	session, err := s.gateway.GetSession(c.Context(), token)
	if err != nil {
		return nil
	}
	return session
}

// syncFor returns the synchronizer owning the given session's portfolio,
// loading the snapshot on first use.
func (s *Server) syncFor(c *fiber.Ctx, session *gateway.Session) (*portfolio.Synchronizer, error) {
	s.syncMu.Lock()
	sync, ok := s.syncs[session.UserID]
	if !ok {
		sync = portfolio.NewSynchronizer(s.stores, s.targets)
		s.syncs[session.UserID] = sync
	}
	s.syncMu.Unlock()

	if !ok {
		if err := sync.Load(c.Context(), "", session); err != nil {
			return nil, err
		}
	}
	return sync, nil
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Folio API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	if s.localGateway != nil {
		if err := s.localGateway.Close(); err != nil {
			log.Printf("error closing identity gateway: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
