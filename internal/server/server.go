package server

import (
	"context"

	"backend-trailview/internal/auth"
	"backend-trailview/internal/config"
	"backend-trailview/internal/db"
	"backend-trailview/internal/session"
	"backend-trailview/internal/stream"
	"backend-trailview/internal/trail"
	"backend-trailview/internal/view/elevation"
	"backend-trailview/internal/view/terrain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Catalog  *trail.Catalog
	Sessions *session.Manager
}

// NewServer wires the HTTP surface. Session render loops stop when ctx
// is cancelled or Close is called.
func NewServer(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, redisClient *redis.Client, catalog *trail.Catalog) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if catalog == nil {
		catalog = trail.NewCatalog(nil)
	}
	hub := stream.NewHub(redisClient)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       pg,
		Redis:    redisClient,
		Stream:   hub,
		Catalog:  catalog,
		Sessions: session.NewManager(ctx, catalog, hub, SessionOptions(cfg)),
	}

	registerRoutes(s)
	return s
}

// SessionOptions maps configuration onto the per-session views.
func SessionOptions(cfg config.Config) session.Options {
	return session.Options{
		Chart: elevation.Options{
			Width:          cfg.ChartWidth,
			Height:         cfg.ChartHeight,
			PixelTolerance: cfg.HoverPixelTolerance,
			Interval:       cfg.HoverThrottle(),
		},
		Terrain: terrain.Options{
			Width:         cfg.TerrainWidth,
			Height:        cfg.TerrainHeight,
			FrameInterval: cfg.FrameInterval(),
		},
	}
}

// Querier returns the pool as a db.Querier, or nil when Postgres is not
// configured.
func (s *Server) Querier() db.Querier {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

// Close tears down live sessions and the Redis subscription.
func (s *Server) Close() {
	s.Sessions.CloseAll()
	s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"trails":   s.Catalog.Current().Len(),
			"sessions": s.Sessions.Len(),
		})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.Querier()))
	trail.RegisterRoutes(s.App.Group("/trails"), s.Catalog, trail.NewService(s.Querier()), jwtMiddleware)
	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.Sessions)
}
