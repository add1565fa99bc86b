// Package web serves the showcase HTTP API and websocket endpoints.
package web

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/go-synth/pkg/hub"
	"github.com/teslashibe/go-synth/pkg/relay"
	"github.com/teslashibe/go-synth/pkg/viewer"
)

// Config holds server configuration.
type Config struct {
	// AppName is reported by fiber and /health.
	AppName string

	// Version is reported by /health.
	Version string

	// StaticDir is served at /. Empty disables static files.
	StaticDir string

	// AccessLog receives one line per request. Nil disables access logging.
	AccessLog io.Writer

	Logger *slog.Logger
}

// Option is a functional option for configuring the server.
type Option func(*Config)

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(c *Config) { c.Version = v }
}

// WithStaticDir serves the page assets from dir.
func WithStaticDir(dir string) Option {
	return func(c *Config) { c.StaticDir = dir }
}

// WithAccessLog enables request logging to w.
func WithAccessLog(w io.Writer) Option {
	return func(c *Config) { c.AccessLog = w }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		AppName: "SYNTH-01 Showcase",
		Version: "dev",
		Logger:  slog.Default(),
	}
}

// Server is the showcase web server
type Server struct {
	app     *fiber.App
	cfg     *Config
	logger  *slog.Logger
	started time.Time

	viewer *viewer.Viewer
	relay  *relay.Relay
	poses  *hub.Hub
}

// NewServer builds the fiber app. The hub must be running for /ws/pose
// subscribers to receive anything.
func NewServer(v *viewer.Viewer, r *relay.Relay, poses *hub.Hub, opts ...Option) *Server {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		logger:  cfg.Logger.With("component", "web"),
		started: time.Now(),
		viewer:  v,
		relay:   r,
		poses:   poses,
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if cfg.AccessLog != nil {
		app.Use(fiberlogger.New(fiberlogger.Config{Output: cfg.AccessLog}))
	}

	app.Get("/health", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/dev-mode/toggle", s.handleToggleDevMode)
	api.Get("/chat", s.handleTranscript)
	api.Post("/chat", s.handleChat)
	api.Post("/speech/stop", s.handleStopSpeech)
	api.Post("/camera/:action", s.handleCamera)
	api.Put("/move-speed", s.handleMoveSpeed)
	api.Post("/editor/select/:asset", s.handleSelect)
	api.Put("/editor/field", s.handleEditField)
	api.Get("/params", s.handleParams)
	api.Post("/params/copy", s.handleCopyParams)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	r.RegisterRoutes(app)
	app.Get("/ws/pose", poses.Handler())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
