// Package server exposes a CV store over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aretw0/cvpro/pkg/core"
	"github.com/aretw0/cvpro/pkg/query"
	"github.com/aretw0/cvpro/pkg/render"
	"github.com/aretw0/cvpro/pkg/view"
)

// DefaultShutdownTimeout bounds graceful shutdown in Run.
const DefaultShutdownTimeout = 5 * time.Second

// Config holds the server dependencies.
type Config struct {
	Store   *core.Store
	Logger  *slog.Logger
	Lang    string          // html lang attribute of GET /cv.
	Printer *render.Printer // Nil disables GET /cv.pdf.
}

// Server is the HTTP front of a store.
type Server struct {
	app     *fiber.App
	store   *core.Store
	logger  *slog.Logger
	lang    string
	printer *render.Printer
	queries *query.Engine

	view        *view.Coalescer
	unsubscribe func()

	mu        sync.Mutex
	revision  uint64
	printPage string
}

// New creates the server and registers its routes.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, core.ErrNoBackend
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		store:   cfg.Store,
		logger:  logger,
		lang:    cfg.Lang,
		printer: cfg.Printer,
		queries: query.New(),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "cvpro",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.view = view.NewCoalescer(s.invalidate, view.Replay)
	s.unsubscribe = cfg.Store.Subscribe(s.view.Handle)
	s.routes()
	return s, nil
}

// Close detaches the server from the store.
func (s *Server) Close() {
	s.unsubscribe()
}

// Revision counts the document changes the server has seen. Changes made
// inside one batch request count once.
func (s *Server) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Server) invalidate(core.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revision++
	s.printPage = ""
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()
	s.logger.Info("server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("server shutting down")
		return s.app.ShutdownWithTimeout(DefaultShutdownTimeout)
	}
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Get("/document", s.getDocument)
	api.Get("/path/:path", s.getPath)
	api.Put("/path/:path", s.setPath)
	api.Post("/batch", s.batch)

	coll := api.Group("/collections/:name")
	coll.Post("/items", s.addItem)
	coll.Patch("/items/:id", s.updateItem)
	coll.Delete("/items/:id", s.removeItem)
	coll.Post("/move", s.moveItem)
	coll.Post("/reorder", s.reorderItems)

	api.Get("/export", s.export)
	api.Post("/import", s.importDocument)
	api.Post("/reset", s.reset)
	api.Post("/save", s.save)
	api.Get("/validate", s.validate)
	api.Get("/query", s.query)
	api.Get("/state", s.state)

	s.app.Get("/", func(c *fiber.Ctx) error { return c.Redirect("/cv") })
	s.app.Get("/cv", s.page)
	s.app.Get("/cv.pdf", s.pdf)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, core.ErrParse):
		code = fiber.StatusBadRequest
	case errors.Is(err, core.ErrNotCollection):
		code = fiber.StatusNotFound
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
