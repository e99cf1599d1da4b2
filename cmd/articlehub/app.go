package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/articlehub/internal/db"
	"github.com/nkiryanov/articlehub/internal/handlers"
	"github.com/nkiryanov/articlehub/internal/handlers/render"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/repository"
	"github.com/nkiryanov/articlehub/internal/repository/postgres"
	"github.com/nkiryanov/articlehub/internal/service/article"
	"github.com/nkiryanov/articlehub/internal/service/auth"
	"github.com/nkiryanov/articlehub/internal/service/user"
	"github.com/nkiryanov/articlehub/internal/session"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and apply schema
	pool, err := db.ConnectAndMigrate(ctx, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	router, err := newRouter(c, postgres.NewStorage(pool), logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		pool:       pool,
	}, nil
}

// Wire services and handlers on top of storage
func newRouter(c *Config, storage repository.Storage, logger logger.Logger) (*chi.Mux, error) {
	hasher, err := auth.HasherByName(c.PasswordHasher)
	if err != nil {
		return nil, err
	}

	sessions, err := session.NewStore(c.SecretKey, session.Options{MaxAge: c.SessionMaxAge, Secure: c.CookieSecure})
	if err != nil {
		return nil, fmt.Errorf("error while creating session store. Err: %w", err)
	}

	renderer, err := render.NewRenderer(sessions, logger)
	if err != nil {
		return nil, fmt.Errorf("error while loading templates. Err: %w", err)
	}

	return handlers.NewRouter(
		user.NewService(hasher, storage),
		article.NewService(storage),
		sessions,
		renderer,
		logger,
	), nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

func (s *ServerApp) Close() {
	s.pool.Close()
}
