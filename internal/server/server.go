package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"status-sentiment/internal/auth"
	"status-sentiment/internal/handler"
	"status-sentiment/internal/middleware"
	"status-sentiment/internal/service"
)

// Deps are the collaborators the HTTP surface needs. Feed may be nil when
// VK login is not configured.
type Deps struct {
	DB       *sqlx.DB
	Statuses *service.StatusService
	Auth     auth.Service
	Feed     *handler.FeedHandler
	Labels   []string
}

type Server struct {
	router          *gin.Engine
	shutdownTimeout time.Duration
	logger          *zap.Logger
}

func NewServer(deps Deps, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())

	s := &Server{
		router:          router,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRoutes(deps Deps) {
	s.router.GET("/health", handler.HealthCheck(deps.DB, deps.Labels))

	authHandler := handler.NewAuthHandler(deps.Auth, s.logger)
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := s.router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(deps.Auth, s.logger))
	handler.NewStatusHandler(deps.Statuses, s.logger).RegisterRoutes(api)

	if deps.Feed != nil {
		deps.Feed.RegisterAuthRoutes(authGroup)
		deps.Feed.RegisterRoutes(api)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for up to the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("Server started", zap.String("address", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh

	s.logger.Info("Server exited")
	return nil
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}
