// Package server exposes the graph catalog over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinegraph/cinegraph"
	"github.com/cinegraph/cinegraph/pkg/config"
	"github.com/cinegraph/cinegraph/pkg/ingest"
	"github.com/cinegraph/cinegraph/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	graph    cinegraph.Cinegraph
	importer *ingest.Importer
	logger   *slog.Logger
	server   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, graph cinegraph.Cinegraph, importer *ingest.Importer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:   cfg,
		graph:    graph,
		importer: importer,
		logger:   logger,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the configured gin engine. Setup must be called first.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.graph)
	entityHandler := handlers.NewEntityHandler(s.graph)
	relationHandler := handlers.NewRelationHandler(s.graph)
	queryHandler := handlers.NewQueryHandler(s.graph)
	importHandler := handlers.NewImportHandler(s.graph, s.importer, s.config.Import, s.logger)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/version", healthHandler.VersionInfo)

	// Movie endpoints
	s.router.POST("/movies", entityHandler.CreateMovie)
	s.router.GET("/movies", entityHandler.ListMovies)
	s.router.GET("/movies/:title", entityHandler.GetMovie)
	s.router.DELETE("/movies/:title", entityHandler.DeleteMovie)
	s.router.GET("/movies/:title/cast", queryHandler.MovieCast)
	s.router.GET("/movies/:title/directors", queryHandler.MovieCrew)

	// Actor endpoints
	s.router.POST("/actors", entityHandler.CreateActor)
	s.router.GET("/actors", entityHandler.ListActors)
	s.router.GET("/actors/:name", entityHandler.GetActor)
	s.router.DELETE("/actors/:name", entityHandler.DeleteActor)
	s.router.GET("/actors/:name/filmography", queryHandler.ActorFilmography)
	s.router.GET("/actors/:name/directors", queryHandler.ActorCollaborators)

	// Director endpoints
	s.router.POST("/directors", entityHandler.CreateDirector)
	s.router.GET("/directors", entityHandler.ListDirectors)
	s.router.GET("/directors/:name", entityHandler.GetDirector)
	s.router.DELETE("/directors/:name", entityHandler.DeleteDirector)
	s.router.GET("/directors/:name/filmography", queryHandler.DirectorFilmography)
	s.router.GET("/directors/:name/actors", queryHandler.DirectorCollaborators)

	// Relationship endpoints
	s.router.POST("/actor_in_movie", relationHandler.ActorInMovie)
	s.router.POST("/director_in_movie", relationHandler.DirectorInMovie)

	// Search endpoints
	s.router.GET("/search/:type", queryHandler.Search)
	s.router.GET("/autocomplete/:type", queryHandler.Autocomplete)

	// Import endpoints
	s.router.POST("/import", importHandler.Import)
	s.router.POST("/bulk_import", importHandler.BulkImport)
	s.router.GET("/import/jobs/:id", importHandler.ImportJob)
	s.router.POST("/clear", importHandler.Clear)
}

// Start starts the server
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
