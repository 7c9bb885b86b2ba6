package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"mcpool/internal/config"
	"mcpool/internal/metrics"
	"mcpool/internal/session"
	"mcpool/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionManager is the part of session.Manager the API serves.
type SessionManager interface {
	GetCapabilities(ctx context.Context, servers config.ServerSet, userID, projectID string) ([]session.Capability, error)
	CallTool(ctx context.Context, servers config.ServerSet, server, tool string, args map[string]interface{}) (*mcp.CallToolResult, error)
	Refresh(ctx context.Context, servers config.ServerSet, server string) ([]session.Capability, error)
	CleanupSession(userID, projectID string) bool
	CleanupAll(ctx context.Context) error
	ListContexts() []session.ContextRecord
	ListPools() []session.PoolStats
}

// Options configures the admin API server.
type Options struct {
	Host     string
	Port     int
	Manager  SessionManager
	Profiles *ProfileTable
	Metrics  metrics.Metrics
}

// Server exposes the session manager over HTTP.
type Server struct {
	opts   Options
	router *gin.Engine

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopMetrics()
	}
	if opts.Profiles == nil {
		opts.Profiles = NewProfileTable(config.Config{})
	}

	s := &Server{opts: opts}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.ginlogger)
	router.Use(s.metricsMiddleware)

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Metrics.GetRegistry(), promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	v1.POST("/capabilities", s.handleGetCapabilities)
	v1.POST("/tools/call", s.handleCallTool)
	v1.GET("/profiles", s.handleListProfiles)
	v1.GET("/pools", s.handleListPools)

	sessions := v1.Group("/sessions")
	sessions.GET("", s.handleListSessions)
	sessions.POST("/refresh", s.handleRefresh)
	sessions.DELETE("/:userId/:projectId", s.handleCleanupSession)
	sessions.DELETE("", s.handleCleanupAll)

	return router
}

// Start begins serving on the configured address.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	httpServer := s.httpServer
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("API", err, "Admin API server error")
		}
	}()

	logging.Info("API", "Admin API listening on %s", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down, waiting for in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.httpServer = nil
	s.listener = nil
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	logging.Info("API", "Stopping admin API server")
	return httpServer.Shutdown(ctx)
}

func (s *Server) ginlogger(c *gin.Context) {
	c.Next()

	for _, ginErr := range c.Errors {
		logging.Error("API", ginErr.Err, "%s %s failed", c.Request.Method, c.Request.URL.Path)
	}
}

func (s *Server) metricsMiddleware(c *gin.Context) {
	now := time.Now()

	c.Next()

	elapsed := float64(time.Since(now)) / float64(time.Second)
	endpoint := c.FullPath()
	if endpoint == "" {
		endpoint = "unmatched"
	}
	s.opts.Metrics.ObserveAPIRequest(endpoint, c.Request.Method, strconv.Itoa(c.Writer.Status()), elapsed)
}

// abortWithError records err for the logger and writes the mapped status.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), ErrorResponse{Error: err.Error()})
}

// resolveServers turns a selection into the server set to use.
func (s *Server) resolveServers(sel ServerSelection) (config.ServerSet, error) {
	switch {
	case sel.Profile != "" && len(sel.Servers) > 0:
		return nil, &BadRequestError{Err: errors.New("specify either profile or servers, not both")}
	case sel.Profile != "":
		servers, ok := s.opts.Profiles.Lookup(sel.Profile)
		if !ok {
			return nil, &NotFoundError{ResourceType: "profile", ResourceName: sel.Profile}
		}
		return servers, nil
	case len(sel.Servers) > 0:
		if errs := config.ValidateServerSet(sel.Servers, "servers"); errs.HasErrors() {
			return nil, errs
		}
		return sel.Servers, nil
	default:
		return nil, &BadRequestError{Err: errors.New("profile or servers is required")}
	}
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		abortWithError(c, &BadRequestError{Err: err})
		return false
	}
	return true
}
