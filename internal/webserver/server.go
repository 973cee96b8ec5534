// Package webserver serves local batch exports read-only over HTTP so that
// consumers can fetch artifacts written by local-disk sinks.
package webserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds the static file server settings
type Config struct {
	Enabled   bool   `toml:"enabled"`
	Address   string `toml:"address"`
	Port      int    `toml:"port"`
	Directory string `toml:"directory"`
}

// Server exposes one export directory under /exports plus a health endpoint
type Server struct {
	addr      string
	dir       string
	server    *http.Server
	listener  net.Listener
	startTime time.Time
}

// NewServer creates a static file server for the export directory
func NewServer(cfg Config) *Server {
	return &Server{
		addr: fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		dir:  cfg.Directory,
	}
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.StaticFS("/exports", gin.Dir(s.dir, true))

	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.listener = listener
	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound listen address, valid after Start
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}
