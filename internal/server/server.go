package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/ballbox/internal/snapshot"
)

var startTime = time.Now()

// Server exposes one Runner over HTTP and a websocket frame stream.
type Server struct {
	runner *Runner
	router *gin.Engine
}

func New(r *Runner) *Server {
	s := &Server{runner: r, router: gin.New()}
	s.router.Use(gin.Recovery(), cors)
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.health)
	s.router.GET("/ws", func(c *gin.Context) {
		s.runner.Hub().Serve(c.Writer, c.Request)
	})

	api := s.router.Group("/api")
	{
		api.GET("/snapshot", s.getSnapshot)
		api.PUT("/snapshot", s.putSnapshot)
		api.POST("/save", s.save)
		api.POST("/reset", s.reset)
		api.POST("/pointer", s.pointer)
		api.POST("/resize", s.resize)
		api.GET("/frame", s.frame)
		api.GET("/inspect", s.inspect)
		api.GET("/energy", s.energy)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ballbox",
		"clients": s.runner.Hub().Len(),
		"uptime":  time.Since(startTime).String(),
	})
}

func (s *Server) getSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Snapshot())
}

func (s *Server) putSnapshot(c *gin.Context) {
	var snap snapshot.Snapshot
	snap.InspectedIndex = -1
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.runner.Restore(&snap); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.runner.Frame())
}

func (s *Server) save(c *gin.Context) {
	err := s.runner.Save(c.Request.Context())
	switch {
	case errors.Is(err, ErrNoStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("[API] save snapshot: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.Status(http.StatusNoContent)
	}
}

func (s *Server) reset(c *gin.Context) {
	s.runner.Reset()
	c.JSON(http.StatusOK, s.runner.Frame())
}

func (s *Server) pointer(c *gin.Context) {
	var p Pointer
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.runner.Pointer(p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) resize(c *gin.Context) {
	var size Size
	if err := c.ShouldBindJSON(&size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.runner.Resize(size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.runner.Frame())
}

func (s *Server) frame(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Frame())
}

func (s *Server) inspect(c *gin.Context) {
	in, ok := s.runner.Inspect()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no ball inspected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"color":    in.Color,
		"mass":     in.Mass,
		"radius":   in.Radius,
		"position": gin.H{"x": in.X, "y": in.Y},
		"velocity": gin.H{"x": in.VX, "y": in.VY, "speed": in.Speed},
		"energy":   gin.H{"x": in.Energy.X, "y": in.Energy.Y, "total": in.Energy.Total()},
	})
}

func (s *Server) energy(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Energy())
}

// ListenAndServe runs the hub, the simulation and the HTTP server until ctx
// is done. The scene is saved only after the server has shut down cleanly.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.runner.Hub().Run(ctx)
	go s.runner.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: s.router}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("[HTTP] server stopped")
	if err := s.runner.Save(shutdownCtx); err != nil && !errors.Is(err, ErrNoStore) {
		log.Printf("[SNAPSHOT] save on shutdown: %v", err)
	}
	return nil
}
