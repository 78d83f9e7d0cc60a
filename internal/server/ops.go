package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// registerOps mounts the operational endpoints as static gin routes.
func (s *Server) registerOps() {
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/readyz", s.handleReadyz)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/routes", s.handleRoutes)
	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// handleHealthz is the liveness probe: the process is up.
func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// handleReadyz is the readiness probe. Serving requires a frozen route
// table and a listener that is still accepting; readiness flips off as
// soon as draining starts.
func (s *Server) handleReadyz(c *gin.Context) {
	status := "ok"
	checks := gin.H{}

	if s.registry.Frozen() {
		checks["routeTable"] = "frozen"
	} else {
		checks["routeTable"] = "building"
		status = "unavailable"
	}

	if s.ready.Load() {
		checks["listener"] = "accepting"
	} else {
		checks["listener"] = "not accepting"
		status = "unavailable"
	}

	if s.pool != nil {
		checks["admission"] = gin.H{
			"inFlight": s.pool.InFlight(),
			"capacity": s.pool.Capacity(),
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "checks": checks})
}

// handleVersion reports the build identity.
func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, s.build)
}

// handleRoutes lists the registered route table.
func (s *Server) handleRoutes(c *gin.Context) {
	routes := s.registry.Routes()
	c.JSON(http.StatusOK, gin.H{
		"count":  len(routes),
		"routes": routes,
	})
}
