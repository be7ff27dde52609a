package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/SANATANIxAPI/pic/api/controllers"
	"github.com/SANATANIxAPI/pic/api/middlewares"
	"github.com/SANATANIxAPI/pic/enhance"
	"github.com/SANATANIxAPI/pic/tool"
)

// Server is the HTTP front end of the enhancement pipeline. The bot does not
// go through it; both call the same in-process Pipeline.
type Server struct {
	port   int
	server *http.Server
}

func NewServer(port int, pipeline *enhance.Pipeline) *Server {
	return &Server{
		port: port,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: setupRoutes(pipeline),
		},
	}
}

func setupRoutes(pipeline *enhance.Pipeline) *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(middlewares.AllowAllCORS())
	engine.Use(gin.Recovery())

	enhanceCtrl := controllers.NewEnhanceController(pipeline)

	engine.GET("/health", controllers.HandleHealth)
	apiGroup := engine.Group("/api")
	{
		apiGroup.POST("/enhance", enhanceCtrl.HandleEnhance)
		apiGroup.GET("/tiers", controllers.HandleTiers)
	}

	return engine
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	tool.DefaultLogger.Infof("Starting API server on http://0.0.0.0:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
