package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invoice-api/internal/adapters/storage"
	"invoice-api/internal/config"
	"invoice-api/internal/handlers"
	"invoice-api/internal/middleware"
	"invoice-api/internal/router"
	"invoice-api/pkg/lambda"
	"invoice-api/pkg/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS())
	engine.Use(middleware.SecurityHeaders())
	engine.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))
	engine.Use(middleware.RateLimiter(100, 200))
	if container.AuthService != nil {
		// Attach identity to request logs everywhere; the API routes
		// add the hard guard below
		engine.Use(middleware.OptionalAuthentication(container.AuthService))
	}
	engine.Use(middleware.StructuredLogger())
	engine.Use(middleware.AuditLogger())

	engine.GET("/health", func(c *gin.Context) {
		if err := container.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"version":   "1.0.0",
			"mode":      config.GetDeploymentMode(),
		})
	})

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// The invoice routes run through the same dispatch table the Lambda
	// uses, so both front doors share one routing and handler path
	apiRouter := router.New()
	handlers.RegisterRoutes(apiRouter, handlers.NewInvoiceHandler(container.InvoiceService))
	mountAPIRoutes(engine, apiRouter, container)

	if container.AuthService != nil {
		authHandler := handlers.NewAuthHandler(container.AuthService)
		auth := engine.Group("/auth")
		if cfg.Environment != "production" {
			auth.POST("/token", authHandler.IssueToken)
		}
		auth.POST("/refresh", authHandler.RefreshToken)
		auth.GET("/me", middleware.Authentication(container.AuthService), authHandler.GetCurrentUser)
	}

	// Serves attachments stored by the local backend; pair with
	// STORAGE_BASE_URL so stored file_url values resolve here
	engine.GET("/files/*key", func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")

		content, err := container.InvoiceService.GetAttachment(c.Request.Context(), key)
		if err != nil {
			if storage.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Filename))
		c.Data(http.StatusOK, content.ContentType, content.Data)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	container.Logger.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"auth":        cfg.AuthEnabled(),
	}).Info("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	container.Logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		container.Logger.Fatalf("Server forced to shutdown: %v", err)
	}

	container.Logger.Info("Server exited")
}

// mountAPIRoutes exposes every registered dispatch route on the gin
// engine. The gin route only establishes that the path exists; the
// request is resolved again by the dispatch table so placeholder
// binding behaves exactly as it does behind API Gateway.
func mountAPIRoutes(engine *gin.Engine, apiRouter *router.Router, container *server.Container) {
	dispatch := dispatchThrough(apiRouter)

	for _, rt := range apiRouter.Routes() {
		chain := make([]gin.HandlerFunc, 0, 3)
		if container.AuthService != nil {
			chain = append(chain, middleware.Authentication(container.AuthService))
			if rt.Method != http.MethodGet {
				chain = append(chain, middleware.Authorization(string(middleware.RoleAdmin)))
			}
		}
		chain = append(chain, dispatch)

		engine.Handle(rt.Method, ginPath(rt.Pattern), chain...)
	}
}

// ginPath converts {name} placeholder segments to gin :name parameters
func ginPath(pattern string) string {
	parts := strings.Split(pattern, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			parts[i] = ":" + part[1:len(part)-1]
		}
	}
	return strings.Join(parts, "/")
}

func dispatchThrough(apiRouter *router.Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
			return
		}

		headers := make(map[string]string, len(c.Request.Header))
		for name, values := range c.Request.Header {
			if len(values) > 0 {
				headers[name] = values[0]
			}
		}

		queryParams := map[string]string{}
		for name, values := range c.Request.URL.Query() {
			if len(values) > 0 {
				queryParams[name] = values[0]
			}
		}

		req := &lambda.Request{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Headers:     headers,
			QueryParams: queryParams,
			Body:        body,
		}

		resp, err := apiRouter.Dispatch(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		contentType := resp.Headers["Content-Type"]
		if contentType == "" {
			contentType = "application/json"
		}
		for name, value := range resp.Headers {
			if name != "Content-Type" {
				c.Header(name, value)
			}
		}
		c.Data(resp.StatusCode, contentType, resp.Body)
	}
}
