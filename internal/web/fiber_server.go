// internal/web/fiber_server.go
package web

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"passbi-cache/config"
	remoteapi "passbi-cache/internal/services/api"
	"passbi-cache/internal/services/cache"
	"passbi-cache/internal/utils"
	"passbi-cache/internal/web/middleware"
	"passbi-cache/internal/web/routes"
)

// customErrorHandler JSON error handler for Fiber
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error":     true,
		"message":   getErrorMessage(code),
		"details":   err.Error(),
		"code":      code,
		"timestamp": time.Now(),
		"path":      c.Path(),
	})
}

// getErrorMessage user-facing message per status code
func getErrorMessage(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "requete invalide"
	case fiber.StatusUnauthorized:
		return "authentification requise"
	case fiber.StatusNotFound:
		return "ressource introuvable"
	case fiber.StatusTooManyRequests:
		return "trop de requetes"
	case fiber.StatusInternalServerError:
		return "erreur interne du serveur"
	case fiber.StatusServiceUnavailable:
		return "service temporairement indisponible"
	default:
		return "erreur inattendue"
	}
}

// FiberServer HTTP surface over the cache layer
type FiberServer struct {
	app       *fiber.App
	config    *config.Config
	logger    *utils.Logger
	isRunning bool
}

// NewFiberServer creates the web server and wires the routes
func NewFiberServer(
	cfg *config.Config,
	logger *utils.Logger,
	operatorCache *cache.OperatorCache,
	userCache *cache.UserProfileCache,
	refreshManager *cache.RefreshManager,
	remote remoteapi.RemoteAPI,
) *FiberServer {

	app := fiber.New(fiber.Config{
		ErrorHandler:     customErrorHandler,
		DisableKeepalive: false,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      120 * time.Second,
	})

	app.Use(recover.New())
	app.Use(middleware.CORSConfig())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.RequestLogger())

	fs := &FiberServer{
		app:       app,
		config:    cfg,
		logger:    logger,
		isRunning: false,
	}

	deps := &routes.Dependencies{
		Config:         cfg,
		Logger:         logger,
		OperatorCache:  operatorCache,
		UserCache:      userCache,
		RefreshManager: refreshManager,
		RemoteAPI:      remote,
	}
	router := routes.NewRouter(app, deps)
	router.SetupRoutes(deps)

	return fs
}

// Start starts the web server (blocking)
func (fs *FiberServer) Start(port int) error {
	fs.isRunning = true

	address := fmt.Sprintf(":%d", port)

	fs.logger.Infof("starting web server on %s", address)
	fs.logger.Infof("API endpoints: http://localhost:%d/api/", port)

	return fs.app.Listen(address)
}

// Stop shuts the web server down
func (fs *FiberServer) Stop() error {
	if !fs.isRunning {
		return nil
	}

	fs.isRunning = false
	fs.logger.Info("stopping web server...")

	return fs.app.Shutdown()
}

// IsRunning reports whether the server is up
func (fs *FiberServer) IsRunning() bool {
	return fs.isRunning
}

// GetApp returns the Fiber app (tests)
func (fs *FiberServer) GetApp() *fiber.App {
	return fs.app
}
