// internal/web/routes/routes.go
package routes

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"passbi-cache/config"
	remoteapi "passbi-cache/internal/services/api"
	"passbi-cache/internal/services/cache"
	"passbi-cache/internal/utils"
	apiHandlers "passbi-cache/internal/web/handlers/api"
)

// Router registers the HTTP surface over the cache layer
type Router struct {
	app      *fiber.App
	config   *config.Config
	logger   *utils.Logger
	handlers *Handlers
}

// Handlers API handlers
type Handlers struct {
	Operator *apiHandlers.OperatorHandler
	User     *apiHandlers.UserHandler
	Cache    *apiHandlers.CacheHandler
}

// Dependencies everything the routes need
type Dependencies struct {
	Config         *config.Config
	Logger         *utils.Logger
	OperatorCache  *cache.OperatorCache
	UserCache      *cache.UserProfileCache
	RefreshManager *cache.RefreshManager
	RemoteAPI      remoteapi.RemoteAPI
}

// NewRouter creates the router and its handlers
func NewRouter(app *fiber.App, deps *Dependencies) *Router {
	handlers := &Handlers{
		Operator: apiHandlers.NewOperatorHandler(deps.OperatorCache),
		User:     apiHandlers.NewUserHandler(deps.Logger, deps.UserCache, deps.RemoteAPI),
		Cache:    apiHandlers.NewCacheHandler(deps.OperatorCache, deps.UserCache, deps.RefreshManager),
	}

	return &Router{
		app:      app,
		config:   deps.Config,
		logger:   deps.Logger,
		handlers: handlers,
	}
}

// SetupRoutes registers every route
func (r *Router) SetupRoutes(deps *Dependencies) {
	r.setupAPIRoutes(deps)
	r.setupHealthRoute()
	r.setup404Handler()
}

// setupAPIRoutes API routes
func (r *Router) setupAPIRoutes(deps *Dependencies) {
	api := r.app.Group("/api")

	// operator cache
	operators := api.Group("/operators")
	operators.Get("/", r.handlers.Operator.HandleList)
	operators.Get("/icons", r.handlers.Operator.HandleIcons)
	operators.Get("/demdikk", r.handlers.Operator.HandleDemDikk)
	operators.Get("/:id", r.handlers.Operator.HandleGetByID)

	// user profile cache
	user := api.Group("/user")
	user.Get("/", r.handlers.User.HandleGet)
	user.Get("/names", r.handlers.User.HandleNames)
	user.Patch("/", r.handlers.User.HandleUpdate)

	// cache control
	cacheGroup := api.Group("/cache")
	cacheGroup.Get("/status", r.handlers.Cache.HandleStatus)
	cacheGroup.Post("/refresh", r.handlers.Cache.HandleRefresh)
	cacheGroup.Post("/invalidate", r.handlers.Cache.HandleInvalidateUser)

	// session
	api.Post("/logout", r.handlers.User.HandleLogout(deps.UserCache, deps.OperatorCache))
}

// setupHealthRoute liveness check
func (r *Router) setupHealthRoute() {
	r.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now(),
		})
	})
}

// setup404Handler JSON 404 for unknown paths
func (r *Router) setup404Handler() {
	r.app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   true,
				"message": "endpoint introuvable",
				"path":    c.Path(),
			})
		}
		return c.Status(fiber.StatusNotFound).SendString("introuvable: " + c.Path())
	})
}
