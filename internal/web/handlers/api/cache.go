// internal/web/handlers/api/cache.go
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"passbi-cache/internal/services/cache"
	webutils "passbi-cache/internal/web/utils"
)

// CacheHandler control endpoints for the cache layer
type CacheHandler struct {
	operatorCache  *cache.OperatorCache
	userCache      *cache.UserProfileCache
	refreshManager *cache.RefreshManager
	startTime      time.Time
}

// NewCacheHandler creates the cache control handler
func NewCacheHandler(operatorCache *cache.OperatorCache, userCache *cache.UserProfileCache,
	refreshManager *cache.RefreshManager) *CacheHandler {

	return &CacheHandler{
		operatorCache:  operatorCache,
		userCache:      userCache,
		refreshManager: refreshManager,
		startTime:      time.Now(),
	}
}

// HandleStatus GET /api/cache/status
func (h *CacheHandler) HandleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"operators": h.operatorCache.Status(),
		"user":      h.userCache.Status(),
		"uptime":    time.Since(h.startTime).String(),
	}
	if h.refreshManager != nil {
		status["refreshManager"] = h.refreshManager.Status()
	}
	return webutils.SendSuccessResponse(c, status, "etat du cache")
}

// HandleRefresh POST /api/cache/refresh - forced refresh, still subject
// to the rate limit
func (h *CacheHandler) HandleRefresh(c *fiber.Ctx) error {
	start := time.Now()

	err := h.refreshManager.ForceRefresh(c.Context())
	if err != nil {
		if errors.Is(err, cache.ErrRefreshThrottled) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   true,
				"message": "rafraichissement trop frequent",
				"details": err.Error(),
			})
		}
		return webutils.HandleError(c, err, "rafraichissement echoue")
	}

	return webutils.SendSuccessResponse(c, fiber.Map{
		"operators":  len(h.operatorCache.Snapshot()),
		"durationMs": time.Since(start).Milliseconds(),
	}, "cache rafraichi")
}

// HandleInvalidateUser POST /api/cache/invalidate - marks the user
// profile stale without discarding the data
func (h *CacheHandler) HandleInvalidateUser(c *fiber.Ctx) error {
	h.userCache.Invalidate(c.Context())
	return webutils.SendSuccessResponse(c, nil, "profil marque comme perime")
}
