// internal/web/handlers/api/operators.go
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"passbi-cache/internal/services/cache"
	webutils "passbi-cache/internal/web/utils"
)

// OperatorHandler read endpoints over the operator cache
type OperatorHandler struct {
	operatorCache *cache.OperatorCache
}

// NewOperatorHandler creates the operator handler
func NewOperatorHandler(operatorCache *cache.OperatorCache) *OperatorHandler {
	return &OperatorHandler{operatorCache: operatorCache}
}

// HandleList GET /api/operators - serves the cached snapshot; when the
// refresh behind it failed the stale data is still returned, with the
// error exposed as a non-blocking flag
func (h *OperatorHandler) HandleList(c *fiber.Ctx) error {
	force := c.QueryBool("refresh", false)

	operators, err := h.operatorCache.Fetch(c.Context(), force)
	if err != nil && len(operators) == 0 {
		return webutils.HandleError(c, err, "operateurs indisponibles")
	}
	if err != nil {
		// stale snapshot with a failed refresh behind it: still served,
		// with the error exposed as a non-blocking flag
		return c.JSON(fiber.Map{
			"success":      true,
			"data":         operators,
			"count":        len(operators),
			"staleData":    true,
			"refreshError": err.Error(),
		})
	}
	return webutils.SendListResponse(c, operators, len(operators), "operateurs")
}

// HandleGetByID GET /api/operators/:id
func (h *OperatorHandler) HandleGetByID(c *fiber.Ctx) error {
	operatorID := c.Params("id")
	if operatorID == "" {
		return webutils.HandleValidationError(c, nil, "identifiant operateur manquant")
	}

	operator, err := h.operatorCache.GetByID(c.Context(), operatorID)
	if err != nil {
		if errors.Is(err, cache.ErrOperatorNotFound) {
			return webutils.HandleError(c, err, "operateur introuvable")
		}
		return webutils.HandleError(c, err, "recherche operateur echouee")
	}

	return webutils.SendSuccessResponse(c, operator, "operateur trouve")
}

// HandleIcons GET /api/operators/icons
func (h *OperatorHandler) HandleIcons(c *fiber.Ctx) error {
	icons := h.operatorCache.Icons()
	return webutils.SendSuccessResponse(c, icons, "icones operateurs")
}

// HandleDemDikk GET /api/operators/demdikk
func (h *OperatorHandler) HandleDemDikk(c *fiber.Ctx) error {
	force := c.QueryBool("refresh", false)

	snapshot, err := h.operatorCache.FetchDemDikk(c.Context(), force)
	if err != nil && snapshot == nil {
		return webutils.HandleError(c, err, "reseau dem dikk indisponible")
	}

	response := fiber.Map{
		"success":   true,
		"data":      snapshot,
		"staleData": err != nil,
	}
	if err != nil {
		response["refreshError"] = err.Error()
	}
	return c.JSON(response)
}
