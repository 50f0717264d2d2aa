// internal/web/handlers/api/user.go
package api

import (
	"github.com/gofiber/fiber/v2"

	"passbi-cache/internal/models"
	remoteapi "passbi-cache/internal/services/api"
	"passbi-cache/internal/services/cache"
	"passbi-cache/internal/utils"
	webutils "passbi-cache/internal/web/utils"
)

// UserHandler endpoints over the user profile cache
type UserHandler struct {
	logger    *utils.Logger
	userCache *cache.UserProfileCache
	remote    remoteapi.RemoteAPI
}

// NewUserHandler creates the user handler
func NewUserHandler(logger *utils.Logger, userCache *cache.UserProfileCache, remote remoteapi.RemoteAPI) *UserHandler {
	return &UserHandler{logger: logger, userCache: userCache, remote: remote}
}

// HandleGet GET /api/user - cached profile; falls back to a stale
// snapshot when the network refresh fails
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	force := c.QueryBool("refresh", false)

	user, err := h.userCache.FetchUser(c.Context(), force)
	if err != nil {
		return webutils.HandleError(c, err, "profil indisponible")
	}

	justUpdated := h.userCache.ConsumeProfileUpdatedFlag(c.Context())

	return webutils.SendSuccessResponse(c, fiber.Map{
		"user":        user,
		"fullName":    user.FullName(),
		"displayName": user.DisplayName(),
		"justUpdated": justUpdated,
	}, "profil")
}

// HandleNames GET /api/user/names - derived names only; served from the
// cache without any validity gate so the UI always has something to show
func (h *UserHandler) HandleNames(c *fiber.Ctx) error {
	return webutils.SendSuccessResponse(c, fiber.Map{
		"fullName":    h.userCache.GetFullName(c.Context()),
		"displayName": h.userCache.GetDisplayName(c.Context()),
	}, "noms derives")
}

// HandleUpdate PATCH /api/user - pushes the update to the backend, then
// merges it into the cache so reads stay consistent with the server write
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var patch models.UserPatch
	if err := c.BodyParser(&patch); err != nil {
		return webutils.HandleValidationError(c, err, "corps de requete invalide")
	}
	if err := webutils.ValidateStruct(&patch); err != nil {
		return webutils.HandleValidationError(c, err, "mise a jour invalide")
	}
	if patch.IsEmpty() {
		return webutils.HandleValidationError(c, nil, "aucun champ a mettre a jour")
	}

	current := h.userCache.GetUser(c.Context())
	if current == nil {
		// no valid cached identity to update against
		if _, err := h.userCache.FetchUser(c.Context(), true); err != nil {
			return webutils.HandleError(c, err, "profil indisponible")
		}
		current = h.userCache.GetUser(c.Context())
		if current == nil {
			return webutils.HandleError(c, cache.ErrNoSnapshot, "profil indisponible")
		}
	}

	token, err := h.remote.GetToken(c.Context())
	if err != nil || token == "" {
		return webutils.HandleError(c, cache.ErrTokenMismatch, "session requise")
	}

	if _, err := h.remote.UpdateUser(c.Context(), current.ID, patch, token); err != nil {
		return webutils.HandleError(c, err, "mise a jour du profil echouee")
	}

	updated, err := h.userCache.UpdateUser(c.Context(), patch)
	if err != nil {
		return webutils.HandleError(c, err, "mise a jour du cache echouee")
	}

	return webutils.SendSuccessResponse(c, fiber.Map{
		"user":        updated,
		"fullName":    updated.FullName(),
		"displayName": updated.DisplayName(),
	}, "profil mis a jour")
}

// HandleLogout POST /api/logout - clears both caches; the server-side
// logout is best effort and never blocks the local clear
func (h *UserHandler) HandleLogout(userCache *cache.UserProfileCache, operatorCache *cache.OperatorCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.remote.Logout(c.Context()); err != nil {
			h.logger.Warnf("server-side logout failed (ignored): %v", err)
		}

		if err := userCache.Clear(c.Context()); err != nil {
			h.logger.Errorf("clearing user cache failed: %v", err)
		}
		if err := operatorCache.Clear(c.Context()); err != nil {
			h.logger.Errorf("clearing operator cache failed: %v", err)
		}

		return webutils.SendSuccessResponse(c, nil, "deconnexion effectuee")
	}
}
