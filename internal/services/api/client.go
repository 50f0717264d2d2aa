// internal/services/api/client.go - remote API contract
package api

import (
	"context"

	"passbi-cache/internal/models"
)

// RemoteAPI the PassBi backend operations consumed by the cache layer.
// Every call may fail with a network or server error; callers decide
// whether to fall back to cached data.
type RemoteAPI interface {
	// GetToken returns the current session token; "" means no session,
	// which is a valid state, not an error
	GetToken(ctx context.Context) (string, error)

	// GetOperator fetches the full operator/zone/station/tariff snapshot
	GetOperator(ctx context.Context) ([]models.OperatorWithZones, error)

	// GetUser fetches the profile bound to the given token
	GetUser(ctx context.Context, token string) (*models.UserPayload, error)

	// UpdateUser applies a partial profile update server-side
	UpdateUser(ctx context.Context, id string, patch models.UserPatch, token string) (*models.UpdateResponse, error)

	// Logout terminates the session server-side; best effort
	Logout(ctx context.Context) error

	// GetDemDikk fetches the Dem Dikk line tree
	GetDemDikk(ctx context.Context) (*models.DemDikkResponse, error)
}
