// internal/services/cache/interface.go - cache contracts
package cache

import (
	"context"

	"passbi-cache/internal/models"
)

// OperatorCacheInterface contract of the operator reference-data cache.
// Consumers read through this interface and never call the remote API
// directly for cached entities.
type OperatorCacheInterface interface {
	// Initialize loads durable snapshots into memory; idempotent
	Initialize(ctx context.Context) error

	// Fetch returns the operator snapshot, refreshing from the network
	// when stale or forced; a stale snapshot plus a non-nil error means
	// the refresh failed but cached data is still being served
	Fetch(ctx context.Context, forceRefresh bool) ([]models.OperatorWithZones, error)

	// Refresh forces a fetch, rate-limited by the minimum refresh interval
	Refresh(ctx context.Context) ([]models.OperatorWithZones, error)

	// GetByID looks up one operator, refreshing at most once when absent
	GetByID(ctx context.Context, operatorID string) (*models.OperatorWithZones, error)

	// Icons returns the operatorId -> logoUrl sub-cache
	Icons() map[string]string

	// Clear wipes memory and durable snapshots
	Clear(ctx context.Context) error
}

// UserCacheInterface contract of the user profile cache
type UserCacheInterface interface {
	// Initialize loads the durable profile snapshot; idempotent
	Initialize(ctx context.Context) error

	// IsValid reports whether the cached profile may be served as-is
	IsValid(ctx context.Context) bool

	// GetUser returns the cached profile, nil when invalid
	GetUser(ctx context.Context) *models.UnifiedUser

	// GetFullName / GetDisplayName derived names recomputed on every call
	GetFullName(ctx context.Context) string
	GetDisplayName(ctx context.Context) string

	// FetchUser fetches the profile, single-flighted; falls back to any
	// cached snapshot when the network fails
	FetchUser(ctx context.Context, forceRefresh bool) (*models.UnifiedUser, error)

	// UpdateUser merges a partial update locally, persists and notifies
	UpdateUser(ctx context.Context, patch models.UserPatch) (*models.UnifiedUser, error)

	// Subscribe registers a listener for profile changes; returns unsubscribe
	Subscribe(listener func(*models.UnifiedUser)) func()

	// Invalidate marks the snapshot stale without deleting it
	Invalidate(ctx context.Context)

	// Clear removes memory, durable snapshot and token binding
	Clear(ctx context.Context) error
}

var (
	_ OperatorCacheInterface = (*OperatorCache)(nil)
	_ UserCacheInterface     = (*UserProfileCache)(nil)
)

// durable store keys owned by the cache layer
const (
	keyOperatorSnapshot = "operators:snapshot"
	keyOperatorIcons    = "operators:icons"
	keyDemDikkSnapshot  = "operators:demdikk"
	keyUserProfile      = "user:profile"
	keyUserFetchedAt    = "user:fetched_at"
	keyProfileUpdated   = "user:profile_updated"
)
