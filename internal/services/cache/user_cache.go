package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"passbi-cache/config"
	"passbi-cache/internal/models"
	"passbi-cache/internal/services/api"
	"passbi-cache/internal/services/network"
	"passbi-cache/internal/services/store"
	"passbi-cache/internal/utils"
)

// UserProfileCache serves the authenticated user's profile and
// preferences, bound to the session token active at the last successful
// fetch. A token change is an identity change, not staleness: the cached
// profile is cleared immediately instead of being served as a fallback.
type UserProfileCache struct {
	config  *config.Config
	logger  *utils.Logger
	store   store.DurableStore
	remote  api.RemoteAPI
	monitor network.Monitor

	mu          sync.RWMutex
	user        *models.UnifiedUser
	boundToken  string
	lastFetch   time.Time
	initialized bool

	initGuard  flightGuard
	fetchGuard flightGuard

	listenerMu sync.Mutex
	listeners  map[int]func(*models.UnifiedUser)
	nextID     int
}

// NewUserProfileCache creates the user cache; call Initialize before use
func NewUserProfileCache(cfg *config.Config, logger *utils.Logger, durable store.DurableStore,
	remote api.RemoteAPI, monitor network.Monitor) *UserProfileCache {

	return &UserProfileCache{
		config:    cfg,
		logger:    logger,
		store:     durable,
		remote:    remote,
		monitor:   monitor,
		listeners: make(map[int]func(*models.UnifiedUser)),
	}
}

// Initialize restores the durable profile snapshot into memory.
// Idempotent; concurrent calls share a single load.
func (uc *UserProfileCache) Initialize(ctx context.Context) error {
	uc.mu.RLock()
	done := uc.initialized
	uc.mu.RUnlock()
	if done {
		return nil
	}

	leader, wait := uc.initGuard.begin()
	if !leader {
		return wait()
	}

	var err error
	defer func() { uc.initGuard.finish(err) }()

	uc.mu.RLock()
	done = uc.initialized
	uc.mu.RUnlock()
	if done {
		return nil
	}

	uc.hydrateFromStore(ctx)

	uc.mu.Lock()
	uc.initialized = true
	restored := uc.user != nil
	uc.mu.Unlock()

	if restored {
		uc.logger.Info("user profile restored from durable store")
	} else {
		uc.logger.Debug("user cache initialized empty")
	}
	return nil
}

// IsValid reports whether the cached profile may be served as-is:
// data present, token unchanged, snapshot fresh. When no token is
// obtainable at all the session is treated as offline and the cache is
// trusted. A token mismatch clears everything before returning false.
func (uc *UserProfileCache) IsValid(ctx context.Context) bool {
	uc.mu.RLock()
	hasData := uc.user != nil
	bound := uc.boundToken
	lastFetch := uc.lastFetch
	uc.mu.RUnlock()

	if !hasData {
		return false
	}

	current, err := uc.remote.GetToken(ctx)
	if err != nil || current == "" {
		// offline / logged out upstream: trust the cache
		return true
	}

	if bound != "" && current != bound {
		uc.logger.Warn("session token changed, clearing cached profile")
		if err := uc.Clear(ctx); err != nil {
			uc.logger.Errorf("clearing user cache after token change failed: %v", err)
		}
		return false
	}

	return !IsStale(lastFetch, uc.config.UserFreshness, time.Now())
}

// GetUser returns the cached profile, nil when invalid
func (uc *UserProfileCache) GetUser(ctx context.Context) *models.UnifiedUser {
	if !uc.IsValid(ctx) {
		return nil
	}

	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.user == nil {
		return nil
	}
	cp := *uc.user
	return &cp
}

// GetFullName derived full name, recomputed from the current snapshot
func (uc *UserProfileCache) GetFullName(_ context.Context) string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.user.FullName()
}

// GetDisplayName derived short name, recomputed from the current snapshot
func (uc *UserProfileCache) GetDisplayName(_ context.Context) string {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.user.DisplayName()
}

// FetchUser fetches the profile from the network, single-flighted:
// concurrent calls share one in-flight operation and its outcome. When
// the network fails, any cached snapshot (even stale) is returned
// instead of the error; the error propagates only with nothing cached.
func (uc *UserProfileCache) FetchUser(ctx context.Context, forceRefresh bool) (*models.UnifiedUser, error) {
	if !forceRefresh && uc.IsValid(ctx) {
		return uc.cachedCopy(), nil
	}

	leader, wait := uc.fetchGuard.begin()
	if !leader {
		if err := wait(); err != nil {
			return uc.fallbackOr(nil, err)
		}
		return uc.cachedCopy(), nil
	}

	var fetchErr error
	defer func() { uc.fetchGuard.finish(fetchErr) }()

	token, err := uc.remote.GetToken(ctx)
	if err != nil || token == "" {
		fetchErr = fmt.Errorf("fetch profil: pas de session")
		return uc.fallbackOr(ErrNoSnapshot, fetchErr)
	}

	if !uc.monitor.IsConnected(ctx) {
		fetchErr = ErrNoConnection
		return uc.fallbackOr(ErrNoSnapshot, fetchErr)
	}

	payload, err := uc.remote.GetUser(ctx, token)
	if err != nil {
		fetchErr = fmt.Errorf("fetch profil: %w", err)
		uc.logger.Warnf("profile fetch failed, serving cached snapshot: %v", err)
		return uc.fallbackOr(ErrNoSnapshot, fetchErr)
	}

	unified := payload.Unified()
	now := time.Now()

	uc.mu.Lock()
	uc.user = &unified
	uc.boundToken = token
	uc.lastFetch = now
	uc.mu.Unlock()

	uc.persist(ctx, &unified, now)
	uc.notify(uc.cachedCopy())

	uc.logger.Infof("profile refreshed for %s", utils.MaskToken(token))
	return uc.cachedCopy(), nil
}

// UpdateUser merges a partial update into the cached profile without a
// network round-trip: the caller performs its own server write and calls
// this to keep the cache consistent with it. Derived names follow
// automatically since they are recomputed from the merged raw fields.
func (uc *UserProfileCache) UpdateUser(ctx context.Context, patch models.UserPatch) (*models.UnifiedUser, error) {
	if patch.IsEmpty() {
		return uc.cachedCopy(), nil
	}

	uc.mu.Lock()
	if uc.user == nil {
		uc.mu.Unlock()
		return nil, ErrNoSnapshot
	}
	merged := patch.ApplyTo(*uc.user)
	uc.user = &merged
	uc.mu.Unlock()

	now := time.Now()
	uc.persist(ctx, &merged, now)

	// one-shot flag consumed by the UI layer after a profile update
	if err := uc.store.Set(ctx, keyProfileUpdated, []byte("1")); err != nil {
		uc.logger.Warnf("setting profile-updated flag failed: %v", err)
	}

	uc.notify(uc.cachedCopy())
	return uc.cachedCopy(), nil
}

// ConsumeProfileUpdatedFlag reads and deletes the one-shot update flag
func (uc *UserProfileCache) ConsumeProfileUpdatedFlag(ctx context.Context) bool {
	if _, err := uc.store.Get(ctx, keyProfileUpdated); err != nil {
		return false
	}
	if err := uc.store.Remove(ctx, keyProfileUpdated); err != nil {
		uc.logger.Warnf("removing profile-updated flag failed: %v", err)
	}
	return true
}

// Subscribe registers a listener invoked with the current (possibly nil)
// profile on every successful fetch, update or clear. A panicking
// listener never prevents the others from being notified. Returns an
// unsubscribe function.
func (uc *UserProfileCache) Subscribe(listener func(*models.UnifiedUser)) func() {
	uc.listenerMu.Lock()
	id := uc.nextID
	uc.nextID++
	uc.listeners[id] = listener
	uc.listenerMu.Unlock()

	return func() {
		uc.listenerMu.Lock()
		delete(uc.listeners, id)
		uc.listenerMu.Unlock()
	}
}

// Invalidate resets the freshness timestamp without deleting data: the
// next IsValid/FetchUser treats the snapshot as stale, but reads before
// that still see the old data.
func (uc *UserProfileCache) Invalidate(ctx context.Context) {
	uc.mu.Lock()
	uc.lastFetch = time.Time{}
	uc.mu.Unlock()

	if err := uc.store.Remove(ctx, keyUserFetchedAt); err != nil {
		uc.logger.Warnf("removing profile timestamp failed: %v", err)
	}
	uc.logger.Debug("user profile invalidated")
}

// Clear removes memory, durable snapshot and token binding, then
// notifies subscribers with nil (logout path)
func (uc *UserProfileCache) Clear(ctx context.Context) error {
	uc.mu.Lock()
	uc.user = nil
	uc.boundToken = ""
	uc.lastFetch = time.Time{}
	uc.mu.Unlock()

	var firstErr error
	for _, key := range []string{keyUserProfile, keyUserFetchedAt, keyProfileUpdated} {
		if err := uc.store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	uc.notify(nil)
	uc.logger.Info("user cache cleared")
	return firstErr
}

// Status reports cache state for the web surface
func (uc *UserProfileCache) Status() map[string]interface{} {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	status := map[string]interface{}{
		"initialized": uc.initialized,
		"hasProfile":  uc.user != nil,
		"inFlight":    uc.fetchGuard.active(),
		"stale":       IsStale(uc.lastFetch, uc.config.UserFreshness, time.Now()),
	}
	if !uc.lastFetch.IsZero() {
		status["lastFetch"] = uc.lastFetch.Format(time.RFC3339)
	}
	if uc.boundToken != "" {
		status["boundToken"] = utils.MaskToken(uc.boundToken)
	}
	return status
}

// cachedCopy returns a copy of whatever is in memory, bypassing validity
func (uc *UserProfileCache) cachedCopy() *models.UnifiedUser {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.user == nil {
		return nil
	}
	cp := *uc.user
	return &cp
}

// fallbackOr returns the cached snapshot when one exists, swallowing the
// fetch error; otherwise returns emptyErr wrapped around it
func (uc *UserProfileCache) fallbackOr(emptyErr, fetchErr error) (*models.UnifiedUser, error) {
	if cached := uc.cachedCopy(); cached != nil {
		return cached, nil
	}
	if emptyErr != nil {
		return nil, fmt.Errorf("%w: %v", emptyErr, fetchErr)
	}
	return nil, fetchErr
}

// persist writes the profile and its timestamp under separate keys
func (uc *UserProfileCache) persist(ctx context.Context, user *models.UnifiedUser, now time.Time) {
	envelope, err := models.WrapEnvelope(user, now)
	if err != nil {
		uc.logger.Errorf("encoding profile snapshot failed: %v", err)
		return
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		uc.logger.Errorf("encoding profile envelope failed: %v", err)
		return
	}
	if err := uc.store.Set(ctx, keyUserProfile, data); err != nil {
		uc.logger.Warnf("persisting profile snapshot failed: %v", err)
	}
	if err := uc.store.Set(ctx, keyUserFetchedAt, []byte(strconv.FormatInt(now.UnixMilli(), 10))); err != nil {
		uc.logger.Warnf("persisting profile timestamp failed: %v", err)
	}
}

// hydrateFromStore restores the profile and its timestamp from the store
func (uc *UserProfileCache) hydrateFromStore(ctx context.Context) {
	data, err := uc.store.Get(ctx, keyUserProfile)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			uc.logger.Warnf("reading profile snapshot failed: %v", err)
		}
		return
	}

	var envelope models.CachedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		uc.logger.Warnf("profile snapshot corrupt, ignoring: %v", err)
		return
	}

	var user models.UnifiedUser
	if err := envelope.DecodeInto(&user); err != nil {
		uc.logger.Warnf("profile payload corrupt, ignoring: %v", err)
		return
	}

	lastFetch := envelope.Time()
	if raw, err := uc.store.Get(ctx, keyUserFetchedAt); err == nil {
		if millis, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			lastFetch = time.UnixMilli(millis)
		}
	} else if errors.Is(err, store.ErrMiss) {
		// timestamp was invalidated: keep the data but mark it stale
		lastFetch = time.Time{}
	}

	uc.mu.Lock()
	uc.user = &user
	uc.lastFetch = lastFetch
	uc.mu.Unlock()
}

// notify calls every listener with the given profile; panics in one
// listener are isolated so the rest still run
func (uc *UserProfileCache) notify(user *models.UnifiedUser) {
	uc.listenerMu.Lock()
	listeners := make([]func(*models.UnifiedUser), 0, len(uc.listeners))
	for _, l := range uc.listeners {
		listeners = append(listeners, l)
	}
	uc.listenerMu.Unlock()

	for _, listener := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					uc.logger.Errorf("profile listener panicked: %v", r)
				}
			}()
			listener(user)
		}()
	}
}
