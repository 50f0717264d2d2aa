package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"passbi-cache/config"
	"passbi-cache/internal/models"
	"passbi-cache/internal/services/api"
	"passbi-cache/internal/services/network"
	"passbi-cache/internal/services/store"
	"passbi-cache/internal/utils"
)

// OperatorCache serves an always-available (possibly stale) snapshot of
// operator/zone/station/tariff data while coordinating when to hit the
// network. Tiers: memory -> durable store -> network; a refresh failure
// never destroys the last known good snapshot.
type OperatorCache struct {
	config  *config.Config
	logger  *utils.Logger
	store   store.DurableStore
	remote  api.RemoteAPI
	monitor network.Monitor

	mu          sync.RWMutex
	operators   []models.OperatorWithZones
	icons       map[string]string
	demDikk     *models.OperatorWithZones
	lastLoaded  time.Time
	demLoaded   time.Time
	lastError   error
	initialized bool

	initGuard    flightGuard
	fetchGuard   flightGuard
	demDikkGuard flightGuard
	throttle     *RefreshThrottle
}

// NewOperatorCache creates the operator cache; call Initialize before use
func NewOperatorCache(cfg *config.Config, logger *utils.Logger, durable store.DurableStore,
	remote api.RemoteAPI, monitor network.Monitor) *OperatorCache {

	return &OperatorCache{
		config:   cfg,
		logger:   logger,
		store:    durable,
		remote:   remote,
		monitor:  monitor,
		icons:    make(map[string]string),
		throttle: NewRefreshThrottle(cfg.MinRefreshInterval),
	}
}

// Initialize loads any durable snapshot and the icon sub-cache into
// memory. Idempotent; concurrent calls share a single load.
func (oc *OperatorCache) Initialize(ctx context.Context) error {
	oc.mu.RLock()
	done := oc.initialized
	oc.mu.RUnlock()
	if done {
		return nil
	}

	leader, wait := oc.initGuard.begin()
	if !leader {
		return wait()
	}

	var err error
	defer func() { oc.initGuard.finish(err) }()

	// re-check: a previous leader may have finished between the fast
	// path and leadership
	oc.mu.RLock()
	done = oc.initialized
	oc.mu.RUnlock()
	if done {
		return nil
	}

	oc.hydrateFromStore(ctx)
	oc.loadIcons(ctx)
	oc.loadDemDikkFromStore(ctx)

	oc.mu.Lock()
	oc.initialized = true
	count := len(oc.operators)
	oc.mu.Unlock()

	oc.logger.Infof("operator cache initialized - %d operators restored", count)
	return nil
}

// Fetch returns the operator snapshot, going to the network when the
// snapshot is stale or forceRefresh is set. On refresh failure the last
// known good data is returned together with a non-nil error. A
// non-forced call that observes an in-flight fetch returns immediately
// with the current snapshot instead of starting a duplicate.
func (oc *OperatorCache) Fetch(ctx context.Context, forceRefresh bool) ([]models.OperatorWithZones, error) {
	for {
		leader, wait := oc.fetchGuard.begin()
		if leader {
			break
		}
		if !forceRefresh {
			// background trigger: rely on the in-flight fetch's side effects
			return oc.Snapshot(), nil
		}
		// forced callers await the active flight, then take their own turn
		if err := wait(); err != nil && errors.Is(err, context.Canceled) {
			return oc.Snapshot(), err
		}
	}

	var fetchErr error
	defer func() { oc.fetchGuard.finish(fetchErr) }()

	if !forceRefresh {
		// serve something quickly: restore the durable snapshot into
		// memory regardless of its freshness
		oc.mu.RLock()
		empty := len(oc.operators) == 0
		oc.mu.RUnlock()
		if empty {
			oc.hydrateFromStore(ctx)
		}
	}

	oc.mu.RLock()
	lastLoaded := oc.lastLoaded
	oc.mu.RUnlock()

	if !forceRefresh && !IsStale(lastLoaded, oc.config.OperatorFreshness, time.Now()) {
		return oc.Snapshot(), nil
	}

	if !oc.monitor.IsConnected(ctx) {
		fetchErr = ErrNoConnection
		oc.setLastError(fetchErr)
		return oc.Snapshot(), fetchErr
	}

	fetched, err := oc.remote.GetOperator(ctx)
	if err != nil {
		fetchErr = fmt.Errorf("refresh operateurs: %w", err)
		oc.setLastError(fetchErr)
		oc.logger.Warnf("operator refresh failed, serving cached snapshot: %v", err)
		return oc.Snapshot(), fetchErr
	}

	oc.applySnapshot(ctx, fetched, time.Now())
	oc.throttle.MarkSuccess(time.Now())
	oc.logger.Infof("operator snapshot refreshed - %d operators", len(fetched))

	return oc.Snapshot(), nil
}

// Refresh forces a fetch but no-ops inside the minimum inter-refresh
// interval of the last successful refresh
func (oc *OperatorCache) Refresh(ctx context.Context) ([]models.OperatorWithZones, error) {
	if !oc.throttle.Allow(time.Now()) {
		oc.logger.Debug("refresh skipped: inside minimum refresh interval")
		return oc.Snapshot(), ErrRefreshThrottled
	}
	return oc.Fetch(ctx, true)
}

// GetByID resolves one operator: memory first, then a lazy Initialize,
// then at most one forced refresh. ErrOperatorNotFound is a normal
// negative result meaning the identifier does not exist server-side.
func (oc *OperatorCache) GetByID(ctx context.Context, operatorID string) (*models.OperatorWithZones, error) {
	if op := oc.lookup(operatorID); op != nil {
		return op, nil
	}

	oc.mu.RLock()
	ready := oc.initialized
	oc.mu.RUnlock()
	if !ready {
		if err := oc.Initialize(ctx); err != nil {
			return nil, err
		}
		if op := oc.lookup(operatorID); op != nil {
			return op, nil
		}
	}

	// one forced refresh, never more
	if _, err := oc.Fetch(ctx, true); err != nil && len(oc.Snapshot()) == 0 {
		return nil, err
	}

	if op := oc.lookup(operatorID); op != nil {
		return op, nil
	}
	return nil, ErrOperatorNotFound
}

// FetchDemDikk returns the Dem Dikk network normalized to the shared
// operator form, with the same memory -> durable -> network tiering
func (oc *OperatorCache) FetchDemDikk(ctx context.Context, forceRefresh bool) (*models.OperatorWithZones, error) {
	leader, wait := oc.demDikkGuard.begin()
	if !leader {
		if err := wait(); err != nil {
			return oc.demDikkSnapshot(), err
		}
		return oc.demDikkSnapshot(), nil
	}

	var fetchErr error
	defer func() { oc.demDikkGuard.finish(fetchErr) }()

	oc.mu.RLock()
	cached := oc.demDikk
	loaded := oc.demLoaded
	oc.mu.RUnlock()

	if cached != nil && !forceRefresh && !IsStale(loaded, oc.config.OperatorFreshness, time.Now()) {
		return oc.demDikkSnapshot(), nil
	}

	if !oc.monitor.IsConnected(ctx) {
		if cached != nil {
			fetchErr = ErrNoConnection
			return oc.demDikkSnapshot(), fetchErr
		}
		fetchErr = ErrNoConnection
		return nil, fetchErr
	}

	resp, err := oc.remote.GetDemDikk(ctx)
	if err != nil {
		if cached != nil {
			fetchErr = fmt.Errorf("refresh demdikk: %w", err)
			return oc.demDikkSnapshot(), fetchErr
		}
		fetchErr = fmt.Errorf("refresh demdikk: %w", err)
		return nil, fetchErr
	}

	normalized := models.NormalizeDemDikk(resp)
	now := time.Now()

	oc.mu.Lock()
	oc.demDikk = &normalized
	oc.demLoaded = now
	oc.mu.Unlock()

	if envelope, err := models.WrapEnvelope(normalized, now); err == nil {
		if data, err := json.Marshal(envelope); err == nil {
			if err := oc.store.Set(ctx, keyDemDikkSnapshot, data); err != nil {
				oc.logger.Warnf("persisting demdikk snapshot failed: %v", err)
			}
		}
	}

	oc.logger.Infof("demdikk snapshot refreshed - %d zones", len(normalized.Zones))
	return oc.demDikkSnapshot(), nil
}

// Snapshot returns a copy of the in-memory operator list
func (oc *OperatorCache) Snapshot() []models.OperatorWithZones {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	cp := make([]models.OperatorWithZones, len(oc.operators))
	copy(cp, oc.operators)
	return cp
}

// Icons returns a copy of the operatorId -> logoUrl sub-cache
func (oc *OperatorCache) Icons() map[string]string {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	cp := make(map[string]string, len(oc.icons))
	for id, url := range oc.icons {
		cp[id] = url
	}
	return cp
}

// Clear wipes memory and durable snapshots (logout path)
func (oc *OperatorCache) Clear(ctx context.Context) error {
	oc.mu.Lock()
	oc.operators = nil
	oc.icons = make(map[string]string)
	oc.demDikk = nil
	oc.lastLoaded = time.Time{}
	oc.demLoaded = time.Time{}
	oc.lastError = nil
	oc.mu.Unlock()

	oc.throttle.Reset()

	var firstErr error
	for _, key := range []string{keyOperatorSnapshot, keyOperatorIcons, keyDemDikkSnapshot} {
		if err := oc.store.Remove(ctx, key); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	oc.logger.Info("operator cache cleared")
	return firstErr
}

// Status reports cache state for the web surface
func (oc *OperatorCache) Status() map[string]interface{} {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	status := map[string]interface{}{
		"initialized": oc.initialized,
		"operators":   len(oc.operators),
		"icons":       len(oc.icons),
		"inFlight":    oc.fetchGuard.active(),
		"stale":       IsStale(oc.lastLoaded, oc.config.OperatorFreshness, time.Now()),
	}
	if !oc.lastLoaded.IsZero() {
		status["lastLoaded"] = oc.lastLoaded.Format(time.RFC3339)
	}
	if oc.lastError != nil {
		status["lastError"] = oc.lastError.Error()
	}
	return status
}

// LastError last refresh error, nil after a successful refresh
func (oc *OperatorCache) LastError() error {
	oc.mu.RLock()
	defer oc.mu.RUnlock()
	return oc.lastError
}

// lookup finds an operator by id in memory, returning a copy
func (oc *OperatorCache) lookup(operatorID string) *models.OperatorWithZones {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	for _, op := range oc.operators {
		if op.Operator.ID == operatorID {
			cp := op
			return &cp
		}
	}
	return nil
}

// applySnapshot replaces memory and durable state wholesale after a
// successful network fetch; uniqueness per operator id is enforced here
func (oc *OperatorCache) applySnapshot(ctx context.Context, fetched []models.OperatorWithZones, now time.Time) {
	deduped := make([]models.OperatorWithZones, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	icons := make(map[string]string, len(fetched))

	for _, op := range fetched {
		if seen[op.Operator.ID] {
			oc.logger.Warnf("duplicate operator id %s in response, keeping first", op.Operator.ID)
			continue
		}
		seen[op.Operator.ID] = true
		deduped = append(deduped, op)
		if op.Operator.LogoURL != "" {
			icons[op.Operator.ID] = op.Operator.LogoURL
		}
	}

	oc.mu.Lock()
	oc.operators = deduped
	oc.icons = icons
	oc.lastLoaded = now
	oc.lastError = nil
	oc.mu.Unlock()

	// snapshot and icon map are persisted under separate keys so icons
	// stay available even if the main payload later fails to parse
	if envelope, err := models.WrapEnvelope(deduped, now); err == nil {
		if data, err := json.Marshal(envelope); err == nil {
			if err := oc.store.Set(ctx, keyOperatorSnapshot, data); err != nil {
				oc.logger.Warnf("persisting operator snapshot failed: %v", err)
			}
		}
	}
	if envelope, err := models.WrapEnvelope(icons, now); err == nil {
		if data, err := json.Marshal(envelope); err == nil {
			if err := oc.store.Set(ctx, keyOperatorIcons, data); err != nil {
				oc.logger.Warnf("persisting icon cache failed: %v", err)
			}
		}
	}
}

// hydrateFromStore restores the durable operator snapshot into memory,
// keeping the envelope's own timestamp as the staleness signal
func (oc *OperatorCache) hydrateFromStore(ctx context.Context) {
	data, err := oc.store.Get(ctx, keyOperatorSnapshot)
	if err != nil {
		if !errors.Is(err, store.ErrMiss) {
			oc.logger.Warnf("reading operator snapshot failed: %v", err)
		}
		return
	}

	var envelope models.CachedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		oc.logger.Warnf("operator snapshot corrupt, ignoring: %v", err)
		return
	}

	var operators []models.OperatorWithZones
	if err := envelope.DecodeInto(&operators); err != nil {
		oc.logger.Warnf("operator snapshot payload corrupt, ignoring: %v", err)
		return
	}

	oc.mu.Lock()
	oc.operators = operators
	oc.lastLoaded = envelope.Time()
	oc.mu.Unlock()

	oc.logger.Debugf("operator snapshot restored from store - %d operators, age %v",
		len(operators), time.Since(envelope.Time()).Round(time.Second))
}

// loadIcons restores the icon sub-cache from its own key
func (oc *OperatorCache) loadIcons(ctx context.Context) {
	data, err := oc.store.Get(ctx, keyOperatorIcons)
	if err != nil {
		return
	}

	var envelope models.CachedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}

	icons := make(map[string]string)
	if err := envelope.DecodeInto(&icons); err != nil {
		return
	}

	oc.mu.Lock()
	oc.icons = icons
	oc.mu.Unlock()
}

// loadDemDikkFromStore restores the normalized Dem Dikk snapshot
func (oc *OperatorCache) loadDemDikkFromStore(ctx context.Context) {
	data, err := oc.store.Get(ctx, keyDemDikkSnapshot)
	if err != nil {
		return
	}

	var envelope models.CachedEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return
	}

	var snapshot models.OperatorWithZones
	if err := envelope.DecodeInto(&snapshot); err != nil {
		return
	}

	oc.mu.Lock()
	oc.demDikk = &snapshot
	oc.demLoaded = envelope.Time()
	oc.mu.Unlock()
}

// demDikkSnapshot returns a copy of the cached Dem Dikk network
func (oc *OperatorCache) demDikkSnapshot() *models.OperatorWithZones {
	oc.mu.RLock()
	defer oc.mu.RUnlock()

	if oc.demDikk == nil {
		return nil
	}
	cp := *oc.demDikk
	return &cp
}

// setLastError records a refresh failure without touching the snapshot
func (oc *OperatorCache) setLastError(err error) {
	oc.mu.Lock()
	oc.lastError = err
	oc.mu.Unlock()
}
