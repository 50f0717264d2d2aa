package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"passbi-cache/config"
	"passbi-cache/internal/utils"
)

// RefreshJournal receives the outcome of every background refresh
// attempt; implementations may ship it to an audit sink
type RefreshJournal interface {
	RecordRefresh(source string, operators int, duration time.Duration, refreshErr error)
}

// RefreshManager periodically checks the operator snapshot's age and
// refreshes it when stale, so consumers mostly hit warm data
type RefreshManager struct {
	config  *config.Config
	logger  *utils.Logger
	cache   *OperatorCache
	journal RefreshJournal // optional

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.RWMutex
	isRefreshing  bool
	lastRefreshAt time.Time
	lastOutcome   string
}

// NewRefreshManager creates the background refresh worker
func NewRefreshManager(cfg *config.Config, logger *utils.Logger, operatorCache *OperatorCache,
	journal RefreshJournal) *RefreshManager {

	ctx, cancel := context.WithCancel(context.Background())
	return &RefreshManager{
		config:  cfg,
		logger:  logger,
		cache:   operatorCache,
		journal: journal,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the refresh worker
func (rm *RefreshManager) Start() {
	go rm.run()
}

// Stop cancels the refresh worker
func (rm *RefreshManager) Stop() {
	rm.cancel()
}

// run checks staleness on a fixed period
func (rm *RefreshManager) run() {
	rm.logger.Infof("refresh worker started - check period: %v", rm.config.AutoRefreshCheck)

	ticker := time.NewTicker(rm.config.AutoRefreshCheck)
	defer ticker.Stop()

	// initial pass at startup
	rm.checkAndRefresh("startup")

	for {
		select {
		case <-rm.ctx.Done():
			rm.logger.Info("refresh worker stopped")
			return
		case <-ticker.C:
			rm.checkAndRefresh("periodic")
		}
	}
}

// checkAndRefresh runs a non-forced fetch; the cache's own staleness
// policy decides whether the network is actually hit
func (rm *RefreshManager) checkAndRefresh(source string) {
	rm.mu.Lock()
	if rm.isRefreshing {
		rm.mu.Unlock()
		return
	}
	rm.isRefreshing = true
	rm.mu.Unlock()

	defer func() {
		rm.mu.Lock()
		rm.isRefreshing = false
		rm.mu.Unlock()
	}()

	start := time.Now()
	snapshot, err := rm.cache.Fetch(rm.ctx, false)
	duration := time.Since(start)

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNoConnection):
		outcome = "offline"
		rm.logger.Debug("background refresh skipped: offline")
	default:
		outcome = "error"
		rm.logger.Warnf("background refresh failed (%s): %v", source, err)
	}

	rm.mu.Lock()
	rm.lastRefreshAt = start
	rm.lastOutcome = outcome
	rm.mu.Unlock()

	if rm.journal != nil {
		rm.journal.RecordRefresh(source, len(snapshot), duration, err)
	}
}

// ForceRefresh operator refresh entry point for the control API; the
// cache-level throttle still applies
func (rm *RefreshManager) ForceRefresh(ctx context.Context) error {
	start := time.Now()
	snapshot, err := rm.cache.Refresh(ctx)

	if rm.journal != nil && !errors.Is(err, ErrRefreshThrottled) {
		rm.journal.RecordRefresh("forced", len(snapshot), time.Since(start), err)
	}
	return err
}

// Status reports worker state for the web surface
func (rm *RefreshManager) Status() map[string]interface{} {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	status := map[string]interface{}{
		"isRefreshing": rm.isRefreshing,
		"checkPeriod":  rm.config.AutoRefreshCheck.String(),
		"lastOutcome":  rm.lastOutcome,
	}
	if !rm.lastRefreshAt.IsZero() {
		status["lastCheckAt"] = rm.lastRefreshAt.Format(time.RFC3339)
	}
	return status
}
