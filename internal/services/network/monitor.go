// internal/services/network/monitor.go - connectivity check
package network

import (
	"context"
	"net/http"

	"passbi-cache/config"
	"passbi-cache/internal/utils"
)

// Monitor reports current connectivity on demand; consulted by the
// caches before any network refresh
type Monitor interface {
	IsConnected(ctx context.Context) bool
}

// HTTPMonitor probes a lightweight endpoint with a short timeout
type HTTPMonitor struct {
	logger   *utils.Logger
	client   *http.Client
	probeURL string
}

// NewHTTPMonitor creates a connectivity monitor from config
func NewHTTPMonitor(cfg *config.Config, logger *utils.Logger) *HTTPMonitor {
	return &HTTPMonitor{
		logger:   logger,
		client:   &http.Client{Timeout: cfg.ProbeTimeout},
		probeURL: cfg.ProbeURL,
	}
}

// IsConnected performs the probe; any response counts as connected,
// even an error status - reachability is what matters here
func (hm *HTTPMonitor) IsConnected(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, hm.probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := hm.client.Do(req)
	if err != nil {
		hm.logger.Debugf("connectivity probe failed: %v", err)
		return false
	}
	resp.Body.Close()
	return true
}
