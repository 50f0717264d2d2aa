package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"passbi-cache/config"
	"passbi-cache/internal/models"
	"passbi-cache/internal/utils"
)

// PassBiClient HTTP client for the PassBi backend
type PassBiClient struct {
	config   *config.Config
	logger   *utils.Logger
	client   *http.Client
	validate *validator.Validate

	tokenMu sync.RWMutex
	token   string // current session token, "" when anonymous
}

// NewPassBiClient creates a new PassBi API client
func NewPassBiClient(cfg *config.Config, logger *utils.Logger) *PassBiClient {
	return &PassBiClient{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: cfg.APITimeout,
		},
		validate: validator.New(),
		token:    cfg.APIToken,
	}
}

// GetToken returns the current session token; "" means no session
func (pc *PassBiClient) GetToken(_ context.Context) (string, error) {
	pc.tokenMu.RLock()
	defer pc.tokenMu.RUnlock()
	return pc.token, nil
}

// SetToken replaces the session token (login / token refresh)
func (pc *PassBiClient) SetToken(token string) {
	pc.tokenMu.Lock()
	defer pc.tokenMu.Unlock()
	pc.token = token
}

// GetOperator fetches the operator/zone/station/tariff snapshot
func (pc *PassBiClient) GetOperator(ctx context.Context) ([]models.OperatorWithZones, error) {
	body, err := pc.doGet(ctx, "/operators", "")
	if err != nil {
		return nil, err
	}

	var resp models.OperatorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("operators: decodage JSON: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("operators: %s", resp.GetErrorMessage())
	}

	for i := range resp.Data {
		if err := pc.validate.Struct(&resp.Data[i]); err != nil {
			return nil, fmt.Errorf("operators: payload invalide (index %d): %w", i, err)
		}
	}

	pc.logger.Debugf("operators fetched: %d", len(resp.Data))
	return resp.Data, nil
}

// GetUser fetches the profile bound to the given token
func (pc *PassBiClient) GetUser(ctx context.Context, token string) (*models.UserPayload, error) {
	if token == "" {
		return nil, fmt.Errorf("user: token manquant")
	}

	body, err := pc.doGet(ctx, "/user", token)
	if err != nil {
		return nil, err
	}

	var resp models.UserResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("user: decodage JSON: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("user: %s", resp.GetErrorMessage())
	}

	return &resp.Data, nil
}

// UpdateUser applies a partial profile update server-side
func (pc *PassBiClient) UpdateUser(ctx context.Context, id string, patch models.UserPatch, token string) (*models.UpdateResponse, error) {
	if err := pc.validate.Struct(&patch); err != nil {
		return nil, fmt.Errorf("update user: patch invalide: %w", err)
	}

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("update user: encodage: %w", err)
	}

	apiURL := pc.config.APIBaseURL + "/user/" + id
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("update user: requete: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update user: appel echoue: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("update user: lecture reponse: %w", err)
	}

	var updateResp models.UpdateResponse
	if err := json.Unmarshal(body, &updateResp); err != nil {
		return nil, fmt.Errorf("update user: decodage JSON: %w", err)
	}
	if updateResp.Status == 0 {
		updateResp.Status = resp.StatusCode
	}
	if !updateResp.IsSuccess() {
		return &updateResp, fmt.Errorf("update user: HTTP %d: %s", updateResp.Status, updateResp.Message)
	}

	return &updateResp, nil
}

// Logout terminates the session server-side; errors are returned but
// callers treat them as best effort
func (pc *PassBiClient) Logout(ctx context.Context) error {
	pc.tokenMu.Lock()
	token := pc.token
	pc.token = ""
	pc.tokenMu.Unlock()

	if token == "" {
		return nil
	}

	apiURL := pc.config.APIBaseURL + "/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, nil)
	if err != nil {
		return fmt.Errorf("logout: requete: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := pc.client.Do(req)
	if err != nil {
		return fmt.Errorf("logout: appel echoue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("logout: HTTP %d", resp.StatusCode)
	}
	return nil
}

// GetDemDikk fetches the Dem Dikk line tree
func (pc *PassBiClient) GetDemDikk(ctx context.Context) (*models.DemDikkResponse, error) {
	body, err := pc.doGet(ctx, "/demdikk", "")
	if err != nil {
		return nil, err
	}

	var resp models.DemDikkResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("demdikk: decodage JSON: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("demdikk: %s", resp.GetErrorMessage())
	}

	return &resp, nil
}

// doGet performs an authenticated GET and returns the raw body
func (pc *PassBiClient) doGet(ctx context.Context, path, token string) ([]byte, error) {
	apiURL := pc.config.APIBaseURL + path
	pc.logger.Debugf("GET %s", utils.MaskSensitiveURL(apiURL, token))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: requete: %w", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := pc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: appel echoue: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: lecture reponse: %w", path, err)
	}

	pc.logger.Debugf("GET %s ok (%d octets, %v)", path, len(body), time.Since(start))
	return body, nil
}
