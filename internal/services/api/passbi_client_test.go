package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passbi-cache/config"
	"passbi-cache/internal/models"
	"passbi-cache/internal/utils"
)

func newTestClient(baseURL string) *PassBiClient {
	cfg := &config.Config{
		APIBaseURL: baseURL,
		APITimeout: 5 * time.Second,
	}
	return NewPassBiClient(cfg, utils.NewLogger(false))
}

func TestGetOperator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/operators", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 200,
			"data": [
				{
					"operator": {"id": "brt-1", "name": "BRT", "logoUrl": "https://cdn.passbi.sn/brt.png"},
					"zones": [
						{"id": "z1", "name": "Zone 1", "order": 1,
						 "stations": [{"id": "s1", "name": "Guediawaye"}],
						 "tariffs": [{"id": "t1", "nameTarif": "Standard", "price": 400}]}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	operators, err := client.GetOperator(context.Background())
	require.NoError(t, err)
	require.Len(t, operators, 1)
	assert.Equal(t, "BRT", operators[0].Operator.Name)
	require.Len(t, operators[0].Zones, 1)
	assert.Equal(t, float64(400), operators[0].Zones[0].Tariffs[0].Price)
}

func TestGetOperatorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOperator(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}

func TestGetOperatorRejectsInvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// operator without an id fails validation
		w.Write([]byte(`{"status": 200, "data": [{"operator": {"name": "BRT"}, "zones": []}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetOperator(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload invalide")
}

func TestGetUserSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 200,
			"data": {
				"user": {"id": "u-1", "firstName": "Awa", "name": "Diop"},
				"preferredPayment": "wave"
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	payload, err := client.GetUser(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "Awa", payload.User.FirstName)
	assert.Equal(t, "wave", payload.PreferredPayment)
}

func TestGetUserRequiresToken(t *testing.T) {
	client := newTestClient("http://localhost:1")
	_, err := client.GetUser(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token manquant")
}

func TestUpdateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/u-1", r.URL.Path)
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": 200, "message": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	name := "Fatou"
	resp, err := client.UpdateUser(context.Background(), "u-1", models.UserPatch{FirstName: &name}, "tok-1")
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}

func TestUpdateUserRejectsInvalidEmail(t *testing.T) {
	client := newTestClient("http://localhost:1")
	email := "pas-un-email"
	_, err := client.UpdateUser(context.Background(), "u-1", models.UserPatch{Email: &email}, "tok-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "patch invalide")
}

func TestLogoutClearsToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetToken("tok-1")

	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, "Bearer tok-1", gotAuth)

	token, err := client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", token, "token dropped locally even before the server answers")

	// anonymous logout is a no-op
	require.NoError(t, client.Logout(context.Background()))
}

func TestGetDemDikk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/demdikk", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 200,
			"data": {
				"operator": {"id": "dd-1", "name": "Dem Dikk"},
				"lines": [{"id": "l8", "name": "Ligne 8", "zones": []}]
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.GetDemDikk(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dem Dikk", resp.Data.Operator.Name)
	require.Len(t, resp.Data.Lines, 1)
}
