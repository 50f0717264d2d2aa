package cache

import (
	"context"
	"sync"
	"time"

	"passbi-cache/config"
	"passbi-cache/internal/models"
	"passbi-cache/internal/services/store"
	"passbi-cache/internal/utils"
)

// fakeRemote scriptable RemoteAPI with call counters
type fakeRemote struct {
	mu sync.Mutex

	token    string
	tokenErr error

	operators   []models.OperatorWithZones
	operatorErr error

	userPayload *models.UserPayload
	userErr     error

	demDikk    *models.DemDikkResponse
	demDikkErr error

	operatorCalls int
	userCalls     int
	demDikkCalls  int

	// optional hook run inside GetOperator, before returning
	operatorHook func()
}

func (f *fakeRemote) GetToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.tokenErr
}

func (f *fakeRemote) GetOperator(_ context.Context) ([]models.OperatorWithZones, error) {
	f.mu.Lock()
	f.operatorCalls++
	hook := f.operatorHook
	ops, err := f.operators, f.operatorErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return ops, err
}

func (f *fakeRemote) GetUser(_ context.Context, _ string) (*models.UserPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.userPayload, f.userErr
}

func (f *fakeRemote) UpdateUser(_ context.Context, _ string, _ models.UserPatch, _ string) (*models.UpdateResponse, error) {
	return &models.UpdateResponse{Status: 200}, nil
}

func (f *fakeRemote) Logout(_ context.Context) error {
	return nil
}

func (f *fakeRemote) GetDemDikk(_ context.Context) (*models.DemDikkResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.demDikkCalls++
	return f.demDikk, f.demDikkErr
}

func (f *fakeRemote) operatorCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.operatorCalls
}

func (f *fakeRemote) userCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userCalls
}

func (f *fakeRemote) setToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeRemote) setOperatorResult(ops []models.OperatorWithZones, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operators = ops
	f.operatorErr = err
}

// countingStore wraps a DurableStore and counts reads
type countingStore struct {
	*store.MemoryStore
	mu   sync.Mutex
	gets int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: store.NewMemoryStore()}
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.MemoryStore.Get(ctx, key)
}

func (c *countingStore) getCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets
}

// fakeMonitor fixed connectivity answer
type fakeMonitor struct {
	mu        sync.Mutex
	connected bool
}

func (f *fakeMonitor) IsConnected(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeMonitor) setConnected(connected bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = connected
}

// testConfig freshness windows sized for tests
func testConfig() *config.Config {
	return &config.Config{
		OperatorFreshness:  time.Hour,
		UserFreshness:      15 * time.Minute,
		MinRefreshInterval: 30 * time.Second,
		AutoRefreshCheck:   time.Minute,
	}
}

func testLogger() *utils.Logger {
	return utils.NewLogger(false)
}

func sampleOperators() []models.OperatorWithZones {
	return []models.OperatorWithZones{
		{
			Operator: models.Operator{ID: "brt-1", Name: "BRT", LogoURL: "https://cdn.passbi.sn/brt.png", IsUrbainStatus: true},
			Zones: []models.Zone{
				{
					ID:    "z1",
					Name:  "Zone 1",
					Order: 1,
					Stations: []models.Station{
						{ID: "s1", Name: "Guediawaye"},
						{ID: "s2", Name: "Grand Medine"},
					},
					Tariffs: []models.Tariff{{ID: "t1", NameTarif: "Standard", Price: 400}},
				},
			},
		},
		{
			Operator: models.Operator{ID: "ter-1", Name: "TER", LogoURL: "https://cdn.passbi.sn/ter.png"},
			Zones: []models.Zone{
				{ID: "z2", Name: "Zone 1", Order: 1, Stations: []models.Station{{ID: "s3", Name: "Dakar"}}},
			},
		},
	}
}

func sampleUserPayload() *models.UserPayload {
	notif := true
	return &models.UserPayload{
		User: models.UnifiedUser{
			ID:        "u-1",
			FirstName: "Awa",
			Name:      "Diop",
			Email:     "awa.diop@example.sn",
		},
		PreferredPayment: "wave",
		Notifications:    &notif,
	}
}
