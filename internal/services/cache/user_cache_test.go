package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"passbi-cache/internal/models"
	"passbi-cache/internal/services/store"
)

func newUserCacheForTest(remote *fakeRemote, monitor *fakeMonitor) (*UserProfileCache, *store.MemoryStore) {
	durable := store.NewMemoryStore()
	uc := NewUserProfileCache(testConfig(), testLogger(), durable, remote, monitor)
	return uc, durable
}

func TestUserCacheFetchBindsToken(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, durable := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	require.NoError(t, uc.Initialize(ctx))

	user, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Awa", user.FirstName)
	assert.Equal(t, "wave", user.PreferredPayment, "top-level preferences folded into the profile")

	// persisted under profile + timestamp keys
	_, err = durable.Get(ctx, keyUserProfile)
	assert.NoError(t, err)
	_, err = durable.Get(ctx, keyUserFetchedAt)
	assert.NoError(t, err)

	// fresh and token unchanged: next call is a cache hit
	_, err = uc.FetchUser(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, remote.userCallCount())
}

func TestUserCacheTokenChangeClearsProfile(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, durable := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)
	require.NotNil(t, uc.GetUser(ctx))

	// a different session appears: cached identity must not leak into it
	remote.setToken("tok-2")

	assert.Nil(t, uc.GetUser(ctx))
	assert.False(t, uc.IsValid(ctx))
	_, err = durable.Get(ctx, keyUserProfile)
	assert.ErrorIs(t, err, store.ErrMiss, "durable snapshot removed on token change")

	// the next fetch rebinds to the new session
	_, err = uc.FetchUser(ctx, false)
	require.NoError(t, err)
	assert.NotNil(t, uc.GetUser(ctx))
}

func TestUserCacheTrustsCacheWithoutToken(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	// token becomes unobtainable (logged out upstream / airplane mode):
	// the cached profile keeps being served rather than flushed
	remote.setToken("")
	assert.True(t, uc.IsValid(ctx))
	assert.NotNil(t, uc.GetUser(ctx))

	remote.mu.Lock()
	remote.token = "tok-1"
	remote.tokenErr = errors.New("trousseau inaccessible")
	remote.mu.Unlock()
	assert.True(t, uc.IsValid(ctx))
}

func TestUserCacheFallbackOnFetchFailure(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	// upstream starts failing: a forced refresh serves the cached
	// snapshot and swallows the error
	remote.mu.Lock()
	remote.userErr = errors.New("serveur en panne")
	remote.mu.Unlock()

	user, err := uc.FetchUser(ctx, true)
	assert.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Awa", user.FirstName)
}

func TestUserCacheFetchFailureWithEmptyCache(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userErr: errors.New("serveur en panne")}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	user, err := uc.FetchUser(ctx, false)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNoSnapshot, "nothing cached: the error propagates")
}

func TestUserCacheFetchWithoutSession(t *testing.T) {
	remote := &fakeRemote{token: ""}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	user, err := uc.FetchUser(ctx, false)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.Equal(t, 0, remote.userCallCount(), "no profile call without a token")
}

func TestUserCacheOfflineFallsBackToCache(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	monitor.setConnected(false)
	user, err := uc.FetchUser(ctx, true)
	assert.NoError(t, err)
	assert.NotNil(t, user)
	assert.Equal(t, 1, remote.userCallCount())
}

func TestUserCacheUpdateMergesAndRecomputesNames(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, durable := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Awa Diop", uc.GetFullName(ctx))
	assert.Equal(t, "Awa", uc.GetDisplayName(ctx))

	newFirst := "Fatou"
	updated, err := uc.UpdateUser(ctx, models.UserPatch{FirstName: &newFirst})
	require.NoError(t, err)
	assert.Equal(t, "Fatou", updated.FirstName)
	assert.Equal(t, "Diop", updated.Name, "untouched fields survive the merge")
	assert.Equal(t, "awa.diop@example.sn", updated.Email)

	// derived names follow the raw fields with no extra step
	assert.Equal(t, "Fatou Diop", uc.GetFullName(ctx))
	assert.Equal(t, "Fatou", uc.GetDisplayName(ctx))

	newName := "Fall"
	_, err = uc.UpdateUser(ctx, models.UserPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Fatou Fall", uc.GetFullName(ctx))

	// one-shot flag: set by the update, consumed exactly once
	_, err = durable.Get(ctx, keyProfileUpdated)
	require.NoError(t, err)
	assert.True(t, uc.ConsumeProfileUpdatedFlag(ctx))
	assert.False(t, uc.ConsumeProfileUpdatedFlag(ctx))
}

func TestUserCacheUpdateWithoutProfile(t *testing.T) {
	remote := &fakeRemote{token: "tok-1"}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	name := "Fatou"
	_, err := uc.UpdateUser(context.Background(), models.UserPatch{FirstName: &name})
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestUserCacheEmptyPatchIsNoop(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, durable := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	user, err := uc.UpdateUser(ctx, models.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Awa", user.FirstName)
	_, err = durable.Get(ctx, keyProfileUpdated)
	assert.ErrorIs(t, err, store.ErrMiss, "no update flag for an empty patch")
}

func TestUserCacheSubscribers(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()

	var events []*models.UnifiedUser
	unsubscribe := uc.Subscribe(func(u *models.UnifiedUser) {
		events = append(events, u)
	})
	// a panicking listener must not break the others
	uc.Subscribe(func(*models.UnifiedUser) { panic("auditeur defaillant") })

	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Awa", events[0].FirstName)

	newFirst := "Fatou"
	_, err = uc.UpdateUser(ctx, models.UserPatch{FirstName: &newFirst})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Fatou", events[1].FirstName)

	require.NoError(t, uc.Clear(ctx))
	require.Len(t, events, 3)
	assert.Nil(t, events[2], "clear notifies with nil")

	unsubscribe()
	_, err = uc.FetchUser(ctx, true)
	require.NoError(t, err)
	assert.Len(t, events, 3, "no events after unsubscribe")
}

func TestUserCacheInvalidateKeepsData(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	uc.Invalidate(ctx)

	assert.False(t, uc.IsValid(ctx))
	assert.Equal(t, "Awa Diop", uc.GetFullName(ctx), "data survives invalidation")

	// next fetch goes back to the network
	_, err = uc.FetchUser(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, remote.userCallCount())
}

func TestUserCacheHydratesFromDurableStore(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	durable := store.NewMemoryStore()

	first := NewUserProfileCache(testConfig(), testLogger(), durable, remote, monitor)
	ctx := context.Background()
	_, err := first.FetchUser(ctx, false)
	require.NoError(t, err)

	// a new instance over the same store sees the persisted profile
	second := NewUserProfileCache(testConfig(), testLogger(), durable, remote, monitor)
	require.NoError(t, second.Initialize(ctx))
	assert.Equal(t, "Awa Diop", second.GetFullName(ctx))
	assert.True(t, second.IsValid(ctx))
}

func TestUserCacheHydrationWithoutTimestampIsStale(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	durable := store.NewMemoryStore()

	first := NewUserProfileCache(testConfig(), testLogger(), durable, remote, monitor)
	ctx := context.Background()
	_, err := first.FetchUser(ctx, false)
	require.NoError(t, err)

	// an invalidation before restart removed the timestamp key
	require.NoError(t, durable.Remove(ctx, keyUserFetchedAt))

	second := NewUserProfileCache(testConfig(), testLogger(), durable, remote, monitor)
	require.NoError(t, second.Initialize(ctx))
	assert.False(t, second.IsValid(ctx), "missing timestamp means stale")
	assert.Equal(t, "Awa Diop", second.GetFullName(ctx), "data still restored")
}

func TestUserCacheClear(t *testing.T) {
	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, durable := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	require.NoError(t, uc.Clear(ctx))

	assert.Nil(t, uc.GetUser(ctx))
	assert.Equal(t, models.DefaultDisplayName, uc.GetFullName(ctx))
	for _, key := range []string{keyUserProfile, keyUserFetchedAt, keyProfileUpdated} {
		_, err := durable.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrMiss, key)
	}
}

func TestUserCacheDefaultNamesWithoutProfile(t *testing.T) {
	remote := &fakeRemote{}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	assert.Equal(t, models.DefaultDisplayName, uc.GetFullName(ctx))
	assert.Equal(t, models.DefaultDisplayName, uc.GetDisplayName(ctx))
}

func TestUserCacheStatusMasksToken(t *testing.T) {
	remote := &fakeRemote{token: "tok-secret-123456", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc, _ := newUserCacheForTest(remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)

	status := uc.Status()
	bound, ok := status["boundToken"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "tok-secret-123456", bound)
	assert.True(t, status["hasProfile"].(bool))
}

func TestUserCacheExpiresByFreshness(t *testing.T) {
	cfg := testConfig()
	cfg.UserFreshness = 10 * time.Millisecond

	remote := &fakeRemote{token: "tok-1", userPayload: sampleUserPayload()}
	monitor := &fakeMonitor{connected: true}
	uc := NewUserProfileCache(cfg, testLogger(), store.NewMemoryStore(), remote, monitor)

	ctx := context.Background()
	_, err := uc.FetchUser(ctx, false)
	require.NoError(t, err)
	require.True(t, uc.IsValid(ctx))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, uc.IsValid(ctx))

	// stale triggers a refetch on the next fetch
	_, err = uc.FetchUser(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, remote.userCallCount())
}
