package intent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zeebo/assert"

	"github.com/griffin-labs/griffin-orchestrator/apperr"
	"github.com/griffin-labs/griffin-orchestrator/family"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

type fakeCatalog struct {
	chains map[string]bool
}

func (c *fakeCatalog) IsChainSupported(chainID string) bool { return c.chains[chainID] }

type fakeFamily struct {
	invalidAddresses map[string]bool
	sigValid         bool
	sigErr           error
}

func (f *fakeFamily) ValidateAddress(chainID, address string) bool {
	return !f.invalidAddresses[address]
}

func (f *fakeFamily) VerifySignature(ctx context.Context, chainID, signature, message, signerAddress string) (bool, error) {
	return f.sigValid, f.sigErr
}

type fakeDiscovery struct {
	mu     sync.Mutex
	routes []models.RouteInfo
	err    error
	calls  int
}

func (d *fakeDiscovery) FindBestRoutes(ctx context.Context, req models.QuoteRequest) ([]models.RouteInfo, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return d.routes, d.err
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	err        error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, in models.Intent, route models.RouteInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dispatched = append(d.dispatched, in.ID)
	return d.err
}

func viableRoute() models.RouteInfo {
	now := time.Now().UTC()
	return models.RouteInfo{
		ID: "route-1",
		Steps: []models.RouteStep{{
			Type: models.StepTypeSwap, Provider: "avnu",
			FromChain: "starknet:sepolia", ToChain: "starknet:sepolia",
		}},
		TotalCost: "1.5",
		CreatedAt: now,
		ExpiresAt: now.Add(5 * time.Minute),
	}
}

func newTestService(disc *fakeDiscovery, disp *fakeDispatcher, fam *fakeFamily) (*Service, *MemoryStore) {
	store := NewMemoryStore()
	catalog := &fakeCatalog{chains: map[string]bool{
		"starknet:sepolia": true,
		"eip155:1":         true,
	}}
	families := family.NewRegistry()
	families.Register("starknet", family.Capabilities{Addresses: fam, Signatures: fam})
	families.Register("eip155", family.Capabilities{Addresses: fam, Signatures: fam})
	return NewService(store, catalog, families, disc, disp, 0.005), store
}

func validCreateRequest() *models.CreateIntentRequest {
	return &models.CreateIntentRequest{
		FromChain:   "starknet:sepolia",
		ToChain:     "starknet:sepolia",
		FromToken:   "0x53c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8",
		ToToken:     "0x4718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d",
		Amount:      "100",
		Recipient:   "0x1234",
		UserAddress: "0x5678",
		Signature:   "0xaaa,0xbbb",
		Message:     "0xdeadbeef",
	}
}

func TestCreateIntent(t *testing.T) {
	svc, store := newTestService(&fakeDiscovery{}, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)
	assert.Equal(t, models.IntentStatusPending, in.Status)
	assert.That(t, in.ID != "")

	stored, ok := store.Get(in.ID)
	assert.True(t, ok)
	assert.Equal(t, in.ID, stored.ID)
}

func TestCreateIntentValidationOrder(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*models.CreateIntentRequest)
		fam      *fakeFamily
		wantCode string
	}{
		{
			name:     "unsupported chain",
			mutate:   func(r *models.CreateIntentRequest) { r.FromChain = "eip155:999" },
			fam:      &fakeFamily{sigValid: true},
			wantCode: apperr.CodeUnsupportedChain,
		},
		{
			name:     "negative amount",
			mutate:   func(r *models.CreateIntentRequest) { r.Amount = "-5" },
			fam:      &fakeFamily{sigValid: true},
			wantCode: apperr.CodeInvalidAmount,
		},
		{
			name:     "non-numeric amount",
			mutate:   func(r *models.CreateIntentRequest) { r.Amount = "lots" },
			fam:      &fakeFamily{sigValid: true},
			wantCode: apperr.CodeInvalidAmount,
		},
		{
			name:     "bad recipient",
			mutate:   func(r *models.CreateIntentRequest) { r.Recipient = "bogus" },
			fam:      &fakeFamily{sigValid: true, invalidAddresses: map[string]bool{"bogus": true}},
			wantCode: apperr.CodeInvalidAddress,
		},
		{
			name:     "missing signature",
			mutate:   func(r *models.CreateIntentRequest) { r.Signature = "" },
			fam:      &fakeFamily{sigValid: true},
			wantCode: apperr.CodeMissingSignature,
		},
		{
			name:     "invalid signature",
			mutate:   func(r *models.CreateIntentRequest) {},
			fam:      &fakeFamily{sigValid: false},
			wantCode: apperr.CodeInvalidSignature,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(&fakeDiscovery{}, &fakeDispatcher{}, tc.fam)
			req := validCreateRequest()
			tc.mutate(req)

			_, err := svc.CreateIntent(context.Background(), req)
			assert.Error(t, err)
			assert.True(t, apperr.Is(err, tc.wantCode))

			// nothing persisted on failure
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestGetIntent(t *testing.T) {
	svc, _ := newTestService(&fakeDiscovery{}, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	got, err := svc.GetIntent(context.Background(), in.ID)
	assert.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)

	_, err = svc.GetIntent(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.CodeIntentNotFound))
}

func TestExecuteIntent(t *testing.T) {
	disc := &fakeDiscovery{routes: []models.RouteInfo{viableRoute()}}
	disp := &fakeDispatcher{}
	svc, store := newTestService(disc, disp, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	executed, err := svc.ExecuteIntent(context.Background(), in.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.IntentStatusExecuting, executed.Status)
	assert.NotNil(t, executed.Route)
	assert.Equal(t, "route-1", executed.Route.ID)
	assert.Equal(t, 1, len(disp.dispatched))

	// executing twice fails with the observed status
	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))

	stored, _ := store.Get(in.ID)
	assert.Equal(t, models.IntentStatusExecuting, stored.Status)
}

func TestExecuteIntentPendingOnly(t *testing.T) {
	disc := &fakeDiscovery{routes: []models.RouteInfo{viableRoute()}}
	svc, store := newTestService(disc, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	// only PENDING intents are executable, VERIFIED is not
	store.Update(in.ID, func(stored *models.Intent) {
		stored.Status = models.IntentStatusVerified
	})

	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))

	stored, _ := store.Get(in.ID)
	assert.Equal(t, models.IntentStatusVerified, stored.Status)
}

func TestExecuteIntentNotFound(t *testing.T) {
	svc, _ := newTestService(&fakeDiscovery{}, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	_, err := svc.ExecuteIntent(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.CodeIntentNotFound))
}

func TestExecuteIntentNoRoutes(t *testing.T) {
	disc := &fakeDiscovery{routes: nil}
	svc, store := newTestService(disc, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNoRoutes))

	stored, _ := store.Get(in.ID)
	assert.Equal(t, models.IntentStatusFailed, stored.Status)
}

func TestExecuteIntentExpiredRoute(t *testing.T) {
	expired := viableRoute()
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	disc := &fakeDiscovery{routes: []models.RouteInfo{expired}}
	svc, store := newTestService(disc, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNoRoutes))

	stored, _ := store.Get(in.ID)
	assert.Equal(t, models.IntentStatusFailed, stored.Status)
}

func TestCancelIntent(t *testing.T) {
	svc, store := newTestService(&fakeDiscovery{}, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	cancelled, err := svc.CancelIntent(context.Background(), in.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.IntentStatusCancelled, cancelled.Status)

	// terminal intents reject any further transition
	_, err = svc.CancelIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))
	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidStatus))

	stored, _ := store.Get(in.ID)
	assert.Equal(t, models.IntentStatusCancelled, stored.Status)
}

func TestCancelExecutingIntent(t *testing.T) {
	disc := &fakeDiscovery{routes: []models.RouteInfo{viableRoute()}}
	svc, _ := newTestService(disc, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)
	_, err = svc.ExecuteIntent(context.Background(), in.ID)
	assert.NoError(t, err)

	_, err = svc.CancelIntent(context.Background(), in.ID)
	assert.True(t, apperr.Is(err, apperr.CodeCannotCancel))
}

func TestConcurrentExecuteCancel(t *testing.T) {
	disc := &fakeDiscovery{routes: []models.RouteInfo{viableRoute()}}
	svc, store := newTestService(disc, &fakeDispatcher{}, &fakeFamily{sigValid: true})

	in, err := svc.CreateIntent(context.Background(), validCreateRequest())
	assert.NoError(t, err)

	var wg sync.WaitGroup
	var execErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, execErr = svc.ExecuteIntent(context.Background(), in.ID)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = svc.CancelIntent(context.Background(), in.ID)
	}()
	wg.Wait()

	// exactly one side wins, the loser gets a status error
	if execErr == nil {
		assert.Error(t, cancelErr)
		assert.True(t, apperr.Is(cancelErr, apperr.CodeCannotCancel))
		stored, _ := store.Get(in.ID)
		assert.Equal(t, models.IntentStatusExecuting, stored.Status)
	} else {
		assert.NoError(t, cancelErr)
		assert.True(t, apperr.Is(execErr, apperr.CodeInvalidStatus))
		stored, _ := store.Get(in.ID)
		assert.Equal(t, models.IntentStatusCancelled, stored.Status)
	}
}
