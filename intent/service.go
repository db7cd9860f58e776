package intent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/griffin-labs/griffin-orchestrator/apperr"
	"github.com/griffin-labs/griffin-orchestrator/family"
	"github.com/griffin-labs/griffin-orchestrator/metrics"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

// ChainCatalog is the registry view the service needs.
type ChainCatalog interface {
	IsChainSupported(chainID string) bool
}

// RouteDiscoverer produces cost-ranked routes for a quote request.
type RouteDiscoverer interface {
	FindBestRoutes(ctx context.Context, req models.QuoteRequest) ([]models.RouteInfo, error)
}

// Dispatcher hands a routed intent to the execution layer. Dispatch returns
// once execution has been accepted; completion is reported asynchronously
// through the store.
type Dispatcher interface {
	Dispatch(ctx context.Context, in models.Intent, route models.RouteInfo) error
}

// Service enforces the intent lifecycle over a Store.
type Service struct {
	store      Store
	chains     ChainCatalog
	families   *family.Registry
	discovery  RouteDiscoverer
	dispatcher Dispatcher

	defaultSlippage float64
	rules           []validationRule
}

// NewService wires the lifecycle service. defaultSlippage is applied to quote
// requests derived from intents that carry no explicit tolerance.
func NewService(store Store, chains ChainCatalog, families *family.Registry,
	discovery RouteDiscoverer, dispatcher Dispatcher, defaultSlippage float64) *Service {
	s := &Service{
		store:           store,
		chains:          chains,
		families:        families,
		discovery:       discovery,
		dispatcher:      dispatcher,
		defaultSlippage: defaultSlippage,
	}
	// Ordered and short-circuiting: the first failing rule decides the error.
	s.rules = []validationRule{
		s.checkChainsSupported,
		s.checkAmount,
		s.checkAddresses,
		s.checkSignaturePresent,
		s.checkSignatureValid,
	}
	return s
}

type validationRule func(ctx context.Context, req *models.CreateIntentRequest) error

// CreateIntent validates the request rule by rule and persists a fresh
// PENDING intent. Nothing is stored when any rule fails.
func (s *Service) CreateIntent(ctx context.Context, req *models.CreateIntentRequest) (models.Intent, error) {
	for _, rule := range s.rules {
		if err := rule(ctx, req); err != nil {
			return models.Intent{}, err
		}
	}

	now := time.Now().UTC()
	in := models.Intent{
		ID:           uuid.NewString(),
		UserAddress:  req.UserAddress,
		FromChain:    req.FromChain,
		ToChain:      req.ToChain,
		FromToken:    req.FromToken,
		ToToken:      req.ToToken,
		Amount:       req.Amount,
		Recipient:    req.Recipient,
		Status:       models.IntentStatusPending,
		Transactions: []models.TransactionInfo{},
		CreatedAt:    now,
		UpdatedAt:    now,
		Metadata:     map[string]string{},
	}
	s.store.Put(in)

	metrics.IntentsCreated.WithLabelValues(in.FromChain, in.ToChain).Inc()
	intentLog.Info().
		Str("intentId", in.ID).
		Str("fromChain", in.FromChain).
		Str("toChain", in.ToChain).
		Msg("intent created")
	return in, nil
}

// GetIntent returns the intent or INTENT_NOT_FOUND.
func (s *Service) GetIntent(ctx context.Context, id string) (models.Intent, error) {
	in, ok := s.store.Get(id)
	if !ok {
		return models.Intent{}, apperr.NotFound(apperr.CodeIntentNotFound,
			fmt.Sprintf("Intent %s not found", id))
	}
	return in, nil
}

// ExecuteIntent transitions a PENDING intent to EXECUTING, discovers a fresh
// route, attaches the cheapest one and dispatches it. Exactly one of a
// concurrent execute/cancel pair wins; the loser observes the
// post-transition status.
func (s *Service) ExecuteIntent(ctx context.Context, id string) (models.Intent, error) {
	in, found, swapped := s.store.CompareAndSwapStatus(id, models.IntentStatusExecuting,
		models.IntentStatusPending)
	if !found {
		return models.Intent{}, apperr.NotFound(apperr.CodeIntentNotFound,
			fmt.Sprintf("Intent %s not found", id))
	}
	if !swapped {
		return models.Intent{}, apperr.BadRequest(apperr.CodeInvalidStatus,
			fmt.Sprintf("Intent cannot be executed from status %s", in.Status)).
			WithDetails(map[string]any{"currentStatus": string(in.Status)})
	}

	routes, err := s.discovery.FindBestRoutes(ctx, models.QuoteRequest{
		FromChain:         in.FromChain,
		ToChain:           in.ToChain,
		FromToken:         in.FromToken,
		ToToken:           in.ToToken,
		Amount:            in.Amount,
		SlippageTolerance: s.defaultSlippage,
	})
	if err != nil {
		return s.failExecution(id, err)
	}
	if len(routes) == 0 {
		return s.failExecution(id, apperr.NotFound(apperr.CodeNoRoutes, "No routes available").
			WithDetails(map[string]any{
				"fromChain": in.FromChain,
				"toChain":   in.ToChain,
				"fromToken": in.FromToken,
				"toToken":   in.ToToken,
			}))
	}

	best := routes[0]
	if best.Expired(time.Now().UTC()) {
		return s.failExecution(id, apperr.NotFound(apperr.CodeNoRoutes,
			"Discovered route expired before dispatch"))
	}

	updated, _ := s.store.Update(id, func(stored *models.Intent) {
		stored.Route = &best
	})

	if err := s.dispatcher.Dispatch(ctx, updated, best); err != nil {
		return s.failExecution(id, fmt.Errorf("dispatch failed: %w", err))
	}

	metrics.IntentsExecuted.WithLabelValues(in.FromChain, in.ToChain).Inc()
	intentLog.Info().
		Str("intentId", id).
		Str("routeId", best.ID).
		Str("totalCost", best.TotalCost).
		Int("steps", len(best.Steps)).
		Msg("intent execution dispatched")
	return updated, nil
}

// failExecution marks the intent FAILED and propagates the cause.
func (s *Service) failExecution(id string, cause error) (models.Intent, error) {
	s.store.CompareAndSwapStatus(id, models.IntentStatusFailed, models.IntentStatusExecuting)
	metrics.IntentsTerminal.WithLabelValues(string(models.IntentStatusFailed)).Inc()
	intentLog.Warn().Str("intentId", id).Err(cause).Msg("intent execution failed")
	return models.Intent{}, cause
}

// CancelIntent transitions PENDING or VERIFIED intents to CANCELLED.
// EXECUTING intents are past the point of no return.
func (s *Service) CancelIntent(ctx context.Context, id string) (models.Intent, error) {
	in, found, swapped := s.store.CompareAndSwapStatus(id, models.IntentStatusCancelled,
		models.IntentStatusPending, models.IntentStatusVerified)
	if !found {
		return models.Intent{}, apperr.NotFound(apperr.CodeIntentNotFound,
			fmt.Sprintf("Intent %s not found", id))
	}
	if !swapped {
		if in.Status == models.IntentStatusExecuting {
			return models.Intent{}, apperr.BadRequest(apperr.CodeCannotCancel,
				"Intent is executing and can no longer be cancelled")
		}
		return models.Intent{}, apperr.BadRequest(apperr.CodeInvalidStatus,
			fmt.Sprintf("Intent cannot be cancelled from status %s", in.Status)).
			WithDetails(map[string]any{"currentStatus": string(in.Status)})
	}

	metrics.IntentsCancelled.Inc()
	intentLog.Info().Str("intentId", id).Msg("intent cancelled")
	return in, nil
}

func (s *Service) checkChainsSupported(ctx context.Context, req *models.CreateIntentRequest) error {
	for _, chainID := range []string{req.FromChain, req.ToChain} {
		if !s.chains.IsChainSupported(chainID) {
			return apperr.BadRequest(apperr.CodeUnsupportedChain,
				fmt.Sprintf("Chain %s is not supported", chainID)).
				WithDetails(map[string]any{"chainId": chainID})
		}
	}
	return nil
}

func (s *Service) checkAmount(ctx context.Context, req *models.CreateIntentRequest) error {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return apperr.BadRequest(apperr.CodeInvalidAmount,
			"Amount must be a positive decimal number").
			WithDetails(map[string]any{"amount": req.Amount})
	}
	return nil
}

func (s *Service) checkAddresses(ctx context.Context, req *models.CreateIntentRequest) error {
	checks := []struct {
		chainID string
		field   string
		value   string
	}{
		{req.FromChain, "userAddress", req.UserAddress},
		{req.FromChain, "fromToken", req.FromToken},
		{req.ToChain, "recipient", req.Recipient},
		{req.ToChain, "toToken", req.ToToken},
	}
	for _, check := range checks {
		caps, ok := s.families.For(check.chainID)
		if !ok {
			return apperr.BadRequest(apperr.CodeUnsupportedChain,
				fmt.Sprintf("Chain %s has no registered family", check.chainID)).
				WithDetails(map[string]any{"chainId": check.chainID})
		}
		if !caps.Addresses.ValidateAddress(check.chainID, check.value) {
			return apperr.BadRequest(apperr.CodeInvalidAddress,
				fmt.Sprintf("Invalid address in field %s", check.field)).
				WithDetails(map[string]any{"field": check.field, "address": check.value})
		}
	}
	return nil
}

func (s *Service) checkSignaturePresent(ctx context.Context, req *models.CreateIntentRequest) error {
	if req.Signature == "" || req.Message == "" {
		return apperr.BadRequest(apperr.CodeMissingSignature,
			"A signed authorization message is required")
	}
	return nil
}

func (s *Service) checkSignatureValid(ctx context.Context, req *models.CreateIntentRequest) error {
	caps, _ := s.families.For(req.FromChain)
	ok, err := caps.Signatures.VerifySignature(ctx, req.FromChain, req.Signature, req.Message, req.UserAddress)
	if err != nil {
		intentLog.Warn().Err(err).Str("chainId", req.FromChain).Msg("signature verification errored")
		return apperr.BadRequest(apperr.CodeInvalidSignature, "Signature could not be verified")
	}
	if !ok {
		return apperr.BadRequest(apperr.CodeInvalidSignature,
			"Signature does not match the user address")
	}
	return nil
}
