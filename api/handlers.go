package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/griffin-labs/griffin-orchestrator/apperr"
	"github.com/griffin-labs/griffin-orchestrator/health"
	"github.com/griffin-labs/griffin-orchestrator/intent"
	"github.com/griffin-labs/griffin-orchestrator/models"
	"github.com/griffin-labs/griffin-orchestrator/registry"
)

// Handlers implements the REST surface over the core services.
type Handlers struct {
	intents  *intent.Service
	routes   intent.RouteDiscoverer
	registry *registry.ChainRegistry
	checker  *health.Checker
}

// NewHandlers wires the REST handlers.
func NewHandlers(intents *intent.Service, routes intent.RouteDiscoverer,
	reg *registry.ChainRegistry, checker *health.Checker) *Handlers {
	return &Handlers{intents: intents, routes: routes, registry: reg, checker: checker}
}

// Mount registers every endpoint on the router.
func (h *Handlers) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/intents", h.createIntent)
		r.Get("/intents/{id}", h.getIntent)
		r.Put("/intents/{id}/execute", h.executeIntent)
		r.Delete("/intents/{id}", h.cancelIntent)
		r.Post("/quotes", h.quotes)
		r.Get("/chains", h.listChains)
		r.Get("/chains/{chainId}/tokens", h.listTokens)
		r.Get("/health", h.healthReport)
	})
	r.NotFound(h.notFound)
	r.MethodNotAllowed(h.notFound)
}

func (h *Handlers) createIntent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.BadRequest(apperr.CodeValidation, "Request body is not valid JSON"))
		return
	}
	if err := validateCreateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	in, err := h.intents.CreateIntent(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, intentView(in))
}

func (h *Handlers) getIntent(w http.ResponseWriter, r *http.Request) {
	id, err := intentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := h.intents.GetIntent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, intentView(in))
}

func (h *Handlers) executeIntent(w http.ResponseWriter, r *http.Request) {
	id, err := intentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := h.intents.ExecuteIntent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, intentView(in))
}

func (h *Handlers) cancelIntent(w http.ResponseWriter, r *http.Request) {
	id, err := intentID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.intents.CancelIntent(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) quotes(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, apperr.BadRequest(apperr.CodeValidation, "Request body is not valid JSON"))
		return
	}
	if err := validateQuoteRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	routes, err := h.routes.FindBestRoutes(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(routes) == 0 {
		writeError(w, r, apperr.NotFound(apperr.CodeNoRoutes, "No routes available").
			WithDetails(map[string]any{
				"fromChain": req.FromChain,
				"toChain":   req.ToChain,
				"fromToken": req.FromToken,
				"toToken":   req.ToToken,
			}))
		return
	}

	writeJSON(w, http.StatusOK, models.QuoteResponse{
		Routes:    routes,
		BestRoute: &routes[0],
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ExpiresAt: routes[0].ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handlers) listChains(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"chains": h.registry.GetSupportedChains(),
	})
}

func (h *Handlers) listTokens(w http.ResponseWriter, r *http.Request) {
	chainID := chi.URLParam(r, "chainId")
	tokens, err := h.registry.GetSupportedTokens(chainID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chainId": chainID,
		"tokens":  tokens,
	})
}

func (h *Handlers) healthReport(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Check(r.Context())
	status := http.StatusOK
	if report.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, apperr.NotFound(apperr.CodeNotFound,
		"The requested resource does not exist").
		WithDetails(map[string]any{"path": r.URL.Path}))
}

// intentID validates the :id path parameter before touching the store.
func intentID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperr.BadRequest(apperr.CodeValidation, "Intent id must be a UUID").
			WithDetails(map[string]any{"id": id})
	}
	return id, nil
}

func validateCreateRequest(req *models.CreateIntentRequest) error {
	missing := missingFields(map[string]string{
		"fromChain":   req.FromChain,
		"toChain":     req.ToChain,
		"fromToken":   req.FromToken,
		"toToken":     req.ToToken,
		"amount":      req.Amount,
		"recipient":   req.Recipient,
		"userAddress": req.UserAddress,
	})
	if len(missing) > 0 {
		return apperr.BadRequest(apperr.CodeValidation, "Required fields are missing").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

func validateQuoteRequest(req *models.QuoteRequest) error {
	missing := missingFields(map[string]string{
		"fromChain": req.FromChain,
		"toChain":   req.ToChain,
		"fromToken": req.FromToken,
		"toToken":   req.ToToken,
		"amount":    req.Amount,
	})
	if len(missing) > 0 {
		return apperr.BadRequest(apperr.CodeValidation, "Required fields are missing").
			WithDetails(map[string]any{"missing": missing})
	}
	if req.SlippageTolerance < 0 || req.SlippageTolerance > 1 {
		return apperr.BadRequest(apperr.CodeValidation,
			"slippageTolerance must be between 0 and 1")
	}
	return nil
}

func missingFields(fields map[string]string) []string {
	// deterministic order for the error details
	order := []string{"fromChain", "toChain", "fromToken", "toToken", "amount", "recipient", "userAddress"}
	var missing []string
	for _, name := range order {
		if value, ok := fields[name]; ok && value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// intentView shapes the public intent representation.
func intentView(in models.Intent) models.IntentResponse {
	resp := models.IntentResponse{
		IntentID:     in.ID,
		Status:       in.Status,
		CreatedAt:    in.CreatedAt.Format(time.RFC3339),
		Route:        in.Route,
		Transactions: in.Transactions,
	}
	if in.Status == models.IntentStatusExecuting && in.Route != nil {
		eta := time.Now().UTC().Add(time.Duration(in.Route.EstimatedTime) * time.Second)
		resp.EstimatedCompletion = eta.Format(time.RFC3339)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps any error onto the uniform envelope. Unclassified errors
// are logged and surfaced as INTERNAL_SERVER_ERROR.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		Logger.Error().Err(err).Str("path", r.URL.Path).Msg("internal error")
	}
	writeJSON(w, appErr.Status, models.ErrorBody{
		Error: models.ErrorDetail{
			Code:      appErr.Code,
			Message:   appErr.Message,
			Details:   appErr.Details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: middleware.GetReqID(r.Context()),
		},
	})
}
