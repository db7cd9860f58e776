// Package execution hands routed intents to chain adapters and reports
// progress back through the intent store. The orchestrator's contract ends at
// dispatch; everything here runs asynchronously after ExecuteIntent returns.
package execution

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/griffin-labs/griffin-orchestrator/intent"
	"github.com/griffin-labs/griffin-orchestrator/metrics"
	"github.com/griffin-labs/griffin-orchestrator/models"
)

var execLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	execLog = zerolog.New(out).With().Timestamp().Str("component", "execution").Logger()
}

// SetLogger allows setting a custom logger
func SetLogger(l zerolog.Logger) {
	execLog = l
}

// StepExecutor submits one route step on-chain and returns the transaction
// hash. Implementations wrap chain-specific signing and submission.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, in models.Intent, step models.RouteStep) (hash string, err error)
}

// AsyncDispatcher runs route steps in a background goroutine per intent,
// appending a TransactionInfo per step and driving the intent to COMPLETED or
// FAILED.
type AsyncDispatcher struct {
	store    intent.Store
	executor StepExecutor
	timeout  time.Duration
}

// NewAsyncDispatcher creates a dispatcher. timeout bounds the work of a
// single step.
func NewAsyncDispatcher(store intent.Store, executor StepExecutor, timeout time.Duration) *AsyncDispatcher {
	return &AsyncDispatcher{store: store, executor: executor, timeout: timeout}
}

// Dispatch accepts the routed intent and returns immediately; step execution
// continues in the background detached from the request context.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, in models.Intent, route models.RouteInfo) error {
	go d.run(in, route)
	return nil
}

func (d *AsyncDispatcher) run(in models.Intent, route models.RouteInfo) {
	for _, step := range route.Steps {
		if !d.executeStep(in, step) {
			d.finish(in.ID, models.IntentStatusFailed)
			return
		}
	}
	d.finish(in.ID, models.IntentStatusCompleted)
}

// executeStep records the transaction lifecycle for one step and reports
// whether the step confirmed.
func (d *AsyncDispatcher) executeStep(in models.Intent, step models.RouteStep) bool {
	tx := models.TransactionInfo{
		ID:        uuid.NewString(),
		IntentID:  in.ID,
		ChainID:   step.FromChain,
		Status:    models.TransactionStatusPending,
		Type:      step.Type,
		CreatedAt: time.Now().UTC(),
	}
	d.store.Update(in.ID, func(stored *models.Intent) {
		stored.Transactions = append(stored.Transactions, tx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	hash, err := d.executor.ExecuteStep(ctx, in, step)
	now := time.Now().UTC()
	if err != nil {
		execLog.Error().Err(err).
			Str("intentId", in.ID).
			Str("type", string(step.Type)).
			Str("provider", step.Provider).
			Msg("route step failed")
		d.updateTransaction(in.ID, tx.ID, func(stored *models.TransactionInfo) {
			stored.Status = models.TransactionStatusFailed
			stored.FailureReason = err.Error()
		})
		return false
	}

	d.updateTransaction(in.ID, tx.ID, func(stored *models.TransactionInfo) {
		stored.Status = models.TransactionStatusSubmitted
		stored.Hash = hash
		stored.SubmittedAt = &now
	})

	// Submission doubles as confirmation until receipts are tracked.
	confirmedAt := time.Now().UTC()
	d.updateTransaction(in.ID, tx.ID, func(stored *models.TransactionInfo) {
		stored.Status = models.TransactionStatusConfirmed
		stored.Confirmations = 1
		stored.ConfirmedAt = &confirmedAt
	})

	execLog.Info().
		Str("intentId", in.ID).
		Str("txId", tx.ID).
		Str("hash", hash).
		Str("type", string(step.Type)).
		Msg("route step confirmed")
	return true
}

func (d *AsyncDispatcher) updateTransaction(intentID, txID string, fn func(*models.TransactionInfo)) {
	d.store.Update(intentID, func(stored *models.Intent) {
		for i := range stored.Transactions {
			if stored.Transactions[i].ID == txID {
				fn(&stored.Transactions[i])
				return
			}
		}
	})
}

func (d *AsyncDispatcher) finish(intentID string, status models.IntentStatus) {
	_, _, swapped := d.store.CompareAndSwapStatus(intentID, status, models.IntentStatusExecuting)
	if swapped {
		metrics.IntentsTerminal.WithLabelValues(string(status)).Inc()
	}
	execLog.Info().Str("intentId", intentID).Str("status", string(status)).Msg("intent execution finished")
}

// NoopExecutor acknowledges every step without touching a chain. It stands in
// until chain submission is wired.
type NoopExecutor struct{}

func (NoopExecutor) ExecuteStep(ctx context.Context, in models.Intent, step models.RouteStep) (string, error) {
	return "0x" + uuid.NewString()[:8], nil
}
