package command

import (
	"context"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"

	"github.com/tair/stock-ledger/internal/inventory/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// RetryConfig bounds the optimistic-concurrency retry loop
type RetryConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryConfig returns the default retry budget
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 5, Backoff: 10 * time.Millisecond, MaxBackoff: 200 * time.Millisecond}
}

// TxRunner runs a read-modify-write transaction, repeating it from scratch
// when the commit loses an optimistic-concurrency race.
type TxRunner struct {
	tx  domain.Transactor
	cfg RetryConfig
}

func NewTxRunner(tx domain.Transactor, cfg RetryConfig) *TxRunner {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.MaxBackoff < cfg.Backoff {
		cfg.MaxBackoff = cfg.Backoff * 16
	}
	return &TxRunner{tx: tx, cfg: cfg}
}

// conflictClassifier retries only concurrency conflicts
type conflictClassifier struct{}

func (conflictClassifier) Classify(err error) retrier.Action {
	switch {
	case err == nil:
		return retrier.Succeed
	case domain.Retryable(err):
		return retrier.Retry
	default:
		return retrier.Fail
	}
}

// Run executes fn atomically. A conflict that survives every attempt is
// reported as ErrCommitFailed; every other error is returned unchanged.
func (r *TxRunner) Run(ctx context.Context, op string, fn func(ctx context.Context, tx domain.StoreTx) error) error {
	rt := retrier.New(
		retrier.LimitedExponentialBackoff(r.cfg.MaxAttempts-1, r.cfg.Backoff, r.cfg.MaxBackoff),
		conflictClassifier{},
	)
	rt.SetJitter(0.2)

	attempts := 0
	err := rt.RunCtx(ctx, func(ctx context.Context) error {
		attempts++
		err := r.tx.WithinTx(ctx, fn)
		if domain.Retryable(err) {
			txConflictsTotal.WithLabelValues(op).Inc()
			logger.Debug(ctx).
				Err(err).
				Str("op", op).
				Int("attempt", attempts).
				Msg("Transaction conflict, retrying")
		}
		return err
	})
	txAttempts.WithLabelValues(op).Observe(float64(attempts))

	if domain.Retryable(err) {
		commitFailuresTotal.WithLabelValues(op).Inc()
		return &domain.Error{
			Kind:    domain.ErrCommitFailed,
			Op:      op,
			Message: fmt.Sprintf("gave up after %d attempts", attempts),
			Err:     err,
		}
	}
	return err
}
