package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/mongo"

	apperrors "slotbook/pkg/errors"
)

// Labels Mongo attaches to errors that are safe to retry as a whole new
// transaction attempt.
const (
	labelTransient     = "TransientTransactionError"
	labelUnknownCommit = "UnknownTransactionCommitResult"
)

// ErrConflictRetriesExhausted is returned when a transaction keeps aborting on
// write conflicts past the configured attempt budget. Callers treat it the
// same as losing the race outright.
var ErrConflictRetriesExhausted = errors.New("transaction conflict retries exhausted")

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client      *mongo.Client
	maxAttempts int
	retryBase   time.Duration
}

func NewTransactionManager(client *mongo.Client, maxAttempts int, retryBase time.Duration) TransactionManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if retryBase <= 0 {
		retryBase = 50 * time.Millisecond
	}
	return &mongoTransactionManager{
		client:      client,
		maxAttempts: maxAttempts,
		retryBase:   retryBase,
	}
}

// ExecuteTransaction runs fn inside a session transaction. Transient aborts
// (write conflicts, unknown commit outcomes) are retried with jittered
// backoff up to the attempt budget; every retry re-runs fn against fresh
// transactional state, so fn must re-read everything it depends on.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	backoff := retry.NewFibonacci(m.retryBase)
	backoff = retry.WithJitter(m.retryBase/2, backoff)
	backoff = retry.WithMaxRetries(uint64(m.maxAttempts-1), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		txErr := m.runOnce(ctx, fn)
		if txErr != nil && isTransient(txErr) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})
	if err == nil {
		return nil
	}

	if apperrors.IsAppError(err) {
		return err
	}
	if isTransient(err) {
		return fmt.Errorf("%w: %v", ErrConflictRetriesExhausted, err)
	}
	return fmt.Errorf("transaction failed: %w", err)
}

func (m *mongoTransactionManager) runOnce(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func isTransient(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel(labelTransient) || cmdErr.HasErrorLabel(labelUnknownCommit)
	}
	return false
}
