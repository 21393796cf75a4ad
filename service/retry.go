package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"kudos/models"
)

// retryOnConflict runs fn and, if it lost a race with another writer, runs it
// exactly once more so preconditions are re-validated against fresh state.
func retryOnConflict[T any](ctx context.Context, operation string, fn func() (T, error)) (T, error) {
	result, err := fn()
	if !errors.Is(err, models.ErrConcurrentModification) {
		return result, err
	}
	if ctx.Err() != nil {
		return result, err
	}

	log.WithFields(log.Fields{
		"operation": operation,
		"error":     err,
	}).Warn("Retrying after concurrent modification")

	result, err = fn()
	if errors.Is(err, models.ErrConcurrentModification) {
		return result, models.ErrConcurrentModification
	}
	return result, err
}
