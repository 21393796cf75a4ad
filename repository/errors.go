package repository

import (
	"fmt"

	"kudos/database"
	"kudos/models"
)

const seasonsSingleActiveIndex = "seasons_single_active_idx"

// classify marks errors caused by a lost race with models.ErrConcurrentModification
// while keeping the driver error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if database.IsConflict(err) || database.IsUniqueViolation(err, seasonsSingleActiveIndex) {
		return fmt.Errorf("%w: %w", models.ErrConcurrentModification, err)
	}
	return err
}
