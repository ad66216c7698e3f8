// Package seed prepares a fresh database for first use.
package seed

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"

	"github.com/Simplici0/honorarios/internal/defaults"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(ctx context.Context, db *sql.DB) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "begin seed transaction")
	}

	stats := Stats{}

	if err := ensureOfficeDefaults(ctx, tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, errors.Wrap(err, "commit seed transaction")
	}

	return stats, nil
}

func ensureOfficeDefaults(ctx context.Context, tx *sql.Tx, stats *Stats) error {
	inserted, err := defaults.Insert(ctx, tx, defaults.Builtin())
	if err != nil {
		return errors.Wrap(err, "seed office defaults")
	}
	if inserted {
		stats.Inserts++
	}
	return nil
}
