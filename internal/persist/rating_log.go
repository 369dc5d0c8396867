package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RatingLogEntry is one rating movement, journaled with the match that
// caused it so any account's history can be replayed or audited.
type RatingLogEntry struct {
	AccountID   int64
	Delta       int
	RatingAfter int
}

// appendRatingLog journals rating movements inside the caller's result
// transaction, so a retried match insert can never double-book a movement.
func appendRatingLog(ctx context.Context, tx pgx.Tx, matchID int64, entries []RatingLogEntry) error {
	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO rating_log (account_id, match_id, delta, rating_after)
			 VALUES ($1, $2, $3, $4)`,
			e.AccountID, matchID, e.Delta, e.RatingAfter,
		); err != nil {
			return fmt.Errorf("rating log insert: %w", err)
		}
	}
	return nil
}
