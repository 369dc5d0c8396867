package persist

import (
	"context"
	"fmt"
	"time"
)

// MatchRow is one finished match. Account ids are nil for bot seats so
// practice games still leave a row without a foreign key.
type MatchRow struct {
	ID           int64
	LeftAccount  *int64
	RightAccount *int64
	WinnerSide   int16 // 0 = left, 1 = right
	LeftScore    int
	RightScore   int
	Ticks        int64
	Seed         int64
	FinishedAt   time.Time
}

type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// InsertResult writes the match row, any offline-seat rating adjustments,
// and the rating journal in a single transaction, so a retried write can
// never apply an adjustment twice.
func (r *MatchRepo) InsertResult(ctx context.Context, row *MatchRow, adjusts []RatingAdjust, log []RatingLogEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("result begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO matches (left_account, right_account, winner_side,
		                      left_score, right_score, ticks, seed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, finished_at`,
		row.LeftAccount, row.RightAccount, row.WinnerSide,
		row.LeftScore, row.RightScore, row.Ticks, row.Seed,
	).Scan(&row.ID, &row.FinishedAt)
	if err != nil {
		return fmt.Errorf("result insert: %w", err)
	}

	for _, adj := range adjusts {
		if _, err := tx.Exec(ctx,
			`UPDATE accounts
			 SET rating = GREATEST(0, rating + $2), wins = wins + $3, losses = losses + $4
			 WHERE id = $1`,
			adj.AccountID, adj.DRating, adj.DWins, adj.DLosses,
		); err != nil {
			return fmt.Errorf("result rating adjust: %w", err)
		}
	}

	if err := appendRatingLog(ctx, tx, row.ID, log); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
