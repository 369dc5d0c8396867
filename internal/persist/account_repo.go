package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AccountRow struct {
	ID           int64
	Name         string
	PasswordHash string
	Rating       int
	Wins         int
	Losses       int
	Banned       bool
	IP           string
	CreatedAt    time.Time
	LastActive   *time.Time
}

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Load(ctx context.Context, name string) (*AccountRow, error) {
	return r.loadWhere(ctx, `name = $1`, name)
}

func (r *AccountRepo) LoadByID(ctx context.Context, id int64) (*AccountRow, error) {
	return r.loadWhere(ctx, `id = $1`, id)
}

func (r *AccountRepo) loadWhere(ctx context.Context, cond string, arg any) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, password_hash, rating, wins, losses, banned,
		        COALESCE(ip,''), created_at, last_active
		 FROM accounts WHERE `+cond, arg,
	).Scan(
		&row.ID, &row.Name, &row.PasswordHash, &row.Rating, &row.Wins,
		&row.Losses, &row.Banned, &row.IP, &row.CreatedAt, &row.LastActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AccountRepo) Create(ctx context.Context, name, rawPassword, ip string) (*AccountRow, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	row := &AccountRow{
		Name:         name,
		PasswordHash: string(hash),
		Rating:       1200,
		IP:           ip,
		CreatedAt:    now,
		LastActive:   &now,
	}
	err = r.db.Pool.QueryRow(ctx,
		`INSERT INTO accounts (name, password_hash, ip, last_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		row.Name, row.PasswordHash, row.IP, row.LastActive,
	).Scan(&row.ID)
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (r *AccountRepo) ValidatePassword(hash string, rawPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawPassword)) == nil
}

func (r *AccountRepo) UpdateLastActive(ctx context.Context, id int64, ip string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET last_active = NOW(), ip = $2 WHERE id = $1`,
		id, ip,
	)
	return err
}

// UpdateRating writes a player's rating and win/loss record in one statement.
// The ranking system batches these after each finished match.
func (r *AccountRepo) UpdateRating(ctx context.Context, id int64, rating, wins, losses int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET rating = $2, wins = $3, losses = $4 WHERE id = $1`,
		id, rating, wins, losses,
	)
	return err
}
