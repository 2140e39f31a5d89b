package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrMatchNotFound        = errors.New("match result not found")
	UnexpectedDatabaseError = errors.New("unexpected database error")
)

// MatchResult is the durable record of one completed game, written for the
// reward layer and the history view. WinnerID is empty when the game ended
// without a winner (all-zero board).
type MatchResult struct {
	ID            string          `json:"id"`
	RoomID        string          `json:"roomId"`
	RoomName      string          `json:"roomName"`
	WinnerID      string          `json:"winnerId"`
	WinnerName    string          `json:"winnerName"`
	WalletAddress string          `json:"walletAddress"`
	RewardAmount  decimal.Decimal `json:"rewardAmount"`
	Scores        map[string]int  `json:"scores"`
	CompletedAt   time.Time       `json:"completedAt"`
}

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (repo *PostgresRepo) Close() {
	repo.pool.Close()
}

func (repo *PostgresRepo) InsertMatchResult(ctx context.Context, result MatchResult) (string, error) {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return "", fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
	}

	row := repo.pool.QueryRow(ctx,
		`INSERT INTO match_results(room_id, room_name, winner_id, winner_name, wallet_address, reward_amount, scores, completed_at)
		 VALUES($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		result.RoomID, result.RoomName, result.WinnerID, result.WinnerName,
		result.WalletAddress, result.RewardAmount, scores, result.CompletedAt)

	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
	}

	return id, nil
}

func (repo *PostgresRepo) GetMatchResult(ctx context.Context, id string) (MatchResult, error) {
	row := repo.pool.QueryRow(ctx,
		`SELECT id, room_id, room_name, winner_id, winner_name, wallet_address, reward_amount, scores, completed_at
		 FROM match_results WHERE id = $1`, id)

	result, err := scanMatchResult(row)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return MatchResult{}, ErrMatchNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return MatchResult{}, err
		default:
			return MatchResult{}, fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
		}
	}

	return result, nil
}

// RecentMatchResults returns the newest results first, optionally filtered by
// room id when roomID is non-empty.
func (repo *PostgresRepo) RecentMatchResults(ctx context.Context, roomID string, limit int) ([]MatchResult, error) {
	query := `SELECT id, room_id, room_name, winner_id, winner_name, wallet_address, reward_amount, scores, completed_at
		 FROM match_results`
	args := []any{limit}
	if roomID != "" {
		query += ` WHERE room_id = $2`
		args = append(args, roomID)
	}
	query += ` ORDER BY completed_at DESC LIMIT $1`

	rows, err := repo.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	results := make([]MatchResult, 0, limit)
	for rows.Next() {
		result, err := scanMatchResult(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", UnexpectedDatabaseError, err)
	}

	return results, nil
}

func scanMatchResult(row pgx.Row) (MatchResult, error) {
	var (
		result MatchResult
		scores []byte
	)
	err := row.Scan(&result.ID, &result.RoomID, &result.RoomName, &result.WinnerID,
		&result.WinnerName, &result.WalletAddress, &result.RewardAmount, &scores, &result.CompletedAt)
	if err != nil {
		return MatchResult{}, err
	}
	if err := json.Unmarshal(scores, &result.Scores); err != nil {
		return MatchResult{}, err
	}
	return result, nil
}
