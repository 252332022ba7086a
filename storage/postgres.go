package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

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

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func wrapDatabaseError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
}

// RandomQuestions implements game.QuestionBank. The database shuffles;
// fewer than count rows is not an error.
func (pgr *PostgresRepo) RandomQuestions(ctx context.Context, count int) ([]domain.Question, error) {
	query := `SELECT id, prompt, options, correct_option, explanation, points, category
		FROM quiz_questions ORDER BY RANDOM() LIMIT $1`

	rows, err := pgr.pool.Query(ctx, query, count)
	if err != nil {
		return nil, wrapDatabaseError(err)
	}

	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Question, error) {
		var q domain.Question
		err := row.Scan(&q.Id, &q.Prompt, &q.Options, &q.CorrectOption, &q.Explanation, &q.Points, &q.Category)
		return q, err
	})
	if err != nil {
		return nil, wrapDatabaseError(err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return questions, nil
}

// AddQuestion inserts or replaces a question in the bank.
func (pgr *PostgresRepo) AddQuestion(ctx context.Context, q domain.Question) error {
	_, err := pgr.pool.Exec(ctx, `INSERT INTO quiz_questions (id, prompt, options, correct_option, explanation, points, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET prompt = EXCLUDED.prompt, options = EXCLUDED.options,
			correct_option = EXCLUDED.correct_option, explanation = EXCLUDED.explanation,
			points = EXCLUDED.points, category = EXCLUDED.category`,
		q.Id, q.Prompt, q.Options, q.CorrectOption, q.Explanation, q.Points, q.Category)
	if err != nil {
		var pgErr *pgconn.PgError
		// "23514" is check_violation: bad option index or points
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return fmt.Errorf("%w: %s", domain.ErrInvalidQuestion, pgErr.ConstraintName)
		}
		return wrapDatabaseError(err)
	}
	return nil
}

// RecordMatch implements game.ResultSink: one matches row and one
// match_players row per player, all or nothing.
func (pgr *PostgresRepo) RecordMatch(ctx context.Context, result domain.MatchResult) error {
	err := pgx.BeginFunc(ctx, pgr.pool, func(tx pgx.Tx) error {
		var matchId int64
		err := tx.QueryRow(ctx, `INSERT INTO matches (room_code, game_type, started_at, ended_at, duration_ms, question_count)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			result.RoomCode, result.GameType, result.StartedAt, result.EndedAt, result.DurationMs, result.QuestionCount,
		).Scan(&matchId)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, p := range result.Players {
			batch.Queue(`INSERT INTO match_players (match_id, player_id, user_id, name, score, correct_answers, position, total_latency_seconds)
				VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)`,
				matchId, p.PlayerId, p.UserId, p.Name, p.Score, p.CorrectAnswers, p.Position, p.TotalLatencySeconds)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return wrapDatabaseError(err)
	}
	return nil
}
