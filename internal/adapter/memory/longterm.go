package memory

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"oura-ai/internal/domain"
)

// LongTermStore implements domain.LongTermMemory on SQLite. Goals keep their
// full history (replaced and abandoned rows stay queryable); baselines hold
// exactly one row per (user, metric).
type LongTermStore struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewLongTerm opens (or creates) the long-term database at dbPath and ensures
// the goal and baseline tables exist.
func NewLongTerm(dbPath string, logger *slog.Logger) (*LongTermStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open long-term db: %w", err)
	}

	// SQLite write safety: single writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("long-term db pragma: %w", err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS health_user_goals (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			goal_type    TEXT NOT NULL,
			target_value REAL,
			target_text  TEXT,
			status       TEXT NOT NULL DEFAULT 'active',
			created_at   TEXT NOT NULL,
			achieved_at  TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_goals_user_status
			ON health_user_goals(user_id, status);

		CREATE TABLE IF NOT EXISTS health_baselines (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			metric         TEXT NOT NULL,
			baseline_value REAL NOT NULL,
			sample_size    INTEGER NOT NULL DEFAULT 0,
			computed_at    TEXT NOT NULL,
			UNIQUE (user_id, metric)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate long-term db: %w", err)
	}

	return &LongTermStore{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *LongTermStore) Close() error {
	return s.db.Close()
}

// SetGoal implements domain.LongTermMemory. Any active goal of the same type
// is marked replaced in the same transaction that records the new one.
func (s *LongTermStore) SetGoal(ctx context.Context, userID, goalType string, targetValue float64, targetText string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("set goal: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		UPDATE health_user_goals
		SET status = ?
		WHERE user_id = ? AND goal_type = ? AND status = ?
	`, domain.GoalStatusReplaced, userID, goalType, domain.GoalStatusActive)
	if err != nil {
		return "", fmt.Errorf("set goal: replace previous: %w", err)
	}

	// Unset targets persist as NULL so readers can tell "no target" from 0.
	var tv, tt any
	if targetValue != 0 {
		tv = targetValue
	}
	if targetText != "" {
		tt = targetText
	}

	id := newID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO health_user_goals (id, user_id, goal_type, target_value, target_text, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, goalType, tv, tt, domain.GoalStatusActive, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("set goal: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("set goal: commit: %w", err)
	}

	s.logger.Info("health goal set", "user", userID, "type", goalType)
	return id, nil
}

// ActiveGoals implements domain.LongTermMemory. ULID ids break ties between
// goals created within the same second.
func (s *LongTermStore) ActiveGoals(ctx context.Context, userID string) ([]domain.HealthGoal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, goal_type, target_value, target_text, status, created_at, achieved_at
		FROM health_user_goals
		WHERE user_id = ? AND status = ?
		ORDER BY created_at DESC, id DESC
	`, userID, domain.GoalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("query active goals: %w", err)
	}
	defer rows.Close()

	goals := []domain.HealthGoal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// MarkGoalAchieved implements domain.LongTermMemory.
func (s *LongTermStore) MarkGoalAchieved(ctx context.Context, goalID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE health_user_goals SET status = ?, achieved_at = ? WHERE id = ?
	`, domain.GoalStatusAchieved, s.now().UTC().Format(time.RFC3339), goalID)
	if err != nil {
		return fmt.Errorf("mark goal achieved: %w", err)
	}
	return s.requireGoal(res, "LongTermStore.MarkGoalAchieved", goalID)
}

// AbandonGoal implements domain.LongTermMemory.
func (s *LongTermStore) AbandonGoal(ctx context.Context, goalID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE health_user_goals SET status = ? WHERE id = ?
	`, domain.GoalStatusAbandoned, goalID)
	if err != nil {
		return fmt.Errorf("abandon goal: %w", err)
	}
	return s.requireGoal(res, "LongTermStore.AbandonGoal", goalID)
}

func (s *LongTermStore) requireGoal(res sql.Result, op, goalID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return domain.NewSubSystemError("goal", op, domain.ErrNotFound, goalID)
	}
	return nil
}

// SetBaseline implements domain.LongTermMemory. The returned id is the stored
// row's id, which is stable across recomputations of the same metric.
func (s *LongTermStore) SetBaseline(ctx context.Context, userID, metric string, value float64, sampleSize int) (string, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_baselines (id, user_id, metric, baseline_value, sample_size, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, metric) DO UPDATE SET
			baseline_value = excluded.baseline_value,
			sample_size    = excluded.sample_size,
			computed_at    = excluded.computed_at
	`, newID(), userID, metric, value, sampleSize, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("set baseline: %w", err)
	}

	var id string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM health_baselines WHERE user_id = ? AND metric = ?`,
		userID, metric).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("set baseline: read id: %w", err)
	}

	s.logger.Info("health baseline set", "user", userID, "metric", metric, "value", value, "samples", sampleSize)
	return id, nil
}

// Baselines implements domain.LongTermMemory.
func (s *LongTermStore) Baselines(ctx context.Context, userID string) (map[string]domain.HealthBaseline, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, metric, baseline_value, sample_size, computed_at
		FROM health_baselines
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query baselines: %w", err)
	}
	defer rows.Close()

	baselines := map[string]domain.HealthBaseline{}
	for rows.Next() {
		var (
			b          domain.HealthBaseline
			computedAt string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Metric, &b.Value, &b.SampleSize, &computedAt); err != nil {
			return nil, fmt.Errorf("scan baseline: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, computedAt); err == nil {
			b.ComputedAt = t
		}
		baselines[b.Metric] = b
	}
	return baselines, rows.Err()
}

func scanGoal(rows *sql.Rows) (domain.HealthGoal, error) {
	var (
		g          domain.HealthGoal
		targetVal  sql.NullFloat64
		targetText sql.NullString
		createdAt  string
		achievedAt sql.NullString
	)
	if err := rows.Scan(&g.ID, &g.UserID, &g.Type, &targetVal, &targetText,
		&g.Status, &createdAt, &achievedAt); err != nil {
		return domain.HealthGoal{}, fmt.Errorf("scan goal: %w", err)
	}
	g.TargetValue = targetVal.Float64
	g.TargetText = targetText.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		g.CreatedAt = t
	}
	if achievedAt.Valid {
		if t, err := time.Parse(time.RFC3339, achievedAt.String); err == nil {
			g.AchievedAt = t
		}
	}
	return g, nil
}

var _ domain.LongTermMemory = (*LongTermStore)(nil)
