// Package healthdata provides the SQLite-backed read surface over synced
// Oura ring metrics, plus the freshness validation every health tool runs
// before presenting results.
package healthdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"oura-ai/internal/domain"
)

// Store implements domain.HealthStore over a SQLite database populated by
// the external collector. The store only reads at runtime; the Insert
// methods exist for the collector and for seeding test databases.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the health database at dbPath and ensures the
// metric tables exist.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open health db: %w", err)
	}

	// SQLite write safety: single writer.
	db.SetMaxOpenConns(1)

	// Pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("health db pragma: %w", err)
		}
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate health db: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS oura_sleep_periods (
			date                TEXT NOT NULL,
			type                TEXT NOT NULL,
			total_sleep_hours   REAL NOT NULL DEFAULT 0,
			time_in_bed_hours   REAL NOT NULL DEFAULT 0,
			efficiency_percent  REAL NOT NULL DEFAULT 0,
			rem_hours           REAL NOT NULL DEFAULT 0,
			deep_hours          REAL NOT NULL DEFAULT 0,
			light_hours         REAL NOT NULL DEFAULT 0,
			awake_time          REAL NOT NULL DEFAULT 0,
			rem_percentage      REAL NOT NULL DEFAULT 0,
			deep_percentage     REAL NOT NULL DEFAULT 0,
			light_percentage    REAL NOT NULL DEFAULT 0,
			latency_minutes     REAL NOT NULL DEFAULT 0,
			heart_rate_avg      REAL NOT NULL DEFAULT 0,
			heart_rate_min      REAL NOT NULL DEFAULT 0,
			hrv_avg             REAL NOT NULL DEFAULT 0,
			hrv_min             REAL NOT NULL DEFAULT 0,
			hrv_max             REAL NOT NULL DEFAULT 0,
			respiratory_rate    REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (date, type)
		)`,
		`CREATE TABLE IF NOT EXISTS oura_daily_sleep (
			date        TEXT PRIMARY KEY,
			sleep_score INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS oura_sleep_time (
			date           TEXT PRIMARY KEY,
			recommendation TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS oura_activity (
			date                    TEXT PRIMARY KEY,
			activity_score          INTEGER NOT NULL DEFAULT 0,
			steps                   INTEGER NOT NULL DEFAULT 0,
			distance_km             REAL NOT NULL DEFAULT 0,
			calories_active         INTEGER NOT NULL DEFAULT 0,
			calories_total          INTEGER NOT NULL DEFAULT 0,
			high_activity_minutes   REAL NOT NULL DEFAULT 0,
			medium_activity_minutes REAL NOT NULL DEFAULT 0,
			low_activity_minutes    REAL NOT NULL DEFAULT 0,
			sedentary_minutes       REAL NOT NULL DEFAULT 0,
			total_active_minutes    REAL NOT NULL DEFAULT 0,
			met_minutes             REAL NOT NULL DEFAULT 0,
			inactivity_alerts       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS oura_readiness (
			date                        TEXT PRIMARY KEY,
			readiness_score             INTEGER NOT NULL DEFAULT 0,
			temperature_deviation       REAL NOT NULL DEFAULT 0,
			temperature_trend_deviation REAL NOT NULL DEFAULT 0,
			recovery_index              INTEGER NOT NULL DEFAULT 0,
			resting_heart_rate          REAL NOT NULL DEFAULT 0,
			hrv_balance                 INTEGER NOT NULL DEFAULT 0,
			score_activity_balance      INTEGER NOT NULL DEFAULT 0,
			score_body_temperature      INTEGER NOT NULL DEFAULT 0,
			score_hrv_balance           INTEGER NOT NULL DEFAULT 0,
			score_previous_night        INTEGER NOT NULL DEFAULT 0,
			score_recovery_index        INTEGER NOT NULL DEFAULT 0,
			score_resting_heart_rate    INTEGER NOT NULL DEFAULT 0,
			score_previous_day_activity INTEGER NOT NULL DEFAULT 0,
			score_sleep_balance         INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS oura_workouts (
			date             TEXT NOT NULL,
			activity         TEXT NOT NULL,
			intensity        TEXT NOT NULL DEFAULT '',
			duration_minutes REAL NOT NULL DEFAULT 0,
			calories         REAL NOT NULL DEFAULT 0,
			distance_km      REAL NOT NULL DEFAULT 0,
			source           TEXT NOT NULL DEFAULT '',
			label            TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sleep_periods_date ON oura_sleep_periods(date)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_date ON oura_workouts(date)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping implements domain.HealthStore.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// today returns the current day truncated to a date.
func (s *Store) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// cutoff returns the date string N days before today.
func (s *Store) cutoff(days int) string {
	return s.today().AddDate(0, 0, -days).Format(domain.DateOnly)
}

const sleepColumns = `
	sp.date, sp.type, sp.total_sleep_hours, sp.time_in_bed_hours,
	sp.efficiency_percent, sp.rem_hours, sp.deep_hours, sp.light_hours,
	sp.awake_time, sp.rem_percentage, sp.deep_percentage, sp.light_percentage,
	sp.latency_minutes, sp.heart_rate_avg, sp.heart_rate_min, sp.hrv_avg,
	sp.hrv_min, sp.hrv_max, sp.respiratory_rate,
	COALESCE(ds.sleep_score, 0)`

// LastNightSleep implements domain.HealthStore.
func (s *Store) LastNightSleep(ctx context.Context) (*domain.SleepPeriod, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sleepColumns+`
		FROM oura_sleep_periods sp
		LEFT JOIN oura_daily_sleep ds ON sp.date = ds.date
		WHERE sp.type = ?
		ORDER BY sp.date DESC
		LIMIT 1`, domain.SleepTypeLong)
	return scanSleep(row)
}

// SleepByDate implements domain.HealthStore.
func (s *Store) SleepByDate(ctx context.Context, day time.Time) (*domain.SleepPeriod, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sleepColumns+`
		FROM oura_sleep_periods sp
		LEFT JOIN oura_daily_sleep ds ON sp.date = ds.date
		WHERE sp.date = ? AND sp.type = ?
		LIMIT 1`, day.Format(domain.DateOnly), domain.SleepTypeLong)
	return scanSleep(row)
}

// SleepRange implements domain.HealthStore.
func (s *Store) SleepRange(ctx context.Context, days int) ([]domain.SleepPeriod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sleepColumns+`
		FROM oura_sleep_periods sp
		LEFT JOIN oura_daily_sleep ds ON sp.date = ds.date
		WHERE sp.date >= ? AND sp.type = ?
		ORDER BY sp.date`, s.cutoff(days), domain.SleepTypeLong)
	if err != nil {
		return nil, fmt.Errorf("query sleep range: %w", err)
	}
	defer rows.Close()

	periods := []domain.SleepPeriod{}
	for rows.Next() {
		p, err := scanSleep(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

// LatestSleepTimeRecommendation implements domain.HealthStore.
func (s *Store) LatestSleepTimeRecommendation(ctx context.Context) (*domain.SleepTimeRecommendation, error) {
	var (
		dateStr string
		rec     domain.SleepTimeRecommendation
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT date, recommendation
		FROM oura_sleep_time
		ORDER BY date DESC
		LIMIT 1`).Scan(&dateStr, &rec.Recommendation)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query sleep time: %w", err)
	}
	rec.Day, err = parseDay(dateStr)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const activityColumns = `
	date, activity_score, steps, distance_km,
	calories_active, calories_total,
	high_activity_minutes, medium_activity_minutes,
	low_activity_minutes, sedentary_minutes,
	total_active_minutes, met_minutes, inactivity_alerts`

// TodayActivity implements domain.HealthStore. When today has not synced
// yet it falls back to yesterday.
func (s *Store) TodayActivity(ctx context.Context) (*domain.DailyActivity, error) {
	today := s.today()
	for _, day := range []time.Time{today, today.AddDate(0, 0, -1)} {
		row := s.db.QueryRowContext(ctx, `
			SELECT `+activityColumns+`
			FROM oura_activity
			WHERE date = ?
			LIMIT 1`, day.Format(domain.DateOnly))
		a, err := scanActivity(row)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		return a, err
	}
	return nil, domain.ErrNotFound
}

// ActivityRange implements domain.HealthStore.
func (s *Store) ActivityRange(ctx context.Context, days int) ([]domain.DailyActivity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM oura_activity
		WHERE date >= ?
		ORDER BY date`, s.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("query activity range: %w", err)
	}
	defer rows.Close()

	activities := []domain.DailyActivity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

const readinessColumns = `
	date, readiness_score, temperature_deviation,
	temperature_trend_deviation, recovery_index,
	resting_heart_rate, hrv_balance,
	score_activity_balance, score_body_temperature,
	score_hrv_balance, score_previous_night,
	score_recovery_index, score_resting_heart_rate,
	score_previous_day_activity, score_sleep_balance`

// LatestReadiness implements domain.HealthStore.
func (s *Store) LatestReadiness(ctx context.Context) (*domain.Readiness, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+readinessColumns+`
		FROM oura_readiness
		ORDER BY date DESC
		LIMIT 1`)
	return scanReadiness(row)
}

// ReadinessRange implements domain.HealthStore.
func (s *Store) ReadinessRange(ctx context.Context, days int) ([]domain.Readiness, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+readinessColumns+`
		FROM oura_readiness
		WHERE date >= ?
		ORDER BY date`, s.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("query readiness range: %w", err)
	}
	defer rows.Close()

	assessments := []domain.Readiness{}
	for rows.Next() {
		r, err := scanReadiness(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *r)
	}
	return assessments, rows.Err()
}

const workoutColumns = `
	date, activity, intensity, duration_minutes,
	calories, distance_km, source, label`

// RecentWorkouts implements domain.HealthStore.
func (s *Store) RecentWorkouts(ctx context.Context, days int) ([]domain.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+workoutColumns+`
		FROM oura_workouts
		WHERE date >= ?
		ORDER BY date DESC`, s.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("query recent workouts: %w", err)
	}
	defer rows.Close()
	return collectWorkouts(rows)
}

// WorkoutsByType implements domain.HealthStore.
func (s *Store) WorkoutsByType(ctx context.Context, activityType string, days int) ([]domain.Workout, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+workoutColumns+`
		FROM oura_workouts
		WHERE date >= ? AND LOWER(activity) LIKE LOWER(?)
		ORDER BY date DESC`, s.cutoff(days), "%"+activityType+"%")
	if err != nil {
		return nil, fmt.Errorf("query workouts by type: %w", err)
	}
	defer rows.Close()
	return collectWorkouts(rows)
}

func collectWorkouts(rows *sql.Rows) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	for rows.Next() {
		var (
			dateStr string
			w       domain.Workout
		)
		if err := rows.Scan(
			&dateStr, &w.Activity, &w.Intensity, &w.DurationMinutes,
			&w.Calories, &w.DistanceKM, &w.Source, &w.Label,
		); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		day, err := parseDay(dateStr)
		if err != nil {
			return nil, err
		}
		w.Day = day
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// --- Row scanning ---

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSleep(row scanner) (*domain.SleepPeriod, error) {
	var (
		dateStr string
		p       domain.SleepPeriod
	)
	err := row.Scan(
		&dateStr, &p.Type, &p.TotalSleepHours, &p.TimeInBedHours,
		&p.Efficiency, &p.REMHours, &p.DeepHours, &p.LightHours,
		&p.AwakeHours, &p.REMPercent, &p.DeepPercent, &p.LightPercent,
		&p.LatencyMinutes, &p.HeartRateAvg, &p.HeartRateMin, &p.HRVAvg,
		&p.HRVMin, &p.HRVMax, &p.RespiratoryRate,
		&p.Score,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sleep period: %w", err)
	}
	p.Day, err = parseDay(dateStr)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanActivity(row scanner) (*domain.DailyActivity, error) {
	var (
		dateStr string
		a       domain.DailyActivity
	)
	err := row.Scan(
		&dateStr, &a.Score, &a.Steps, &a.DistanceKM,
		&a.CaloriesActive, &a.CaloriesTotal,
		&a.HighActivityMinutes, &a.MediumActivityMinutes,
		&a.LowActivityMinutes, &a.SedentaryMinutes,
		&a.TotalActiveMinutes, &a.METMinutes, &a.InactivityAlerts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	a.Day, err = parseDay(dateStr)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanReadiness(row scanner) (*domain.Readiness, error) {
	var (
		dateStr string
		r       domain.Readiness
	)
	err := row.Scan(
		&dateStr, &r.Score, &r.TemperatureDeviation,
		&r.TemperatureTrendDeviation, &r.RecoveryIndex,
		&r.RestingHeartRate, &r.HRVBalance,
		&r.ScoreActivityBalance, &r.ScoreBodyTemperature,
		&r.ScoreHRVBalance, &r.ScorePreviousNight,
		&r.ScoreRecoveryIndex, &r.ScoreRestingHeartRate,
		&r.ScorePreviousDayActivity, &r.ScoreSleepBalance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan readiness: %w", err)
	}
	r.Day, err = parseDay(dateStr)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func parseDay(s string) (time.Time, error) {
	if len(s) > len(domain.DateOnly) {
		s = s[:len(domain.DateOnly)]
	}
	day, err := time.Parse(domain.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return day, nil
}

// --- Collector write surface ---

// InsertSleepPeriod upserts one sleep period keyed by (date, type).
func (s *Store) InsertSleepPeriod(ctx context.Context, p domain.SleepPeriod) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_sleep_periods (
			date, type, total_sleep_hours, time_in_bed_hours,
			efficiency_percent, rem_hours, deep_hours, light_hours,
			awake_time, rem_percentage, deep_percentage, light_percentage,
			latency_minutes, heart_rate_avg, heart_rate_min, hrv_avg,
			hrv_min, hrv_max, respiratory_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date, type) DO UPDATE SET
			total_sleep_hours = excluded.total_sleep_hours,
			time_in_bed_hours = excluded.time_in_bed_hours,
			efficiency_percent = excluded.efficiency_percent,
			rem_hours = excluded.rem_hours,
			deep_hours = excluded.deep_hours,
			light_hours = excluded.light_hours,
			awake_time = excluded.awake_time,
			rem_percentage = excluded.rem_percentage,
			deep_percentage = excluded.deep_percentage,
			light_percentage = excluded.light_percentage,
			latency_minutes = excluded.latency_minutes,
			heart_rate_avg = excluded.heart_rate_avg,
			heart_rate_min = excluded.heart_rate_min,
			hrv_avg = excluded.hrv_avg,
			hrv_min = excluded.hrv_min,
			hrv_max = excluded.hrv_max,
			respiratory_rate = excluded.respiratory_rate`,
		p.Day.Format(domain.DateOnly), p.Type, p.TotalSleepHours, p.TimeInBedHours,
		p.Efficiency, p.REMHours, p.DeepHours, p.LightHours,
		p.AwakeHours, p.REMPercent, p.DeepPercent, p.LightPercent,
		p.LatencyMinutes, p.HeartRateAvg, p.HeartRateMin, p.HRVAvg,
		p.HRVMin, p.HRVMax, p.RespiratoryRate,
	)
	return err
}

// InsertDailySleep upserts one daily sleep score.
func (s *Store) InsertDailySleep(ctx context.Context, day time.Time, score int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_daily_sleep (date, sleep_score) VALUES (?, ?)
		ON CONFLICT (date) DO UPDATE SET sleep_score = excluded.sleep_score`,
		day.Format(domain.DateOnly), score,
	)
	return err
}

// InsertSleepTimeRecommendation upserts one bedtime recommendation.
func (s *Store) InsertSleepTimeRecommendation(ctx context.Context, rec domain.SleepTimeRecommendation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_sleep_time (date, recommendation) VALUES (?, ?)
		ON CONFLICT (date) DO UPDATE SET recommendation = excluded.recommendation`,
		rec.Day.Format(domain.DateOnly), rec.Recommendation,
	)
	return err
}

// InsertActivity upserts one day of activity.
func (s *Store) InsertActivity(ctx context.Context, a domain.DailyActivity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_activity (
			date, activity_score, steps, distance_km,
			calories_active, calories_total,
			high_activity_minutes, medium_activity_minutes,
			low_activity_minutes, sedentary_minutes,
			total_active_minutes, met_minutes, inactivity_alerts
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			activity_score = excluded.activity_score,
			steps = excluded.steps,
			distance_km = excluded.distance_km,
			calories_active = excluded.calories_active,
			calories_total = excluded.calories_total,
			high_activity_minutes = excluded.high_activity_minutes,
			medium_activity_minutes = excluded.medium_activity_minutes,
			low_activity_minutes = excluded.low_activity_minutes,
			sedentary_minutes = excluded.sedentary_minutes,
			total_active_minutes = excluded.total_active_minutes,
			met_minutes = excluded.met_minutes,
			inactivity_alerts = excluded.inactivity_alerts`,
		a.Day.Format(domain.DateOnly), a.Score, a.Steps, a.DistanceKM,
		a.CaloriesActive, a.CaloriesTotal,
		a.HighActivityMinutes, a.MediumActivityMinutes,
		a.LowActivityMinutes, a.SedentaryMinutes,
		a.TotalActiveMinutes, a.METMinutes, a.InactivityAlerts,
	)
	return err
}

// InsertReadiness upserts one day of readiness.
func (s *Store) InsertReadiness(ctx context.Context, r domain.Readiness) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_readiness (
			date, readiness_score, temperature_deviation,
			temperature_trend_deviation, recovery_index,
			resting_heart_rate, hrv_balance,
			score_activity_balance, score_body_temperature,
			score_hrv_balance, score_previous_night,
			score_recovery_index, score_resting_heart_rate,
			score_previous_day_activity, score_sleep_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			readiness_score = excluded.readiness_score,
			temperature_deviation = excluded.temperature_deviation,
			temperature_trend_deviation = excluded.temperature_trend_deviation,
			recovery_index = excluded.recovery_index,
			resting_heart_rate = excluded.resting_heart_rate,
			hrv_balance = excluded.hrv_balance,
			score_activity_balance = excluded.score_activity_balance,
			score_body_temperature = excluded.score_body_temperature,
			score_hrv_balance = excluded.score_hrv_balance,
			score_previous_night = excluded.score_previous_night,
			score_recovery_index = excluded.score_recovery_index,
			score_resting_heart_rate = excluded.score_resting_heart_rate,
			score_previous_day_activity = excluded.score_previous_day_activity,
			score_sleep_balance = excluded.score_sleep_balance`,
		r.Day.Format(domain.DateOnly), r.Score, r.TemperatureDeviation,
		r.TemperatureTrendDeviation, r.RecoveryIndex,
		r.RestingHeartRate, r.HRVBalance,
		r.ScoreActivityBalance, r.ScoreBodyTemperature,
		r.ScoreHRVBalance, r.ScorePreviousNight,
		r.ScoreRecoveryIndex, r.ScoreRestingHeartRate,
		r.ScorePreviousDayActivity, r.ScoreSleepBalance,
	)
	return err
}

// InsertWorkout appends one workout record.
func (s *Store) InsertWorkout(ctx context.Context, w domain.Workout) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO oura_workouts (
			date, activity, intensity, duration_minutes,
			calories, distance_km, source, label
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.Day.Format(domain.DateOnly), w.Activity, w.Intensity, w.DurationMinutes,
		w.Calories, w.DistanceKM, w.Source, w.Label,
	)
	return err
}

// Compile-time interface check.
var _ domain.HealthStore = (*Store)(nil)
