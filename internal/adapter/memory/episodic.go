// Package memory implements the assistant's two persistence layers beyond
// working transcripts: episodic memory (embedded summaries of past health
// conversations, recalled by cosine similarity) and long-term memory (goals
// and computed baselines that survive across every conversation).
package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"oura-ai/internal/domain"
)

// EpisodicStore implements domain.EpisodicMemory on SQLite. Each insight is
// stored with a 768-dim embedding of its query and summary; an in-memory
// index over those vectors is hydrated at open so searches never scan the
// database.
type EpisodicStore struct {
	db       *sql.DB
	embedder domain.EmbeddingProvider
	logger   *slog.Logger
	idx      *insightIndex
}

// NewEpisodic opens (or creates) the episodic database at dbPath, ensures the
// schema, and hydrates the vector index from any previously stored insights.
func NewEpisodic(dbPath string, embedder domain.EmbeddingProvider, logger *slog.Logger) (*EpisodicStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open episodic db: %w", err)
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
			return nil, fmt.Errorf("episodic db pragma: %w", err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS health_episodic_memory (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL,
			session_id     TEXT NOT NULL DEFAULT '',
			summary        TEXT NOT NULL,
			query          TEXT NOT NULL DEFAULT '',
			outcome        TEXT NOT NULL DEFAULT '',
			health_metrics TEXT,
			embedding      BLOB,
			created_at     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodic_user_created
			ON health_episodic_memory(user_id, created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate episodic db: %w", err)
	}

	s := &EpisodicStore{
		db:       db,
		embedder: embedder,
		logger:   logger,
		idx:      newInsightIndex(),
	}
	if err := s.hydrateIndex(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *EpisodicStore) Close() error {
	return s.db.Close()
}

// Store implements domain.EpisodicMemory. The insight's query and summary are
// embedded together so recall matches both what the user asked and what was
// learned.
func (s *EpisodicStore) Store(ctx context.Context, insight domain.Insight) (string, error) {
	if insight.ID == "" {
		insight.ID = newID()
	}
	if insight.CreatedAt.IsZero() {
		insight.CreatedAt = time.Now().UTC()
	}

	vecs, err := s.embedder.Embed(ctx, []string{insight.Query + " " + insight.Summary})
	if err != nil {
		return "", fmt.Errorf("embed insight: %w", err)
	}
	if len(vecs) == 0 {
		return "", fmt.Errorf("embed insight: %w", domain.ErrEmbeddingFailed)
	}
	embedding := vecs[0]

	var metricsJSON any
	if len(insight.Metrics) > 0 {
		b, err := json.Marshal(insight.Metrics)
		if err != nil {
			return "", fmt.Errorf("marshal metrics: %w", err)
		}
		metricsJSON = string(b)
	}

	const insert = `
		INSERT INTO health_episodic_memory
			(id, user_id, session_id, summary, query, outcome, health_metrics, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, insert,
		insight.ID,
		insight.UserID,
		insight.SessionID,
		insight.Summary,
		insight.Query,
		insight.Outcome,
		metricsJSON,
		float32ToBytes(embedding),
		insight.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert insight: %w", err)
	}

	s.idx.put(insight, embedding)
	s.logger.Debug("episodic memory stored",
		"id", insight.ID, "user", insight.UserID, "summary_len", len(insight.Summary))
	return insight.ID, nil
}

// Search implements domain.EpisodicMemory. The query is embedded and compared
// against the in-memory index; only the given user's insights are considered.
func (s *EpisodicStore) Search(ctx context.Context, userID, query string, limit int, threshold float64) ([]domain.Insight, error) {
	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed search query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embed search query: %w", domain.ErrEmbeddingFailed)
	}
	return s.idx.search(userID, vecs[0], limit, threshold), nil
}

// Recent implements domain.EpisodicMemory.
func (s *EpisodicStore) Recent(ctx context.Context, userID string, limit int) ([]domain.Insight, error) {
	const q = `
		SELECT id, user_id, session_id, summary, query, outcome, health_metrics, created_at
		FROM health_episodic_memory
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent insights: %w", err)
	}
	defer rows.Close()

	insights := []domain.Insight{}
	for rows.Next() {
		ins, err := scanInsight(rows)
		if err != nil {
			return nil, err
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}

// Delete implements domain.EpisodicMemory. Deleting an absent id is a no-op.
func (s *EpisodicStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM health_episodic_memory WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete insight: %w", err)
	}
	s.idx.remove(id)
	return nil
}

// Truncation limits applied when summarizing an exchange. The full query is
// still kept in its own column; only the derived summary and outcome are cut.
const (
	maxSummaryQueryLen = 200
	maxOutcomeLen      = 500
)

// SaveExchange implements domain.EpisodicMemory. It condenses one
// question/answer round into an insight: the summary names what the user
// asked, the outcome keeps the head of the reply.
func (s *EpisodicStore) SaveExchange(ctx context.Context, userID, sessionID, query, response string) (string, error) {
	outcome := response
	if r := []rune(response); len(r) > maxOutcomeLen {
		outcome = string(r[:maxOutcomeLen]) + "..."
	}

	return s.Store(ctx, domain.Insight{
		UserID:    userID,
		SessionID: sessionID,
		Summary:   "User asked about: " + truncateRunes(query, maxSummaryQueryLen),
		Query:     query,
		Outcome:   outcome,
	})
}

// hydrateIndex loads every stored embedding into the in-memory index. Rows
// without an embedding blob cannot be searched and are skipped.
func (s *EpisodicStore) hydrateIndex() error {
	const q = `
		SELECT id, user_id, session_id, summary, query, outcome, health_metrics, created_at, embedding
		FROM health_episodic_memory
		WHERE embedding IS NOT NULL
	`
	rows, err := s.db.Query(q)
	if err != nil {
		return fmt.Errorf("hydrate episodic index: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			ins         domain.Insight
			metricsJSON sql.NullString
			createdAt   string
			blob        []byte
		)
		if err := rows.Scan(&ins.ID, &ins.UserID, &ins.SessionID, &ins.Summary,
			&ins.Query, &ins.Outcome, &metricsJSON, &createdAt, &blob); err != nil {
			return fmt.Errorf("hydrate episodic index: scan: %w", err)
		}
		if metricsJSON.Valid && metricsJSON.String != "" {
			if err := json.Unmarshal([]byte(metricsJSON.String), &ins.Metrics); err != nil {
				s.logger.Warn("episodic memory: bad metrics json, skipping field", "id", ins.ID, "error", err)
			}
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			ins.CreatedAt = t
		}
		emb := bytesToFloat32(blob)
		if emb == nil {
			continue
		}
		s.idx.put(ins, emb)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("hydrate episodic index: %w", err)
	}
	if count > 0 {
		s.logger.Info("episodic memory index hydrated", "insights", count)
	}
	return nil
}

// scanInsight reads one non-embedding row.
func scanInsight(rows *sql.Rows) (domain.Insight, error) {
	var (
		ins         domain.Insight
		metricsJSON sql.NullString
		createdAt   string
	)
	if err := rows.Scan(&ins.ID, &ins.UserID, &ins.SessionID, &ins.Summary,
		&ins.Query, &ins.Outcome, &metricsJSON, &createdAt); err != nil {
		return domain.Insight{}, fmt.Errorf("scan insight: %w", err)
	}
	if metricsJSON.Valid && metricsJSON.String != "" {
		// Metrics are optional; a bad blob loses the field, not the row.
		_ = json.Unmarshal([]byte(metricsJSON.String), &ins.Metrics)
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		ins.CreatedAt = t
	}
	return ins, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// newID returns a ULID, so insight ids sort by creation time.
func newID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// insightIndex is the in-memory vector index over stored insights. All
// mutation goes through put/remove so the map stays consistent with SQLite.
type insightIndex struct {
	mu      sync.RWMutex
	entries map[string]indexedInsight
}

type indexedInsight struct {
	insight   domain.Insight
	embedding []float32
}

func newInsightIndex() *insightIndex {
	return &insightIndex{entries: make(map[string]indexedInsight)}
}

func (idx *insightIndex) put(ins domain.Insight, embedding []float32) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[ins.ID] = indexedInsight{insight: ins, embedding: embedding}
}

func (idx *insightIndex) remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, id)
}

func (idx *insightIndex) size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// search returns the user's insights whose cosine similarity to the query
// vector meets the threshold, best matches first, at most limit results.
func (idx *insightIndex) search(userID string, query []float32, limit int, threshold float64) []domain.Insight {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	matches := []domain.Insight{}
	for _, e := range idx.entries {
		if e.insight.UserID != userID {
			continue
		}
		sim := float64(cosineSimilarity(query, e.embedding))
		if sim < threshold {
			continue
		}
		ins := e.insight
		ins.Similarity = sim
		matches = append(matches, ins)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 when
// the vectors are mismatched, empty, or degenerate.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denom := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denom == 0 {
		return 0
	}
	result := dot / denom
	if math.IsNaN(float64(result)) || math.IsInf(float64(result), 0) {
		return 0
	}
	return result
}

// float32ToBytes encodes a vector as little-endian bytes for BLOB storage.
func float32ToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32 converts little-endian bytes back to a float32 slice.
func bytesToFloat32(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

var _ domain.EpisodicMemory = (*EpisodicStore)(nil)
