// Package usecase implements the orchestration core: the supervisor that
// routes user queries, the specialist reasoning loop, and the conversation
// state threading them together.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"oura-ai/internal/domain"
)

// NewSessionID generates a fresh ULID for one conversational session.
func NewSessionID() string {
	return generateULID(time.Now())
}

func generateULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ConversationManager persists per-thread transcripts with JSON files under
// a data directory. Threads are keyed by id (one per (user, channel) pair,
// plus one private sub-thread per specialist); distinct threads never share
// state.
type ConversationManager struct {
	mu      sync.RWMutex
	threads map[string]*domain.Conversation
	dataDir string
}

// NewConversationManager creates a conversation store rooted at dataDir.
func NewConversationManager(dataDir string) *ConversationManager {
	return &ConversationManager{
		threads: make(map[string]*domain.Conversation),
		dataDir: dataDir,
	}
}

// validateThreadID checks that a thread id is safe for filesystem use.
// It rejects path separators, parent directory references, and null bytes.
func (cm *ConversationManager) validateThreadID(id string) error {
	if id == "" {
		return fmt.Errorf("thread ID cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("thread ID contains path separators: %q", id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("thread ID contains parent directory reference: %q", id)
	}
	if strings.Contains(id, "\x00") {
		return fmt.Errorf("thread ID contains null byte: %q", id)
	}
	if clean := filepath.Clean(id); clean != id {
		return fmt.Errorf("thread ID not clean path: %q vs %q", id, clean)
	}
	return nil
}

// Load implements domain.ConversationStore. A thread that has never been
// written to loads as an empty conversation. The returned conversation is a
// copy; callers never share message slices with the store.
func (cm *ConversationManager) Load(ctx context.Context, threadID string) (*domain.Conversation, error) {
	if err := cm.validateThreadID(threadID); err != nil {
		return nil, domain.NewDomainError("ConversationManager.Load", err, threadID)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, err := cm.getOrLoadLocked(threadID)
	if err != nil {
		return nil, err
	}
	return copyConversation(c), nil
}

// Append implements domain.ConversationStore. Messages are stamped with the
// current time when they carry none, and the thread is persisted to disk
// after every append.
func (cm *ConversationManager) Append(ctx context.Context, threadID string, msgs ...domain.Message) error {
	if err := cm.validateThreadID(threadID); err != nil {
		return domain.NewDomainError("ConversationManager.Append", err, threadID)
	}
	if len(msgs) == 0 {
		return nil
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, err := cm.getOrLoadLocked(threadID)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, m := range msgs {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		c.Messages = append(c.Messages, m)
	}
	c.UpdatedAt = now

	return cm.saveLocked(threadID, c)
}

// Clear implements domain.ConversationStore. Clearing an absent thread is a
// no-op.
func (cm *ConversationManager) Clear(ctx context.Context, threadID string) error {
	if err := cm.validateThreadID(threadID); err != nil {
		return domain.NewDomainError("ConversationManager.Clear", err, threadID)
	}

	cm.mu.Lock()
	delete(cm.threads, threadID)
	cm.mu.Unlock()

	path := filepath.Join(cm.dataDir, threadID+".json")
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove thread file: %w", err)
	}
	return nil
}

// Threads implements domain.ConversationStore. It merges in-memory threads
// with transcripts already on disk.
func (cm *ConversationManager) Threads(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	cm.mu.RLock()
	for id := range cm.threads {
		seen[id] = true
	}
	cm.mu.RUnlock()

	entries, err := os.ReadDir(cm.dataDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		seen[strings.TrimSuffix(name, ".json")] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

// ReapStale removes threads not updated within maxAge and returns the count
// removed. Both in-memory state and on-disk files go.
func (cm *ConversationManager) ReapStale(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	cm.mu.Lock()
	var stale []string
	for id, c := range cm.threads {
		if c.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		delete(cm.threads, id)
	}
	cm.mu.Unlock()

	// Disk-only threads are reaped by file mtime.
	entries, err := os.ReadDir(cm.dataDir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			id := strings.TrimSuffix(name, ".json")
			if cm.validateThreadID(id) != nil {
				continue
			}
			alreadyReaped := false
			for _, s := range stale {
				if s == id {
					alreadyReaped = true
					break
				}
			}
			if alreadyReaped {
				continue
			}
			info, err := e.Info()
			if err != nil || !info.ModTime().Before(cutoff) {
				continue
			}
			cm.mu.RLock()
			_, inMemory := cm.threads[id]
			cm.mu.RUnlock()
			if inMemory {
				continue
			}
			if os.Remove(filepath.Join(cm.dataDir, name)) == nil {
				stale = append(stale, id)
			}
		}
	}

	for _, id := range stale {
		os.Remove(filepath.Join(cm.dataDir, id+".json"))
	}
	return len(stale)
}

// getOrLoadLocked returns the live conversation for a thread, loading it
// from disk or creating it empty. Caller holds cm.mu.
func (cm *ConversationManager) getOrLoadLocked(threadID string) (*domain.Conversation, error) {
	if c, ok := cm.threads[threadID]; ok {
		return c, nil
	}

	c, err := cm.loadFromDisk(threadID)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load thread %q: %w", threadID, err)
		}
		now := time.Now()
		c = &domain.Conversation{
			ID:        generateULID(now),
			Messages:  make([]domain.Message, 0),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	cm.threads[threadID] = c
	return c, nil
}

func (cm *ConversationManager) loadFromDisk(threadID string) (*domain.Conversation, error) {
	data, err := os.ReadFile(filepath.Join(cm.dataDir, threadID+".json"))
	if err != nil {
		return nil, err
	}
	var c domain.Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = generateULID(time.Now())
	}
	return &c, nil
}

// saveLocked persists one thread. Caller holds cm.mu.
func (cm *ConversationManager) saveLocked(threadID string, c *domain.Conversation) error {
	if err := os.MkdirAll(cm.dataDir, 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal thread: %w", err)
	}
	return os.WriteFile(filepath.Join(cm.dataDir, threadID+".json"), data, 0600)
}

func copyConversation(c *domain.Conversation) *domain.Conversation {
	cp := *c
	cp.Messages = make([]domain.Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

var _ domain.ConversationStore = (*ConversationManager)(nil)
