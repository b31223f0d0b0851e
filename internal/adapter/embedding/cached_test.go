package embedding

import (
	"context"
	"testing"

	"oura-ai/internal/domain"
)

// countingEmbedder records how many times the inner provider is hit.
type countingEmbedder struct {
	calls int
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1.0}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) Name() string    { return "counting" }

func TestCachedEmbedderHitSkipsInner(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 10)

	first, err := cached.Embed(context.Background(), []string{"how did I sleep"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := cached.Embed(context.Background(), []string{"how did I sleep"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(second) != 1 || second[0][0] != first[0][0] {
		t.Errorf("cached result differs from original")
	}
}

func TestCachedEmbedderDistinctTextsMiss(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 10)

	cached.Embed(context.Background(), []string{"sleep"})
	cached.Embed(context.Background(), []string{"steps"})

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedEmbedderBatchPassesThrough(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 10).(*CachedEmbedder)

	batch := []string{"a", "b"}
	cached.Embed(context.Background(), batch)
	cached.Embed(context.Background(), batch)

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (batches are not cached)", inner.calls)
	}
	if cached.Len() != 0 {
		t.Errorf("cache len = %d, want 0", cached.Len())
	}
}

func TestCachedEmbedderEvictsOldest(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, 2).(*CachedEmbedder)

	cached.Embed(context.Background(), []string{"one"})
	cached.Embed(context.Background(), []string{"two"})
	cached.Embed(context.Background(), []string{"three"}) // evicts "one"

	if cached.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", cached.Len())
	}

	inner.calls = 0
	cached.Embed(context.Background(), []string{"one"})
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (oldest entry should have been evicted)", inner.calls)
	}
}

func TestCachedEmbedderZeroSizeDisablesCache(t *testing.T) {
	inner := &countingEmbedder{}
	got := NewCachedEmbedder(inner, 0)

	if _, ok := got.(*CachedEmbedder); ok {
		t.Fatal("maxSize 0 should return the inner provider unwrapped")
	}
	var _ domain.EmbeddingProvider = got
}
