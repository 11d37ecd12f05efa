package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type capturedEvent struct {
	Type    string
	Payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (f *fakePublisher) Publish(eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, capturedEvent{Type: eventType, Payload: payload})
}

func (f *fakePublisher) byType(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fakeRecorder struct {
	mu       sync.Mutex
	writes   map[string]int
	rejected int
	evicted  int
	searches int
	count    int
	clusters int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{writes: make(map[string]int)}
}

func (f *fakeRecorder) RecordMemoryWrite(outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[outcome]++
}

func (f *fakeRecorder) RecordMemoryRejected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected++
}

func (f *fakeRecorder) RecordEviction(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evicted += count
}

func (f *fakeRecorder) RecordSearch(d time.Duration, results int, usedEmbeddings bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
}

func (f *fakeRecorder) RecordClusterRun(clusters int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clusters++
}

func (f *fakeRecorder) SetMemoryCount(count int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count = count
}

func newTestEngine(t *testing.T, opts *Options) (*Engine, *FileStore) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "memories.json"), nil)
	return NewEngine(nil, store, nil, nil, opts), store
}

func TestEngine_SaveMemory(t *testing.T) {
	events := &fakePublisher{}
	recorder := newFakeRecorder()
	engine, store := newTestEngine(t, &Options{Events: events, Metrics: recorder})
	ctx := context.Background()

	mem, outcome, err := engine.SaveMemory(ctx, "decided to adopt feature flags for the rollout")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("outcome = %v, want created", outcome)
	}
	if mem.ID == "" {
		t.Error("expected assigned ID")
	}

	// Persisted through the store.
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("persisted %d, want 1", len(loaded))
	}

	if got := events.byType("memory.created"); got != 1 {
		t.Errorf("memory.created events = %d, want 1", got)
	}
	if recorder.writes["created"] != 1 {
		t.Errorf("recorded writes = %v", recorder.writes)
	}
	if recorder.count != 1 {
		t.Errorf("recorded count = %d, want 1", recorder.count)
	}
}

func TestEngine_SaveMemory_Rejected(t *testing.T) {
	recorder := newFakeRecorder()
	engine, _ := newTestEngine(t, &Options{Metrics: recorder})

	_, _, err := engine.SaveMemory(context.Background(), "  ")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("err = %v, want ErrEmptyContent", err)
	}
	if recorder.rejected != 1 {
		t.Errorf("rejected = %d, want 1", recorder.rejected)
	}
}

func TestEngine_Search_Ranking(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	contents := []string{
		"decided to use JWT tokens for authentication after comparing options",
		"rewrote the chart rendering for the analytics dashboard",
		"planned the quarterly roadmap review meeting agenda",
	}
	for _, c := range contents {
		if _, _, err := engine.SaveMemory(ctx, c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	results, err := engine.Search(ctx, "authentication decision", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if !strings.Contains(results[0].Memory.Content, "JWT") {
		t.Errorf("top result = %q", results[0].Memory.Content)
	}
	if results[0].RelevanceScore != 1.0 {
		t.Errorf("top score = %v, want 1.0", results[0].RelevanceScore)
	}
}

func TestEngine_Search_Repeatable(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	contents := []string{
		"decided to use JWT tokens for authentication after comparing options",
		"fixed the session cookie expiry bug in the login handler",
		"rewrote the chart rendering for the analytics dashboard",
	}
	for _, c := range contents {
		if _, _, err := engine.SaveMemory(ctx, c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	// Same query against unchanged storage returns the same ordered results.
	first, err := engine.Search(ctx, "authentication login", 10)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := engine.Search(ctx, "authentication login", 10)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}

	if len(first) == 0 {
		t.Fatal("expected results")
	}
	if len(second) != len(first) {
		t.Fatalf("result counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if second[i].Memory.ID != first[i].Memory.ID {
			t.Errorf("result %d: id %s vs %s", i, first[i].Memory.ID, second[i].Memory.ID)
		}
		if second[i].RelevanceScore != first[i].RelevanceScore {
			t.Errorf("result %d: score %v vs %v", i, first[i].RelevanceScore, second[i].RelevanceScore)
		}
	}
}

func TestEngine_Search_EmptyQuery(t *testing.T) {
	events := &fakePublisher{}
	engine, _ := newTestEngine(t, &Options{Events: events})
	ctx := context.Background()

	if _, _, err := engine.SaveMemory(ctx, "wired the payment webhook retries"); err != nil {
		t.Fatalf("save: %v", err)
	}

	results, err := engine.Search(ctx, "   ", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].RelevanceScore != 1.0 {
		t.Errorf("score = %v, want 1.0", results[0].RelevanceScore)
	}
	if len(results[0].MatchedTerms) != 0 {
		t.Errorf("matched terms = %v, want none", results[0].MatchedTerms)
	}
	if got := events.byType("search.completed"); got != 1 {
		t.Errorf("search.completed events = %d, want 1", got)
	}
}

func TestEngine_Search_EmptyCollection(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	results, err := engine.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
}

func TestEngine_CapacityBounds(t *testing.T) {
	recorder := newFakeRecorder()
	engine, store := newTestEngine(t, &Options{Metrics: recorder})
	ctx := context.Background()

	// Distinct token sets so no write consolidates into another.
	for i := 0; i < 45; i++ {
		content := fmt.Sprintf("entry%d alpha%d bravo%d charlie%d delta%d", i, i, i, i, i)
		if _, _, err := engine.SaveMemory(ctx, content); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	size := engine.WorkingSetSize()
	if size > WorkingCapHigh {
		t.Errorf("working set = %d, want <= %d", size, WorkingCapHigh)
	}
	if size < WorkingCapLow {
		t.Errorf("working set = %d, want >= %d", size, WorkingCapLow)
	}
	if recorder.evicted == 0 {
		t.Error("expected evictions to be recorded")
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) > PersistedCap {
		t.Errorf("persisted %d, want <= %d", len(loaded), PersistedCap)
	}
}

func TestEngine_ListRecent(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := engine.SaveMemory(ctx, fmt.Sprintf("note%d uniqueword%d", i, i)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	recent, err := engine.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent = %d, want 2", len(recent))
	}
}

func TestEngine_Stats(t *testing.T) {
	engine, _ := newTestEngine(t, nil)
	ctx := context.Background()

	if _, _, err := engine.SaveMemory(ctx, "fixed the flaky integration test ordering"); err != nil {
		t.Fatalf("save: %v", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Errorf("total = %d, want 1", stats.TotalEntries)
	}
	if stats.Sessions != 1 {
		t.Errorf("sessions = %d, want 1", stats.Sessions)
	}
	if stats.EmbeddingCoverage != 0 {
		t.Errorf("coverage = %v, want 0 without embedder", stats.EmbeddingCoverage)
	}
	if stats.NewestCreated == nil || stats.OldestCreated == nil {
		t.Error("expected timestamp bounds")
	}
}

func TestEngine_ReloadsFromStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")
	store := NewFileStore(path, nil)
	ctx := context.Background()

	first := NewEngine(nil, store, nil, nil, nil)
	if _, _, err := first.SaveMemory(ctx, "documented the release checklist steps"); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewEngine(nil, NewFileStore(path, nil), nil, nil, nil)
	stats, err := second.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 1 {
		t.Errorf("reloaded total = %d, want 1", stats.TotalEntries)
	}
}

func TestEngine_Clusters(t *testing.T) {
	recorder := newFakeRecorder()
	engine, _ := newTestEngine(t, &Options{Metrics: recorder})
	ctx := context.Background()

	for _, c := range []string{
		"refactored the authentication token middleware validation",
		"extended authentication token refresh for expired sessions",
	} {
		if _, _, err := engine.SaveMemory(ctx, c); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	clusters, err := engine.Clusters(ctx, nil, "authentication")
	if err != nil {
		t.Fatalf("clusters: %v", err)
	}
	if len(clusters) == 0 {
		t.Fatal("expected clusters")
	}
	if recorder.clusters != 1 {
		t.Errorf("cluster runs = %d, want 1", recorder.clusters)
	}
}
