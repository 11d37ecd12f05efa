package memory

import (
	"testing"
	"time"
)

func TestAdjustedWeights(t *testing.T) {
	base := DefaultWeights()

	// Specific focus shifts weight from semantic to keyword.
	a := &QueryAnalysis{Focus: FocusSpecific, Temporal: TemporalAny}
	w := AdjustedWeights(base, a)
	if w.Keyword <= base.Keyword {
		t.Errorf("specific focus should raise keyword weight: %v", w.Keyword)
	}
	if w.Semantic >= base.Semantic {
		t.Errorf("specific focus should lower semantic weight: %v", w.Semantic)
	}

	// Temporal queries boost the temporal signal.
	a = &QueryAnalysis{Focus: FocusBroad, Temporal: TemporalRecent}
	w = AdjustedWeights(base, a)
	if !approxEqual(w.Temporal, base.Temporal+0.15) {
		t.Errorf("temporal weight = %v, want %v", w.Temporal, base.Temporal+0.15)
	}

	// Adjustments are weight shifts, so the sum stays at 1.
	a = &QueryAnalysis{Focus: FocusContextual, Temporal: TemporalRecent, DomainHints: []string{"security"}}
	w = AdjustedWeights(base, a)
	sum := w.Semantic + w.Keyword + w.Context + w.Temporal + w.Metadata
	if !approxEqual(sum, 1.0) {
		t.Errorf("adjusted weights sum = %v, want 1.0", sum)
	}
}

func TestKeywordScore(t *testing.T) {
	a := Analyze("database migration")

	// Exact phrase plus both terms near the start.
	strong := keywordScore("database migration finished for the orders table", a)
	// Only one term, later in the content.
	weak := keywordScore("the report mentions a migration of office furniture", a)
	if strong <= weak {
		t.Errorf("strong = %v should beat weak = %v", strong, weak)
	}

	if got := keywordScore("nothing relevant here", a); got != 0 {
		t.Errorf("unrelated content score = %v, want 0", got)
	}

	empty := Analyze("the and for")
	if got := keywordScore("anything", empty); got != 0 {
		t.Errorf("no terms score = %v, want 0", got)
	}
}

func TestTemporalScore(t *testing.T) {
	now := time.Now()
	fresh := &Memory{Created: now.Add(-1 * time.Hour)}
	old := &Memory{Created: now.Add(-30 * 24 * time.Hour)}

	recent := &QueryAnalysis{Temporal: TemporalRecent}
	if temporalScore(fresh, recent, now) <= temporalScore(old, recent, now) {
		t.Error("recent queries should favor fresh memories")
	}

	historical := &QueryAnalysis{Temporal: TemporalHistorical}
	if temporalScore(old, historical, now) <= temporalScore(fresh, historical, now) {
		t.Error("historical queries should favor old memories")
	}

	neutral := &QueryAnalysis{Temporal: TemporalAny}
	if temporalScore(fresh, neutral, now) <= temporalScore(old, neutral, now) {
		t.Error("neutral queries should still decay gently")
	}
}

func TestMetadataScore(t *testing.T) {
	a := Analyze("jwt authentication fix")

	mem := &Memory{
		Content: "irrelevant",
		Metadata: &Metadata{
			Topics:     []string{"authentication"},
			Entities:   []string{"JWT"},
			KeyActions: []string{"fixed"},
		},
	}
	if got := metadataScore(mem, a); got <= 0 {
		t.Errorf("metadata overlap score = %v, want > 0", got)
	}

	// Absent metadata contributes zero.
	if got := metadataScore(&Memory{Content: "anything"}, a); got != 0 {
		t.Errorf("nil metadata score = %v, want 0", got)
	}
}

func TestDynamicThreshold(t *testing.T) {
	if got := dynamicThreshold(FocusBroad, nil); got != thresholdBroad {
		t.Errorf("broad threshold = %v, want %v", got, thresholdBroad)
	}
	if got := dynamicThreshold(FocusSpecific, nil); got != thresholdSpecific {
		t.Errorf("specific threshold = %v, want %v", got, thresholdSpecific)
	}

	// One dominant score raises the floor to 30% of the average.
	scores := []float64{200, 10, 10, 10}
	got := dynamicThreshold(FocusBroad, scores)
	want := 0.3 * (230.0 / 4.0)
	if !approxEqual(got, want) {
		t.Errorf("variance threshold = %v, want %v", got, want)
	}
}

func TestRank(t *testing.T) {
	now := time.Now()
	memories := []*Memory{
		{
			ID:        "m1",
			Content:   "decided to use JWT tokens for authentication after comparing session cookies",
			Created:   now.Add(-1 * time.Hour),
			SessionID: "s1",
			Metadata:  &Metadata{Category: CategoryDecision, Domain: "security"},
		},
		{
			ID:        "m2",
			Content:   "refactored the chart rendering component in the dashboard",
			Created:   now.Add(-2 * time.Hour),
			SessionID: "s1",
			Metadata:  &Metadata{Category: CategoryImplementation},
		},
		{
			ID:        "m3",
			Content:   "lunch menu planning for the offsite",
			Created:   now.Add(-3 * time.Hour),
			SessionID: "s2",
		},
	}

	scorer := NewScorer(DefaultWeights())
	results := scorer.Rank(memories, Analyze("authentication decision"), nil, 10)

	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Memory.ID != "m1" {
		t.Errorf("top result = %s, want m1", results[0].Memory.ID)
	}
	if results[0].RelevanceScore != 1.0 {
		t.Errorf("top score = %v, want 1.0", results[0].RelevanceScore)
	}
	for i := 1; i < len(results); i++ {
		if results[i].RelevanceScore > results[i-1].RelevanceScore {
			t.Error("results not sorted by score")
		}
	}
}

func TestRank_LimitApplied(t *testing.T) {
	now := time.Now()
	var memories []*Memory
	for i := 0; i < 8; i++ {
		memories = append(memories, &Memory{
			ID:        string(rune('a' + i)),
			Content:   "database migration batch notes",
			Created:   now.Add(-time.Duration(i) * 21 * time.Hour),
			SessionID: string(rune('a' + i)),
		})
	}

	scorer := NewScorer(DefaultWeights())
	results := scorer.Rank(memories, Analyze("database migration"), nil, 3)
	if len(results) > 3 {
		t.Errorf("len = %d, want <= 3", len(results))
	}
}

func TestRank_GracefulDegradation(t *testing.T) {
	now := time.Now()
	memories := []*Memory{
		{ID: "m1", Content: "completely unrelated grocery list", Created: now.Add(-2000 * time.Hour), SessionID: "s1"},
		{ID: "m2", Content: "another unrelated note about gardening", Created: now.Add(-2100 * time.Hour), SessionID: "s2"},
	}

	scorer := NewScorer(DefaultWeights())
	results := scorer.Rank(memories, Analyze("kubernetes ingress controller"), nil, 10)
	if len(results) == 0 {
		t.Fatal("degraded ranking should never return empty for a non-empty collection")
	}
	for _, r := range results {
		if r.RelevanceScore < 0.1 {
			t.Errorf("degraded score = %v, want >= 0.1", r.RelevanceScore)
		}
	}
}

func TestDedupe_SameSession(t *testing.T) {
	now := time.Now()
	a := &Memory{ID: "m1", Content: "fixed the payment gateway timeout retry logic today", Created: now, SessionID: "s1"}
	b := &Memory{ID: "m2", Content: "fixed the payment gateway timeout retry logic yesterday", Created: now, SessionID: "s1"}

	analysis := Analyze("payment gateway timeout")
	candidates := []scored{
		{memory: a, score: 80},
		{memory: b, score: 70},
	}
	kept := dedupe(candidates, analysis)
	if len(kept) != 1 {
		t.Fatalf("kept = %d, want 1", len(kept))
	}
	if kept[0].memory.ID != "m1" {
		t.Errorf("kept %s, want the higher-scoring m1", kept[0].memory.ID)
	}
}

func TestDedupe_DistinctKept(t *testing.T) {
	now := time.Now()
	a := &Memory{ID: "m1", Content: "fixed the payment gateway timeout", Created: now, SessionID: "s1"}
	b := &Memory{ID: "m2", Content: "wrote documentation for the deploy pipeline", Created: now, SessionID: "s1"}

	analysis := Analyze("payment gateway")
	kept := dedupe([]scored{{memory: a, score: 80}, {memory: b, score: 20}}, analysis)
	if len(kept) != 2 {
		t.Errorf("kept = %d, want 2", len(kept))
	}
}

func TestSemanticScore(t *testing.T) {
	mem := &Memory{Embedding: []float32{1, 0, 0}}

	if got := semanticScore(mem, []float32{1, 0, 0}); !approxEqual(got, 100) {
		t.Errorf("identical vectors = %v, want 100", got)
	}
	if got := semanticScore(mem, nil); got != 0 {
		t.Errorf("missing query embedding = %v, want 0", got)
	}
	if got := semanticScore(&Memory{}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("missing memory embedding = %v, want 0", got)
	}
}
