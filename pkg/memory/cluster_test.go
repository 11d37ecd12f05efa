package memory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func clusterFixture(now time.Time) []*Memory {
	return []*Memory{
		{
			ID:        "auth1",
			Content:   "implemented token refresh for the authentication middleware",
			Created:   now.Add(-1 * time.Hour),
			SessionID: "s1",
			Metadata:  &Metadata{Category: CategoryImplementation, Topics: []string{"authentication"}},
		},
		{
			ID:        "auth2",
			Content:   "extended the authentication middleware with session expiry handling",
			Created:   now.Add(-2 * time.Hour),
			SessionID: "s1",
			Metadata:  &Metadata{Category: CategoryImplementation, Topics: []string{"authentication"}},
		},
		{
			ID:        "billing",
			Content:   "rewrote billing invoice generation to batch currency conversions",
			Created:   now.Add(-20 * 24 * time.Hour),
			SessionID: "s9",
			Metadata:  &Metadata{Category: CategoryDecision, Topics: []string{"billing"}},
		},
	}
}

func TestClusters_GroupsByTheme(t *testing.T) {
	s := NewSynthesizer(0, nil, nil)
	clusters := s.Clusters(context.Background(), clusterFixture(time.Now()), "authentication")

	if len(clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(clusters))
	}

	// The auth cluster is more relevant to the query and sorts first.
	first := clusters[0]
	if len(first.Memories) != 2 {
		t.Fatalf("first cluster size = %d, want 2", len(first.Memories))
	}
	for _, m := range first.Memories {
		if !strings.Contains(m.Content, "authentication") {
			t.Errorf("unexpected member %s", m.ID)
		}
	}
	if first.RelevanceScore < clusters[1].RelevanceScore {
		t.Error("clusters not sorted by relevance")
	}
	if first.Category != CategoryImplementation {
		t.Errorf("category = %v, want implementation", first.Category)
	}
	if first.Theme == "" || len(first.KeyTerms) == 0 {
		t.Error("expected theme and key terms")
	}
}

func TestClusters_Empty(t *testing.T) {
	s := NewSynthesizer(0, nil, nil)
	if got := s.Clusters(context.Background(), nil, "anything"); got != nil {
		t.Errorf("clusters = %v, want nil", got)
	}
}

func TestClusters_ExtractiveSummaryWithoutCompleter(t *testing.T) {
	s := NewSynthesizer(0, nil, nil)
	clusters := s.Clusters(context.Background(), clusterFixture(time.Now()), "authentication")

	if clusters[0].SynthesizedContent == "" {
		t.Fatal("expected extractive summary")
	}
	if !strings.Contains(clusters[0].SynthesizedContent, "Implementation:") {
		t.Errorf("summary missing category heading: %q", clusters[0].SynthesizedContent)
	}
}

func TestClusters_CompleterNarrative(t *testing.T) {
	completer := &fakeCompleter{reply: "The team hardened authentication session handling."}
	s := NewSynthesizer(0, completer, nil)

	clusters := s.Clusters(context.Background(), clusterFixture(time.Now()), "authentication")
	if completer.calls == 0 {
		t.Fatal("completer was never invoked")
	}
	if clusters[0].SynthesizedContent != completer.reply {
		t.Errorf("synthesized = %q, want completer narrative", clusters[0].SynthesizedContent)
	}
}

func TestClusters_CompleterFailureFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("model unavailable")}
	s := NewSynthesizer(0, completer, nil)

	clusters := s.Clusters(context.Background(), clusterFixture(time.Now()), "authentication")
	if clusters[0].SynthesizedContent == "" {
		t.Error("expected extractive fallback when synthesis fails")
	}
}

func TestFirstSentence(t *testing.T) {
	if got := firstSentence("Fixed the bug. Then wrote tests."); got != "Fixed the bug." {
		t.Errorf("firstSentence = %q", got)
	}
	if got := firstSentence("single fragment"); got != "single fragment" {
		t.Errorf("firstSentence = %q", got)
	}
}

func TestDominantCategory(t *testing.T) {
	members := []*Memory{
		{Metadata: &Metadata{Category: CategoryDecision}},
		{Metadata: &Metadata{Category: CategoryDecision}},
		{Metadata: &Metadata{Category: CategoryLearning}},
	}
	if got := dominantCategory(members); got != CategoryDecision {
		t.Errorf("dominant = %v, want decision", got)
	}
	// No metadata at all falls back to discovery.
	if got := dominantCategory([]*Memory{{}, {}}); got != CategoryDiscovery {
		t.Errorf("dominant = %v, want discovery", got)
	}
}
