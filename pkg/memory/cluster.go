package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mnemo/mnemo/pkg/textsim"
)

// Completer produces a natural-language completion. Used for cluster
// narrative synthesis; implementations fail soft.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Similarity boosts and absorption windows for cluster growth.
const (
	defaultClusterThreshold = 0.25

	sharedTagBoost      = 0.2
	sharedCategoryBoost = 0.15
	temporalBoost       = 0.1
	temporalBoostWindow = 7 * 24 * time.Hour
	absorbWindow        = 3 * 24 * time.Hour

	maxClusterKeyTerms = 5
)

const clusterSynthesisSystemPrompt = "You summarize groups of engineering session notes. " +
	"Write a short cohesive paragraph capturing what the group of notes is about. " +
	"Do not invent facts that are not in the notes."

// Synthesizer groups a memory set into thematically coherent clusters for
// exploratory summarization. Independent of the ranking pipeline; output
// is derived fresh on every call and never cached.
type Synthesizer struct {
	threshold float64
	completer Completer
	logger    ingestLogger
}

// NewSynthesizer creates a cluster synthesizer. threshold tunes seed
// absorption (sensible range 0.2-0.3; zero selects the default).
// completer may be nil, which disables AI narrative synthesis.
func NewSynthesizer(threshold float64, completer Completer, logger ingestLogger) *Synthesizer {
	if threshold <= 0 {
		threshold = defaultClusterThreshold
	}
	if logger == nil {
		logger = nopIngestLogger{}
	}
	return &Synthesizer{threshold: threshold, completer: completer, logger: logger}
}

// Clusters groups the given memories and scores each cluster's relevance
// to the originating query. Clusters are returned sorted by descending
// relevance.
func (s *Synthesizer) Clusters(ctx context.Context, memories []*Memory, query string) []*Cluster {
	if len(memories) == 0 {
		return nil
	}

	sim := s.similarityMatrix(memories)
	groups := s.growClusters(memories, sim)

	analysis := Analyze(query)
	clusters := make([]*Cluster, 0, len(groups))
	for _, members := range groups {
		c := s.buildCluster(ctx, members, analysis)
		clusters = append(clusters, c)
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].RelevanceScore > clusters[j].RelevanceScore
	})
	return clusters
}

// similarityMatrix computes pairwise TF-IDF cosine similarity boosted by
// shared tags, shared category, and temporal proximity.
func (s *Synthesizer) similarityMatrix(memories []*Memory) [][]float64 {
	docs := make([]string, len(memories))
	for i, m := range memories {
		docs[i] = m.Content
	}
	vectors := textsim.TFIDF(docs)

	sim := make([][]float64, len(memories))
	for i := range sim {
		sim[i] = make([]float64, len(memories))
	}
	for i := 0; i < len(memories); i++ {
		sim[i][i] = 1
		for j := i + 1; j < len(memories); j++ {
			v := textsim.CosineSimilarity(vectors[i], vectors[j])
			if sharesTag(memories[i], memories[j]) {
				v += sharedTagBoost
			}
			if sharesCategory(memories[i], memories[j]) {
				v += sharedCategoryBoost
			}
			if withinWindow(memories[i], memories[j], temporalBoostWindow) {
				v += temporalBoost
			}
			if v > 1 {
				v = 1
			}
			sim[i][j] = v
			sim[j][i] = v
		}
	}
	return sim
}

// growClusters greedily grows clusters from unvisited seeds: any
// unvisited memory is absorbed when its similarity to the seed exceeds
// the threshold, or it shares a tag or category with the seed, or it
// falls within three days of the seed.
func (s *Synthesizer) growClusters(memories []*Memory, sim [][]float64) [][]*Memory {
	visited := make([]bool, len(memories))
	var groups [][]*Memory

	for i := range memories {
		if visited[i] {
			continue
		}
		visited[i] = true
		group := []*Memory{memories[i]}

		for j := range memories {
			if visited[j] {
				continue
			}
			if sim[i][j] > s.threshold ||
				sharesTag(memories[i], memories[j]) ||
				sharesCategory(memories[i], memories[j]) ||
				withinWindow(memories[i], memories[j], absorbWindow) {
				visited[j] = true
				group = append(group, memories[j])
			}
		}
		groups = append(groups, group)
	}
	return groups
}

func (s *Synthesizer) buildCluster(ctx context.Context, members []*Memory, analysis *QueryAnalysis) *Cluster {
	category := dominantCategory(members)
	keyTerms := clusterKeyTerms(members)

	c := &Cluster{
		Theme:          clusterTheme(category, keyTerms),
		Memories:       members,
		KeyTerms:       keyTerms,
		Category:       category,
		RelevanceScore: s.clusterRelevance(members, analysis),
	}
	c.SynthesizedContent = s.synthesize(ctx, members)
	return c
}

// clusterRelevance scores the cluster's combined content against the
// query using the keyword signal, squashed into [0,1].
func (s *Synthesizer) clusterRelevance(members []*Memory, analysis *QueryAnalysis) float64 {
	var combined strings.Builder
	for _, m := range members {
		combined.WriteString(m.Content)
		combined.WriteString("\n")
	}
	raw := keywordScore(combined.String(), analysis)
	return math.Min(1, raw/100)
}

// synthesize produces the human-readable cluster summary: an AI narrative
// when a completion backend is available, otherwise an extractive summary
// grouped by category.
func (s *Synthesizer) synthesize(ctx context.Context, members []*Memory) string {
	extractive := extractiveSummary(members)
	if s.completer == nil {
		return extractive
	}

	var notes strings.Builder
	for i, m := range members {
		fmt.Fprintf(&notes, "Note %d: %s\n", i+1, m.Content)
	}
	narrative, err := s.completer.Complete(ctx, clusterSynthesisSystemPrompt, notes.String())
	if err != nil || strings.TrimSpace(narrative) == "" {
		s.logger.Warn("cluster narrative synthesis unavailable, using extractive summary", "error", err)
		return extractive
	}
	return strings.TrimSpace(narrative)
}

// extractiveSummary groups member content by category and keeps one
// representative sentence per member.
func extractiveSummary(members []*Memory) string {
	byCategory := make(map[Category][]string)
	var order []Category
	for _, m := range members {
		cat := CategoryDiscovery
		if m.Metadata != nil {
			cat = m.Metadata.Category
		}
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], firstSentence(m.Content))
	}

	var b strings.Builder
	for _, cat := range order {
		fmt.Fprintf(&b, "%s: %s\n", titleCase(strings.ReplaceAll(string(cat), "_", " ")),
			strings.Join(byCategory[cat], " "))
	}
	return strings.TrimSpace(b.String())
}

func firstSentence(content string) string {
	content = strings.TrimSpace(content)
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if idx := strings.Index(content, sep); idx > 0 {
			return content[:idx+1]
		}
	}
	return content
}

// clusterKeyTerms counts term occurrences across the cluster and keeps
// the most frequent terms.
func clusterKeyTerms(members []*Memory) []string {
	docs := make([]string, len(members))
	for i, m := range members {
		docs[i] = m.Content
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		for _, tok := range textsim.Tokenize(doc) {
			if len(tok) > 3 {
				counts[tok]++
			}
		}
	}
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxClusterKeyTerms {
		terms = terms[:maxClusterKeyTerms]
	}
	return terms
}

func clusterTheme(category Category, keyTerms []string) string {
	name := titleCase(strings.ReplaceAll(string(category), "_", " "))
	if len(keyTerms) == 0 {
		return name
	}
	n := len(keyTerms)
	if n > 2 {
		n = 2
	}
	return name + ": " + strings.Join(keyTerms[:n], ", ")
}

func dominantCategory(members []*Memory) Category {
	counts := make(map[Category]int)
	for _, m := range members {
		if m.Metadata != nil {
			counts[m.Metadata.Category]++
		}
	}
	best := CategoryDiscovery
	bestCount := 0
	for _, ci := range categoryIndicators {
		if counts[ci.Category] > bestCount {
			best = ci.Category
			bestCount = counts[ci.Category]
		}
	}
	return best
}

func sharesTag(a, b *Memory) bool {
	if a.Metadata == nil || b.Metadata == nil {
		return false
	}
	for _, ta := range a.Metadata.Topics {
		for _, tb := range b.Metadata.Topics {
			if strings.EqualFold(ta, tb) {
				return true
			}
		}
	}
	return false
}

func sharesCategory(a, b *Memory) bool {
	if a.Metadata == nil || b.Metadata == nil {
		return false
	}
	return a.Metadata.Category == b.Metadata.Category
}

func withinWindow(a, b *Memory, window time.Duration) bool {
	d := a.Created.Sub(b.Created)
	if d < 0 {
		d = -d
	}
	return d <= window
}
