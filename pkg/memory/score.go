package memory

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mnemo/mnemo/pkg/textsim"
)

// Weights is the signal weight vector used to combine the five relevance
// scores. Kept as configuration data so weighting policy is swappable and
// testable independent of the scoring primitives.
type Weights struct {
	Semantic float64 `mapstructure:"semantic" json:"semantic"`
	Keyword  float64 `mapstructure:"keyword" json:"keyword"`
	Context  float64 `mapstructure:"context" json:"context"`
	Temporal float64 `mapstructure:"temporal" json:"temporal"`
	Metadata float64 `mapstructure:"metadata" json:"metadata"`
}

// DefaultWeights is the base weight vector before query-shape adjustments.
func DefaultWeights() Weights {
	return Weights{
		Semantic: 0.35,
		Keyword:  0.30,
		Context:  0.15,
		Temporal: 0.10,
		Metadata: 0.10,
	}
}

// weightAdjustment shifts weight between signals for one query trait.
type weightAdjustment struct {
	Semantic, Keyword, Context, Temporal, Metadata float64
}

// Adjustment tables, keyed by the query traits that trigger them.
var (
	adjustFocusSpecific   = weightAdjustment{Semantic: -0.10, Keyword: 0.10, Context: -0.05, Metadata: 0.05}
	adjustFocusContextual = weightAdjustment{Semantic: 0.10, Keyword: -0.15, Context: 0.10, Temporal: -0.05}
	adjustTemporal        = weightAdjustment{Semantic: -0.075, Keyword: -0.075, Temporal: 0.15}
	adjustDomainHints     = weightAdjustment{Semantic: -0.05, Keyword: -0.05, Context: 0.05, Metadata: 0.05}
)

func (w Weights) apply(adj weightAdjustment) Weights {
	return Weights{
		Semantic: w.Semantic + adj.Semantic,
		Keyword:  w.Keyword + adj.Keyword,
		Context:  w.Context + adj.Context,
		Temporal: w.Temporal + adj.Temporal,
		Metadata: w.Metadata + adj.Metadata,
	}
}

// AdjustedWeights derives the effective weight vector for a query.
func AdjustedWeights(base Weights, a *QueryAnalysis) Weights {
	w := base
	switch a.Focus {
	case FocusSpecific:
		w = w.apply(adjustFocusSpecific)
	case FocusContextual:
		w = w.apply(adjustFocusContextual)
	}
	if a.Temporal != TemporalAny {
		w = w.apply(adjustTemporal)
	}
	if len(a.DomainHints) > 0 {
		w = w.apply(adjustDomainHints)
	}
	return w
}

// Keyword scoring bonuses.
const (
	exactPhraseBonus   = 50.0
	allTermsBonus      = 20.0
	firstOccurrence    = 10.0
	secondOccurrence   = 5.0
	furtherOccurrence  = 2.5
	earlyPositionBonus = 5.0
	earlyPositionSpan  = 80
	substringBonus     = 3.0
	fuzzyBonus         = 2.0
)

// signalScores holds the five independent relevance signals for one
// memory, before weighting.
type signalScores struct {
	Semantic float64
	Keyword  float64
	Context  float64
	Temporal float64
	Metadata float64
}

func (s signalScores) combine(w Weights) float64 {
	return s.Semantic*w.Semantic +
		s.Keyword*w.Keyword +
		s.Context*w.Context +
		s.Temporal*w.Temporal +
		s.Metadata*w.Metadata
}

// Scorer computes hybrid relevance scores for candidate memories.
type Scorer struct {
	base Weights
	now  func() time.Time
}

// NewScorer creates a scorer with the given base weight vector.
func NewScorer(base Weights) *Scorer {
	return &Scorer{base: base, now: time.Now}
}

// scored pairs a memory with its computed signals.
type scored struct {
	memory  *Memory
	signals signalScores
	score   float64
	matched []string
}

// Score computes the raw (unbounded) relevance score for one memory.
func (s *Scorer) Score(mem *Memory, a *QueryAnalysis, queryEmbedding []float32) (float64, signalScores, []string) {
	sig := signalScores{
		Semantic: semanticScore(mem, queryEmbedding),
		Keyword:  keywordScore(mem.Content, a),
		Context:  contextScore(mem, a),
		Temporal: temporalScore(mem, a, s.now()),
		Metadata: metadataScore(mem, a),
	}
	w := AdjustedWeights(s.base, a)
	return sig.combine(w), sig, matchedTerms(mem.Content, a)
}

// semanticScore is the cosine similarity between query and memory
// embeddings scaled by 100. Zero when either embedding is absent.
func semanticScore(mem *Memory, queryEmbedding []float32) float64 {
	if len(queryEmbedding) == 0 || !mem.HasEmbedding() {
		return 0
	}
	return textsim.CosineSimilarity32(queryEmbedding, mem.Embedding) * 100
}

// keywordScore combines exact-phrase, all-terms, per-term occurrence,
// position, and partial/fuzzy bonuses.
func keywordScore(content string, a *QueryAnalysis) float64 {
	if len(a.Terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	score := 0.0

	if phrase := strings.ToLower(strings.TrimSpace(a.Query)); phrase != "" && strings.Contains(lower, phrase) {
		score += exactPhraseBonus
	}

	allPresent := true
	for _, term := range a.Terms {
		count := strings.Count(lower, term)
		if count == 0 {
			allPresent = false
		}
		// Diminishing per-occurrence bonus.
		if count >= 1 {
			score += firstOccurrence
		}
		if count >= 2 {
			score += secondOccurrence
		}
		if count >= 3 {
			score += furtherOccurrence
		}
		if idx := strings.Index(lower, term); idx >= 0 && idx < earlyPositionSpan {
			score += earlyPositionBonus
		}
	}
	if allPresent {
		score += allTermsBonus
	}

	// Partial and fuzzy matches against expansion terms.
	contentTokens := textsim.Tokenize(lower)
	for _, term := range a.ExpandedTerms {
		if strings.Contains(lower, term) {
			score += substringBonus
			continue
		}
		for _, tok := range contentTokens {
			if textsim.FuzzyMatch(term, tok) {
				score += fuzzyBonus
				break
			}
		}
	}
	return score
}

// intentCategoryAffinity maps query intent to the memory categories it
// most plausibly targets.
var intentCategoryAffinity = map[Intent][]Category{
	IntentFactual:    {CategoryDecision, CategoryDiscovery},
	IntentProcedural: {CategoryImplementation, CategoryPlanning},
	IntentTemporal:   {CategoryPlanning, CategoryReflection},
	IntentConceptual: {CategoryLearning, CategoryDiscovery},
	IntentDiagnostic: {CategoryProblemSolving},
}

// contextScore measures intent alignment, domain-hint presence, and
// category affinity. Metadata absence contributes zero.
func contextScore(mem *Memory, a *QueryAnalysis) float64 {
	lower := strings.ToLower(mem.Content)
	score := 0.0

	for _, ii := range intentIndicators {
		if ii.Intent != a.Intent {
			continue
		}
		for _, ind := range ii.Indicators {
			if strings.Contains(lower, ind) {
				score += 5
			}
		}
		break
	}

	for _, hint := range a.DomainHints {
		if strings.Contains(lower, hint) {
			score += 10
		} else if mem.Metadata != nil && mem.Metadata.Domain == hint {
			score += 10
		}
	}

	if mem.Metadata != nil {
		for _, cat := range intentCategoryAffinity[a.Intent] {
			if mem.Metadata.Category == cat {
				score += 8
				break
			}
		}
	}
	return score
}

// temporalScore rewards recency with a decay curve shaped by the query's
// temporal context: steep for "recent", inverted for "historical", and a
// gentle decay otherwise.
func temporalScore(mem *Memory, a *QueryAnalysis, now time.Time) float64 {
	ageHours := now.Sub(mem.Created).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	switch a.Temporal {
	case TemporalRecent:
		return 100 * math.Exp(-ageHours/24)
	case TemporalHistorical:
		return 100 * (1 - math.Exp(-ageHours/168))
	default:
		return 100 * math.Exp(-ageHours/720)
	}
}

// metadataScore measures overlap between the query's terms and the stored
// topics, entities, and key actions. Absent metadata scores zero.
func metadataScore(mem *Memory, a *QueryAnalysis) float64 {
	if mem.Metadata == nil {
		return 0
	}
	terms := make(map[string]struct{}, len(a.ExpandedTerms))
	for _, t := range a.ExpandedTerms {
		terms[t] = struct{}{}
	}
	for _, t := range a.Terms {
		terms[t] = struct{}{}
	}

	score := 0.0
	for _, topic := range mem.Metadata.Topics {
		if _, ok := terms[strings.ToLower(topic)]; ok {
			score += 8
		}
	}
	for _, entity := range mem.Metadata.Entities {
		if _, ok := terms[strings.ToLower(entity)]; ok {
			score += 6
		}
	}
	for _, action := range mem.Metadata.KeyActions {
		if _, ok := terms[strings.ToLower(action)]; ok {
			score += 5
		}
	}

	if a.TechnicalLevel == TechnicalAdvanced && mem.Metadata.Domain == "technology" {
		score += 5
	}
	return score
}

func matchedTerms(content string, a *QueryAnalysis) []string {
	lower := strings.ToLower(content)
	var matched []string
	for _, term := range a.Terms {
		if strings.Contains(lower, term) {
			matched = append(matched, term)
		}
	}
	return matched
}

// Acceptance threshold parameters.
const (
	thresholdBase     = 15.0
	thresholdBroad    = 10.0
	thresholdSpecific = 25.0
	varianceTrigger   = 3.0
	varianceFloorFrac = 0.3
)

// dynamicThreshold computes the acceptance threshold for a result set.
// When the top score dwarfs the average (top > 3x avg) the floor is
// raised to 30% of the average so a single strong hit does not drag a
// tail of noise along with it.
func dynamicThreshold(focus Focus, scores []float64) float64 {
	threshold := thresholdBase
	switch focus {
	case FocusBroad:
		threshold = thresholdBroad
	case FocusSpecific:
		threshold = thresholdSpecific
	}

	if len(scores) == 0 {
		return threshold
	}
	top, sum := scores[0], 0.0
	for _, s := range scores {
		if s > top {
			top = s
		}
		sum += s
	}
	avg := sum / float64(len(scores))
	if avg > 0 && top > varianceTrigger*avg {
		if floor := varianceFloorFrac * avg; floor > threshold {
			threshold = floor
		}
	}
	return threshold
}

// Deduplication parameters.
const (
	dedupSameSession   = 0.85
	dedupScoreGap      = 0.75
	dedupGapRatio      = 1.10
	overlapRawWeight   = 0.6
	overlapQueryWeight = 0.4
)

// resultSimilarity blends raw word overlap with overlap restricted to
// query-relevant words.
func resultSimilarity(a, b *Memory, analysis *QueryAnalysis) float64 {
	raw := textsim.WordOverlap(a.Content, b.Content)
	relevant := queryRelevantOverlap(a.Content, b.Content, analysis)
	return overlapRawWeight*raw + overlapQueryWeight*relevant
}

func queryRelevantOverlap(a, b string, analysis *QueryAnalysis) float64 {
	terms := make(map[string]struct{}, len(analysis.ExpandedTerms))
	for _, t := range analysis.ExpandedTerms {
		terms[t] = struct{}{}
	}
	if len(terms) == 0 {
		return 0
	}

	inA := relevantWords(a, terms)
	inB := relevantWords(b, terms)
	if len(inA) == 0 || len(inB) == 0 {
		return 0
	}
	shared := 0
	for w := range inA {
		if _, ok := inB[w]; ok {
			shared++
		}
	}
	maxLen := len(inA)
	if len(inB) > maxLen {
		maxLen = len(inB)
	}
	return float64(shared) / float64(maxLen)
}

func relevantWords(content string, terms map[string]struct{}) map[string]struct{} {
	words := make(map[string]struct{})
	for _, tok := range textsim.Tokenize(content) {
		if _, ok := terms[tok]; ok {
			words[tok] = struct{}{}
		}
	}
	return words
}

// Rank scores, thresholds, deduplicates, and normalizes candidates into
// the final result list, at most limit entries.
func (s *Scorer) Rank(memories []*Memory, a *QueryAnalysis, queryEmbedding []float32, limit int) []*RankedResult {
	if limit <= 0 {
		limit = 10
	}
	if len(memories) == 0 {
		return nil
	}

	candidates := make([]scored, 0, len(memories))
	rawScores := make([]float64, 0, len(memories))
	for _, mem := range memories {
		score, sig, matched := s.Score(mem, a, queryEmbedding)
		candidates = append(candidates, scored{memory: mem, signals: sig, score: score, matched: matched})
		rawScores = append(rawScores, score)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	threshold := dynamicThreshold(a.Focus, rawScores)
	surviving := candidates[:0:0]
	for _, c := range candidates {
		if c.score >= threshold {
			surviving = append(surviving, c)
		}
	}

	// Graceful degradation: never return nothing when memories exist.
	degraded := false
	if len(surviving) == 0 {
		n := 2
		if n > len(candidates) {
			n = len(candidates)
		}
		surviving = candidates[:n]
		degraded = true
	}

	deduped := dedupe(surviving, a)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	top := deduped[0].score
	results := make([]*RankedResult, 0, len(deduped))
	for _, c := range deduped {
		score := 1.0
		if top > 0 {
			score = c.score / top
		}
		if degraded && score < 0.1 {
			score = 0.1
		}
		results = append(results, &RankedResult{
			Memory:         c.memory,
			RelevanceScore: score,
			MatchedTerms:   c.matched,
			UsedEmbeddings: c.signals.Semantic > 0,
		})
	}
	return results
}

// dedupe drops near-identical candidates in descending score order: a
// candidate is dropped when it is >0.85 similar to an accepted result
// from the same session, or >0.75 similar to an accepted result scoring
// at least 10% higher.
func dedupe(candidates []scored, a *QueryAnalysis) []scored {
	accepted := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, acc := range accepted {
			sim := resultSimilarity(c.memory, acc.memory, a)
			sameSession := c.memory.SessionID == acc.memory.SessionID
			if sameSession && sim > dedupSameSession {
				dup = true
				break
			}
			if sim > dedupScoreGap && acc.score >= c.score*dedupGapRatio {
				dup = true
				break
			}
		}
		if !dup {
			accepted = append(accepted, c)
		}
	}
	return accepted
}
