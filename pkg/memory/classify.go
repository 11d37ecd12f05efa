package memory

import (
	"strings"
)

// Category classifies what kind of work a memory records.
type Category string

// The fixed category set. Declaration order matters: classification ties
// are resolved in favor of the earlier category.
const (
	CategoryDiscovery      Category = "discovery"
	CategoryDecision       Category = "decision"
	CategoryImplementation Category = "implementation"
	CategoryProblemSolving Category = "problem_solving"
	CategoryLearning       Category = "learning"
	CategoryPlanning       Category = "planning"
	CategoryReflection     Category = "reflection"
)

// categoryIndicators maps each category to the phrases that signal it.
// Classify scores each category by counting indicator hits.
var categoryIndicators = []struct {
	Category   Category
	Indicators []string
}{
	{CategoryDiscovery, []string{
		"found", "discovered", "noticed", "realized", "turns out",
		"identified", "uncovered", "spotted", "it appears",
	}},
	{CategoryDecision, []string{
		"decided", "chose", "selected", "went with", "opted",
		"agreed", "settled on", "will use", "picked",
	}},
	{CategoryImplementation, []string{
		"implemented", "built", "created", "added", "wrote",
		"developed", "refactored", "wired", "integrated", "coded",
	}},
	{CategoryProblemSolving, []string{
		"fixed", "solved", "debugged", "resolved", "worked around",
		"root cause", "patched", "troubleshoot", "diagnosed",
	}},
	{CategoryLearning, []string{
		"learned", "understood", "figured out", "now know",
		"read about", "studied", "researched", "explored how",
	}},
	{CategoryPlanning, []string{
		"plan", "next step", "todo", "will need", "scheduled",
		"roadmap", "should later", "intend to", "upcoming",
	}},
	{CategoryReflection, []string{
		"in hindsight", "retrospect", "went well", "could have",
		"lesson", "takeaway", "worth noting", "overall",
	}},
}

// significanceTerms boost the importance score when present.
var significanceTerms = []string{
	"critical", "important", "major", "significant", "breaking",
	"blocker", "key", "essential", "security", "production",
}

// Classify assigns content to the category with the most indicator-phrase
// hits. Ties resolve to the first-declared category.
func Classify(content string) Category {
	lower := strings.ToLower(content)

	best := categoryIndicators[0].Category
	bestHits := -1
	for _, ci := range categoryIndicators {
		hits := 0
		for _, phrase := range ci.Indicators {
			if strings.Contains(lower, phrase) {
				hits++
			}
		}
		if hits > bestHits {
			best = ci.Category
			bestHits = hits
		}
	}
	return best
}

// Importance computes the importance score in [0,1] for content that has
// already been classified. The score starts at 0.5 and is boosted by
// significance terms, category, and content length, capped at 1.0.
func Importance(content string, category Category) float64 {
	lower := strings.ToLower(content)
	score := 0.5

	for _, term := range significanceTerms {
		if strings.Contains(lower, term) {
			score += 0.2
			break
		}
	}

	switch category {
	case CategoryDecision, CategoryProblemSolving:
		score += 0.2
	case CategoryDiscovery:
		score += 0.15
	}

	if len(content) > 200 {
		score += 0.1
	}
	if len(content) > 500 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// annotateContent applies the importance-driven category tagging rule:
// highly important content is stored verbatim; moderately important
// content gets a bracketed category tag unless it already mentions the
// category name.
func annotateContent(content string, category Category, importance float64) string {
	if importance > 0.8 {
		return content
	}
	if importance > 0.6 {
		name := strings.ReplaceAll(string(category), "_", " ")
		if !strings.Contains(strings.ToLower(content), name) {
			return "[" + titleCase(name) + "] " + content
		}
	}
	return content
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
