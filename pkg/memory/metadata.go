package memory

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mnemo/mnemo/pkg/textsim"
)

// actionVerbs are the verbs extracted into Metadata.KeyActions.
var actionVerbs = []string{
	"implemented", "fixed", "added", "removed", "refactored", "migrated",
	"deployed", "configured", "debugged", "tested", "optimized", "built",
	"wrote", "merged", "reverted", "upgraded", "documented", "designed",
}

const (
	maxTopics     = 5
	maxEntities   = 5
	maxKeyActions = 3
)

// DeriveMetadata builds the structured annotation for new memory content.
// It runs once at write time; ranking consumes the result, callers never
// display it verbatim.
func DeriveMetadata(content string) *Metadata {
	category := Classify(content)
	return &Metadata{
		Category:   category,
		Topics:     extractTopics(content),
		Entities:   extractEntities(content),
		KeyActions: extractKeyActions(content),
		Domain:     detectDomain(content),
	}
}

// extractTopics returns the most frequent non-trivial tokens, longest
// first on frequency ties so compound terms win over filler.
func extractTopics(content string) []string {
	counts := make(map[string]int)
	for _, tok := range textsim.Tokenize(content) {
		if len(tok) > 4 {
			counts[tok]++
		}
	}
	topics := make([]string, 0, len(counts))
	for t := range counts {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		if len(topics[i]) != len(topics[j]) {
			return len(topics[i]) > len(topics[j])
		}
		return topics[i] < topics[j]
	})
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics
}

// extractEntities picks out capitalized words and code-like identifiers
// (CamelCase, snake_case, dotted paths) that are not sentence-initial.
func extractEntities(content string) []string {
	seen := make(map[string]struct{})
	var entities []string
	add := func(e string) {
		key := strings.ToLower(e)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, e)
	}

	fields := strings.Fields(content)
	for i, f := range fields {
		trimmed := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.'
		})
		if len(trimmed) < 3 {
			continue
		}
		if strings.Contains(trimmed, "_") || strings.Contains(strings.Trim(trimmed, "."), ".") {
			add(trimmed)
			continue
		}
		if i > 0 && unicode.IsUpper([]rune(trimmed)[0]) {
			add(trimmed)
			continue
		}
		// CamelCase regardless of position
		if hasInnerUpper(trimmed) {
			add(trimmed)
		}
	}
	if len(entities) > maxEntities {
		entities = entities[:maxEntities]
	}
	return entities
}

func hasInnerUpper(s string) bool {
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func extractKeyActions(content string) []string {
	lower := strings.ToLower(content)
	var actions []string
	for _, verb := range actionVerbs {
		if strings.Contains(lower, verb) {
			actions = append(actions, verb)
			if len(actions) == maxKeyActions {
				break
			}
		}
	}
	return actions
}

// detectDomain maps content onto the shared domain keyword table used by
// the query analyzer, so write-time metadata and query-time hints agree.
func detectDomain(content string) string {
	lower := strings.ToLower(content)
	for _, d := range domainKeywords {
		for _, kw := range d.Keywords {
			if strings.Contains(lower, kw) {
				return d.Domain
			}
		}
	}
	return ""
}
