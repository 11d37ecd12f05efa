package memory

import (
	"strings"
)

// Intent is the detected purpose of a query.
type Intent string

// Intents in fixed priority order; ties default to the first checked.
const (
	IntentFactual    Intent = "factual"
	IntentProcedural Intent = "procedural"
	IntentTemporal   Intent = "temporal"
	IntentConceptual Intent = "conceptual"
	IntentDiagnostic Intent = "diagnostic"
)

// Focus describes how narrowly a query targets its subject.
type Focus string

const (
	FocusSpecific   Focus = "specific"
	FocusBroad      Focus = "broad"
	FocusContextual Focus = "contextual"
)

// TemporalContext is the time orientation of a query.
type TemporalContext string

const (
	TemporalRecent     TemporalContext = "recent"
	TemporalHistorical TemporalContext = "historical"
	TemporalAny        TemporalContext = "any"
)

// TechnicalLevel is the assumed depth of a query.
type TechnicalLevel string

const (
	TechnicalBasic        TechnicalLevel = "basic"
	TechnicalIntermediate TechnicalLevel = "intermediate"
	TechnicalAdvanced     TechnicalLevel = "advanced"
)

// QueryAnalysis is the normalized form of a free-text query. All ranking
// decisions downstream key off this struct, never off the raw query.
type QueryAnalysis struct {
	Query          string
	Terms          []string
	ExpandedTerms  []string
	Intent         Intent
	Focus          Focus
	Temporal       TemporalContext
	TechnicalLevel TechnicalLevel
	DomainHints    []string
	EnhancedQuery  string
}

// intentIndicators is ordered: the first entry wins ties.
var intentIndicators = []struct {
	Intent     Intent
	Indicators []string
}{
	{IntentFactual, []string{
		"what", "which", "who", "when did", "where", "did we", "was there",
	}},
	{IntentProcedural, []string{
		"how to", "how do", "how did", "steps", "process", "way to", "procedure",
	}},
	{IntentTemporal, []string{
		"recent", "latest", "last time", "yesterday", "today", "earlier",
		"history", "before", "previously",
	}},
	{IntentConceptual, []string{
		"why", "explain", "understand", "concept", "meaning", "reason",
		"rationale",
	}},
	{IntentDiagnostic, []string{
		"error", "bug", "issue", "problem", "fail", "broken", "crash",
		"wrong", "debug",
	}},
}

var contextualIndicators = []string{
	"related to", "compared", "versus", "vs", "difference", "between",
	"similar", "alongside", "in context",
}

var recentIndicators = []string{
	"recent", "latest", "last", "today", "yesterday", "this week", "just",
	"newest", "current",
}

var historicalIndicators = []string{
	"old", "earlier", "history", "past", "original", "previously", "first",
	"initial", "back when",
}

var advancedIndicators = []string{
	"architecture", "implementation", "algorithm", "internals", "performance",
	"concurrency", "optimization", "protocol",
}

var basicIndicators = []string{
	"basics", "simple", "overview", "intro", "summary", "getting started",
}

// synonymGroups is the curated expansion table. Lookup is bidirectional:
// a term expands to its whole group whichever member it matches.
var synonymGroups = [][]string{
	{"error", "bug", "issue", "problem", "failure", "fault"},
	{"auth", "authentication", "login", "signin", "credential"},
	{"database", "storage", "persistence", "db"},
	{"deploy", "deployment", "release", "ship", "rollout"},
	{"config", "configuration", "settings", "setup"},
	{"test", "testing", "spec", "verification"},
	{"api", "endpoint", "route", "interface"},
	{"fix", "repair", "resolve", "patch"},
	{"implement", "build", "create", "develop"},
	{"performance", "speed", "latency", "optimization"},
	{"memory", "recall", "context", "history"},
	{"search", "query", "find", "lookup", "retrieve"},
	{"cache", "caching", "buffer"},
	{"server", "service", "backend", "daemon"},
}

// domainKeywords maps domains to their signal keywords. Shared with
// write-time metadata derivation so both sides speak the same labels.
var domainKeywords = []struct {
	Domain   string
	Keywords []string
}{
	{"security", []string{
		"auth", "authentication", "security", "jwt", "token", "password",
		"encryption", "permission", "oauth", "credential",
	}},
	{"technology", []string{
		"code", "api", "server", "database", "algorithm", "framework",
		"library", "compile", "runtime", "software",
	}},
	{"infrastructure", []string{
		"deploy", "deployment", "docker", "kubernetes", "pipeline", "ci",
		"terraform", "cluster", "provision",
	}},
	{"data", []string{
		"database", "sql", "query", "schema", "migration", "postgres",
		"index", "dataset",
	}},
	{"frontend", []string{
		"ui", "frontend", "css", "component", "render", "browser", "react",
	}},
	{"testing", []string{
		"test", "testing", "coverage", "regression", "fixture", "assertion",
	}},
}

var queryStopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "was": {}, "are": {},
	"with": {}, "that": {}, "this": {}, "did": {}, "does": {}, "have": {},
	"had": {}, "has": {}, "about": {}, "what": {}, "which": {}, "when": {},
	"where": {}, "who": {}, "why": {}, "how": {}, "our": {}, "you": {},
	"not": {}, "all": {}, "any": {}, "can": {}, "get": {}, "were": {},
}

// Analyze normalizes a query into terms, expansion, intent, focus,
// temporal context, technical level, and domain hints. Pure function.
func Analyze(query string) *QueryAnalysis {
	lower := strings.ToLower(query)
	terms := queryTerms(lower)

	a := &QueryAnalysis{
		Query:          query,
		Terms:          terms,
		ExpandedTerms:  expandTerms(terms),
		Intent:         detectIntent(lower),
		Focus:          detectFocus(lower, terms),
		Temporal:       detectTemporal(lower),
		TechnicalLevel: detectTechnicalLevel(lower, terms),
		DomainHints:    detectDomainHints(lower, terms),
	}
	a.EnhancedQuery = buildEnhancedQuery(a)
	return a
}

// queryTerms lowercases, splits on whitespace and punctuation, and drops
// stop words and tokens of two characters or fewer.
func queryTerms(lower string) []string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := queryStopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// expandTerms looks each term up in the synonym table. Terms longer than
// six characters additionally match group members by substring.
func expandTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	var expanded []string
	add := func(t string) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		expanded = append(expanded, t)
	}

	for _, term := range terms {
		add(term)
		for _, group := range synonymGroups {
			matched := false
			for _, member := range group {
				if member == term {
					matched = true
					break
				}
				if len(term) > 6 && (strings.Contains(term, member) || strings.Contains(member, term)) {
					matched = true
					break
				}
			}
			if matched {
				for _, member := range group {
					add(member)
				}
			}
		}
	}
	return expanded
}

func detectIntent(lower string) Intent {
	best := intentIndicators[0].Intent
	bestHits := 0
	for _, ii := range intentIndicators {
		hits := 0
		for _, ind := range ii.Indicators {
			if strings.Contains(lower, ind) {
				hits++
			}
		}
		if hits > bestHits {
			best = ii.Intent
			bestHits = hits
		}
	}
	return best
}

func detectFocus(lower string, terms []string) Focus {
	if len(terms) >= 3 {
		for _, t := range terms {
			if len(t) > 8 {
				return FocusSpecific
			}
		}
	}
	for _, ind := range contextualIndicators {
		if strings.Contains(lower, ind) {
			return FocusContextual
		}
	}
	return FocusBroad
}

func detectTemporal(lower string) TemporalContext {
	for _, ind := range recentIndicators {
		if strings.Contains(lower, ind) {
			return TemporalRecent
		}
	}
	for _, ind := range historicalIndicators {
		if strings.Contains(lower, ind) {
			return TemporalHistorical
		}
	}
	return TemporalAny
}

func detectTechnicalLevel(lower string, terms []string) TechnicalLevel {
	for _, ind := range advancedIndicators {
		if strings.Contains(lower, ind) {
			return TechnicalAdvanced
		}
	}
	if len(terms) > 5 {
		return TechnicalAdvanced
	}
	for _, ind := range basicIndicators {
		if strings.Contains(lower, ind) {
			return TechnicalBasic
		}
	}
	return TechnicalIntermediate
}

func detectDomainHints(lower string, terms []string) []string {
	termSet := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		termSet[t] = struct{}{}
	}

	var hints []string
	for _, d := range domainKeywords {
		for _, kw := range d.Keywords {
			if _, ok := termSet[kw]; ok || strings.Contains(lower, kw) {
				hints = append(hints, d.Domain)
				break
			}
		}
	}
	return hints
}

// buildEnhancedQuery produces the text handed to the embedding backend:
// the original query prefixed with a non-factual intent and suffixed with
// domain hints and up to five expansion terms not already present.
func buildEnhancedQuery(a *QueryAnalysis) string {
	var b strings.Builder
	if a.Intent != IntentFactual {
		b.WriteString(string(a.Intent))
		b.WriteString(": ")
	}
	b.WriteString(a.Query)

	for _, hint := range a.DomainHints {
		b.WriteString(" ")
		b.WriteString(hint)
	}

	present := make(map[string]struct{}, len(a.Terms))
	for _, t := range a.Terms {
		present[t] = struct{}{}
	}
	added := 0
	lowerQuery := strings.ToLower(a.Query)
	for _, t := range a.ExpandedTerms {
		if added == 5 {
			break
		}
		if _, ok := present[t]; ok {
			continue
		}
		if strings.Contains(lowerQuery, t) {
			continue
		}
		b.WriteString(" ")
		b.WriteString(t)
		added++
	}
	return b.String()
}
