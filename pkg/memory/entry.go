// Package memory implements the mnemo session-memory engine: ingestion
// with near-duplicate consolidation, capacity-bounded storage, hybrid
// multi-signal relevance ranking, and thematic clustering.
package memory

import (
	"time"
)

// Memory is the persisted unit: a short narrative describing work done
// in a session.
type Memory struct {
	// ID is the opaque unique identifier, assigned at creation.
	ID string `json:"id"`

	// Content is the free-text narrative. Mutated only by consolidation
	// (appended, never truncated) or category-tag prefixing at creation.
	Content string `json:"content"`

	// Created is the creation timestamp, refreshed on consolidation.
	Created time.Time `json:"created"`

	// SessionID groups memories written within a rolling 30-minute window.
	SessionID string `json:"session_id"`

	// Embedding is the optional semantic vector. Nil when the embedding
	// backend was unavailable at write time.
	Embedding []float32 `json:"embedding,omitempty"`

	// EmbeddingModel records the provenance of Embedding. Empty when
	// Embedding is nil.
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// Metadata is the optional structured annotation derived at write
	// time. Used only for ranking, never displayed verbatim.
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Metadata is the structured annotation derived from memory content at
// write time. Every scorer branch must tolerate its absence.
type Metadata struct {
	Category   Category `json:"category"`
	Topics     []string `json:"topics,omitempty"`
	Entities   []string `json:"entities,omitempty"`
	KeyActions []string `json:"key_actions,omitempty"`
	Domain     string   `json:"domain,omitempty"`
}

// HasEmbedding reports whether the memory carries a semantic vector.
func (m *Memory) HasEmbedding() bool {
	return len(m.Embedding) > 0
}

// AgeAt returns the age of the memory at the given instant.
func (m *Memory) AgeAt(now time.Time) time.Duration {
	return now.Sub(m.Created)
}

// Clone returns a deep copy of the memory. Scoring and consolidation
// mutate entries, so shared slices must not leak across callers.
func (m *Memory) Clone() *Memory {
	c := *m
	if m.Embedding != nil {
		c.Embedding = make([]float32, len(m.Embedding))
		copy(c.Embedding, m.Embedding)
	}
	if m.Metadata != nil {
		md := *m.Metadata
		md.Topics = append([]string(nil), m.Metadata.Topics...)
		md.Entities = append([]string(nil), m.Metadata.Entities...)
		md.KeyActions = append([]string(nil), m.Metadata.KeyActions...)
		c.Metadata = &md
	}
	return &c
}

// RankedResult is a single search hit.
type RankedResult struct {
	// Memory is the matched entry.
	Memory *Memory `json:"memory"`

	// RelevanceScore is normalized into [0,1]; the top result of a
	// non-empty result set always reports 1.0.
	RelevanceScore float64 `json:"relevance_score"`

	// MatchedTerms lists the query terms found in the memory content.
	MatchedTerms []string `json:"matched_terms"`

	// UsedEmbeddings reports whether semantic similarity contributed
	// to this result's score.
	UsedEmbeddings bool `json:"used_embeddings"`
}

// Cluster is a derived thematic grouping of memories. Rebuilt on every
// clustering call, never persisted.
type Cluster struct {
	Theme              string    `json:"theme"`
	Memories           []*Memory `json:"memories"`
	KeyTerms           []string  `json:"key_terms"`
	SynthesizedContent string    `json:"synthesized_content"`
	RelevanceScore     float64   `json:"relevance_score"`
	Category           Category  `json:"category"`
}

// Stats summarizes the current memory collection.
type Stats struct {
	TotalEntries      int              `json:"total_entries"`
	Sessions          int              `json:"sessions"`
	ByCategory        map[Category]int `json:"by_category"`
	EmbeddingCoverage float64          `json:"embedding_coverage"`
	OldestCreated     *time.Time       `json:"oldest_created,omitempty"`
	NewestCreated     *time.Time       `json:"newest_created,omitempty"`
}
