package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mnemo/mnemo/pkg/textsim"
)

// WriteOutcome describes what a write request did to the collection.
type WriteOutcome string

const (
	OutcomeCreated      WriteOutcome = "created"
	OutcomeConsolidated WriteOutcome = "consolidated"
)

// Embedder is the gateway contract the ingestion pipeline and engine
// consume. Implementations must fail soft: an error degrades the caller
// to keyword-only signals, it never aborts a write.
type Embedder interface {
	// EmbedMemory embeds memory content enriched with its metadata and
	// returns the vector together with the producing model identifier.
	EmbedMemory(ctx context.Context, content string, md *Metadata) ([]float32, string, error)

	// EmbedQuery embeds an (enhanced) query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ingestLogger is the minimal logger interface used by the pipeline.
type ingestLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopIngestLogger struct{}

func (nopIngestLogger) Debug(msg string, args ...any) {}
func (nopIngestLogger) Info(msg string, args ...any)  {}
func (nopIngestLogger) Warn(msg string, args ...any)  {}

// Pipeline turns raw content into collection updates: it validates,
// classifies, consolidates near-duplicates, and manages the in-memory
// working-set capacity. Persistence is the caller's job.
type Pipeline struct {
	embedder Embedder
	logger   ingestLogger
}

// NewPipeline creates an ingestion pipeline. embedder may be nil, in
// which case entries are stored without vectors.
func NewPipeline(embedder Embedder, logger ingestLogger) *Pipeline {
	if logger == nil {
		logger = nopIngestLogger{}
	}
	return &Pipeline{embedder: embedder, logger: logger}
}

// Ingest processes one write request against the current collection
// (sorted newest-first) and returns the affected memory, the outcome,
// and the updated collection. Embedding failures are absorbed; the only
// returned error is content validation.
func (p *Pipeline) Ingest(ctx context.Context, memories []*Memory, content string, now time.Time) (*Memory, WriteOutcome, []*Memory, error) {
	if strings.TrimSpace(content) == "" {
		return nil, "", memories, ErrEmptyContent
	}

	if target := p.findConsolidationTarget(memories, content, now); target != nil {
		p.consolidate(ctx, target, content, now)
		updated := trimWorkingSet(memories)
		SortNewestFirst(updated)
		return target, OutcomeConsolidated, updated, nil
	}

	mem := p.create(ctx, memories, content, now)
	updated := append([]*Memory{mem}, memories...)
	updated = trimWorkingSet(updated)
	return mem, OutcomeCreated, updated, nil
}

// findConsolidationTarget scans entries created within the consolidation
// window and returns the best one whose word overlap with the new content
// exceeds the threshold, or nil.
func (p *Pipeline) findConsolidationTarget(memories []*Memory, content string, now time.Time) *Memory {
	var best *Memory
	bestOverlap := ConsolidationThreshold
	for _, m := range memories {
		if now.Sub(m.Created) >= ConsolidationWindow {
			// Collection is newest-first; everything further is older.
			break
		}
		overlap := textsim.WordOverlap(content, m.Content)
		if overlap > bestOverlap {
			best = m
			bestOverlap = overlap
		}
	}
	return best
}

// consolidate merges new content into an existing recent entry: appended
// behind the continuation marker, timestamp refreshed, embedding
// recomputed for the combined text with the prior vector as fallback.
// No new identifier is minted.
func (p *Pipeline) consolidate(ctx context.Context, target *Memory, content string, now time.Time) {
	target.Content = target.Content + ContinuationMarker + content
	target.Created = now

	if p.embedder != nil {
		vector, model, err := p.embedder.EmbedMemory(ctx, target.Content, target.Metadata)
		if err != nil {
			p.logger.Warn("embedding failed during consolidation, keeping prior vector",
				"memory_id", target.ID, "error", err)
		} else {
			target.Embedding = vector
			target.EmbeddingModel = model
		}
	}

	p.logger.Info("consolidated memory", "memory_id", target.ID, "session_id", target.SessionID)
}

// create builds a new entry: importance-driven category tagging, metadata
// derivation from the (possibly tagged) content, and a best-effort
// embedding request.
func (p *Pipeline) create(ctx context.Context, memories []*Memory, content string, now time.Time) *Memory {
	category := Classify(content)
	importance := Importance(content, category)
	annotated := annotateContent(content, category, importance)
	md := DeriveMetadata(annotated)

	mem := &Memory{
		ID:        uuid.New().String(),
		Content:   annotated,
		Created:   now,
		SessionID: NextSessionID(memories, now),
		Metadata:  md,
	}

	if p.embedder != nil {
		vector, model, err := p.embedder.EmbedMemory(ctx, annotated, md)
		if err != nil {
			p.logger.Warn("embedding failed, storing without vector", "error", err)
		} else {
			mem.Embedding = vector
			mem.EmbeddingModel = model
		}
	}

	p.logger.Debug("created memory",
		"memory_id", mem.ID,
		"session_id", mem.SessionID,
		"category", category,
		"importance", importance,
	)
	return mem
}

// trimWorkingSet applies the operational capacity bound: beyond
// WorkingCapHigh entries, only the WorkingCapLow most recent survive.
// This is strict recency eviction, independent of importance, and
// distinct from the PersistedCap applied at save time.
func trimWorkingSet(memories []*Memory) []*Memory {
	if len(memories) <= WorkingCapHigh {
		return memories
	}
	SortNewestFirst(memories)
	return memories[:WorkingCapLow]
}
