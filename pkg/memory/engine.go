package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mnemo/mnemo/config"
)

// Publisher receives engine lifecycle events (memory.saved,
// memory.consolidated, search.completed). Optional.
type Publisher interface {
	Publish(eventType string, payload any)
}

// Recorder receives engine metrics. Optional.
type Recorder interface {
	RecordMemoryWrite(outcome string)
	RecordMemoryRejected()
	RecordEviction(count int)
	RecordSearch(duration time.Duration, results int, usedEmbeddings bool)
	RecordClusterRun(clusters int)
	SetMemoryCount(count int)
}

// engineLogger is the minimal logger interface used by the engine.
type engineLogger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopEngineLogger struct{}

func (nopEngineLogger) Debug(msg string, args ...any) {}
func (nopEngineLogger) Info(msg string, args ...any)  {}
func (nopEngineLogger) Warn(msg string, args ...any)  {}
func (nopEngineLogger) Error(msg string, args ...any) {}

// Options carries the optional engine collaborators.
type Options struct {
	// Completer enables AI narrative synthesis for clusters.
	Completer Completer

	// Events receives lifecycle events.
	Events Publisher

	// Metrics receives engine metrics.
	Metrics Recorder
}

// Engine is the facade over the memory core: ingestion, search, and
// clustering against one persisted collection.
//
// Every operation that reads or mutates the collection runs under one
// mutex. That is the deliberate answer to the load-then-save race: a
// single writer per engine, so no update is silently lost in-process.
type Engine struct {
	mu sync.Mutex

	cfg         *config.MemoryConfig
	store       Store
	pipeline    *Pipeline
	scorer      *Scorer
	synthesizer *Synthesizer
	embedder    Embedder
	events      Publisher
	metrics     Recorder
	logger      engineLogger

	memories []*Memory
	loaded   bool
}

// NewEngine creates a memory engine from configuration, a store backend,
// and an embedder. embedder may be nil; opts may be nil.
func NewEngine(cfg *config.MemoryConfig, store Store, embedder Embedder, logger engineLogger, opts *Options) *Engine {
	if logger == nil {
		logger = nopEngineLogger{}
	}
	if opts == nil {
		opts = &Options{}
	}

	weights := DefaultWeights()
	if cfg != nil && cfg.Weights.Valid() {
		weights = Weights{
			Semantic: cfg.Weights.Semantic,
			Keyword:  cfg.Weights.Keyword,
			Context:  cfg.Weights.Contextual,
			Temporal: cfg.Weights.Temporal,
			Metadata: cfg.Weights.Metadata,
		}
	}

	clusterThreshold := 0.0
	if cfg != nil {
		clusterThreshold = cfg.ClusterThreshold
	}

	return &Engine{
		cfg:         cfg,
		store:       store,
		pipeline:    NewPipeline(embedder, logger),
		scorer:      NewScorer(weights),
		synthesizer: NewSynthesizer(clusterThreshold, opts.Completer, logger),
		embedder:    embedder,
		events:      opts.Events,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

// ensureLoaded lazily loads the working set from storage. Callers must
// hold e.mu.
func (e *Engine) ensureLoaded(ctx context.Context) {
	if e.loaded {
		return
	}
	memories, err := e.store.Load(ctx)
	if err != nil {
		// Store backends recover missing data themselves; any error here
		// is unexpected but still degrades to an empty collection.
		e.logger.Error("failed to load memory collection, starting empty", "error", err)
		memories = nil
	}
	e.memories = memories
	e.loaded = true
	e.logger.Info("memory collection loaded", "entries", len(memories))
}

// SaveMemory ingests new content: consolidation into a recent
// near-duplicate when possible, otherwise a new entry. Returns the
// affected memory and the write outcome.
func (e *Engine) SaveMemory(ctx context.Context, content string) (*Memory, WriteOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)

	before := len(e.memories)
	mem, outcome, updated, err := e.pipeline.Ingest(ctx, e.memories, content, time.Now())
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordMemoryRejected()
		}
		return nil, outcome, err
	}
	e.memories = updated

	if err := e.store.Save(ctx, e.memories); err != nil {
		e.logger.Error("failed to persist memory collection", "error", err)
		return nil, outcome, err
	}

	if e.metrics != nil {
		e.metrics.RecordMemoryWrite(string(outcome))
		e.metrics.SetMemoryCount(len(e.memories))
		if evicted := before + 1 - len(e.memories); outcome == OutcomeCreated && evicted > 0 {
			e.metrics.RecordEviction(evicted)
		}
	}
	if e.events != nil {
		e.events.Publish("memory."+string(outcome), mem.Clone())
	}
	return mem.Clone(), outcome, nil
}

// Search runs the read path: query analysis, best-effort query
// embedding, hybrid scoring, ranking, and deduplication. An empty or
// whitespace-only query returns the limit most recent memories with
// score 1.0 and no matched terms. An empty collection returns an empty
// result set, never an error.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*RankedResult, error) {
	start := time.Now()
	if limit <= 0 {
		limit = e.defaultLimit()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)

	if len(e.memories) == 0 {
		return []*RankedResult{}, nil
	}

	var results []*RankedResult
	usedEmbeddings := false

	if strings.TrimSpace(query) == "" {
		results = e.recentResults(limit)
	} else {
		analysis := Analyze(query)
		var queryEmbedding []float32
		if e.embedder != nil {
			vector, err := e.embedder.EmbedQuery(ctx, analysis.EnhancedQuery)
			if err != nil {
				e.logger.Warn("query embedding unavailable, keyword-only scoring", "error", err)
			} else {
				queryEmbedding = vector
			}
		}
		results = e.scorer.Rank(e.memories, analysis, queryEmbedding, limit)
		for _, r := range results {
			r.Memory = r.Memory.Clone()
			if r.UsedEmbeddings {
				usedEmbeddings = true
			}
		}
	}

	if e.metrics != nil {
		e.metrics.RecordSearch(time.Since(start), len(results), usedEmbeddings)
	}
	if e.events != nil {
		e.events.Publish("search.completed", map[string]any{
			"query":   query,
			"results": len(results),
		})
	}
	return results, nil
}

// recentResults implements the empty-query path. Callers hold e.mu.
func (e *Engine) recentResults(limit int) []*RankedResult {
	n := limit
	if n > len(e.memories) {
		n = len(e.memories)
	}
	results := make([]*RankedResult, 0, n)
	for _, m := range e.memories[:n] {
		results = append(results, &RankedResult{
			Memory:         m.Clone(),
			RelevanceScore: 1.0,
			MatchedTerms:   []string{},
		})
	}
	return results
}

// Clusters groups the current collection (or the provided subset) into
// thematic clusters scored against the query.
func (e *Engine) Clusters(ctx context.Context, memories []*Memory, query string) ([]*Cluster, error) {
	if memories == nil {
		e.mu.Lock()
		e.ensureLoaded(ctx)
		memories = make([]*Memory, len(e.memories))
		for i, m := range e.memories {
			memories[i] = m.Clone()
		}
		e.mu.Unlock()
	}

	clusters := e.synthesizer.Clusters(ctx, memories, query)
	if e.metrics != nil {
		e.metrics.RecordClusterRun(len(clusters))
	}
	return clusters, nil
}

// ListRecent returns up to limit most recent memories.
func (e *Engine) ListRecent(ctx context.Context, limit int) ([]*Memory, error) {
	if limit <= 0 {
		limit = e.defaultLimit()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)

	n := limit
	if n > len(e.memories) {
		n = len(e.memories)
	}
	out := make([]*Memory, 0, n)
	for _, m := range e.memories[:n] {
		out = append(out, m.Clone())
	}
	return out, nil
}

// Stats summarizes the current collection.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ensureLoaded(ctx)

	stats := &Stats{
		TotalEntries: len(e.memories),
		ByCategory:   make(map[Category]int),
	}
	if len(e.memories) == 0 {
		return stats, nil
	}

	sessions := make(map[string]struct{})
	embedded := 0
	for _, m := range e.memories {
		sessions[m.SessionID] = struct{}{}
		if m.HasEmbedding() {
			embedded++
		}
		if m.Metadata != nil {
			stats.ByCategory[m.Metadata.Category]++
		}
	}
	stats.Sessions = len(sessions)
	stats.EmbeddingCoverage = float64(embedded) / float64(len(e.memories))

	newest := e.memories[0].Created
	oldest := e.memories[len(e.memories)-1].Created
	stats.NewestCreated = &newest
	stats.OldestCreated = &oldest
	return stats, nil
}

// WorkingSetSize returns the current in-memory collection size.
func (e *Engine) WorkingSetSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.memories)
}

func (e *Engine) defaultLimit() int {
	if e.cfg != nil && e.cfg.DefaultLimit > 0 {
		return e.cfg.DefaultLimit
	}
	return 10
}
