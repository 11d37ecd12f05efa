package embedding

import (
	"context"
	"strings"

	"github.com/mnemo/mnemo/pkg/memory"
)

// gatewayLogger is the logging surface the gateway needs.
type gatewayLogger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Gateway produces vectors for memories and queries. Memory content is
// enriched with its derived metadata before embedding so that category,
// topics, and domain contribute to the vector. It implements
// memory.Embedder.
type Gateway struct {
	client *Client
	cache  *Cache
	logger gatewayLogger
}

// NewGateway creates a gateway around the given client. The cache may
// be nil.
func NewGateway(client *Client, cache *Cache, logger gatewayLogger) *Gateway {
	if logger == nil {
		logger = nopCacheLogger{}
	}
	return &Gateway{client: client, cache: cache, logger: logger}
}

// EmbedMemory embeds memory content enriched with its metadata and
// returns the vector together with the producing model identifier.
func (g *Gateway) EmbedMemory(ctx context.Context, content string, md *memory.Metadata) ([]float32, string, error) {
	vec, err := g.embed(ctx, enrichText(content, md))
	if err != nil {
		return nil, "", err
	}
	return vec, g.client.Model(), nil
}

// EmbedQuery embeds an (enhanced) query string.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return g.embed(ctx, text)
}

func (g *Gateway) embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(g.client.Model(), text)

	if vec, ok := g.cache.Get(ctx, key); ok {
		g.logger.Debug("embedding cache hit", "model", g.client.Model())
		return vec, nil
	}

	vec, err := g.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	g.cache.Set(ctx, key, vec)
	return vec, nil
}

// enrichText prefixes content with its metadata so the vector reflects
// the memory's classification, not just its raw text.
func enrichText(content string, md *memory.Metadata) string {
	if md == nil {
		return content
	}

	var sb strings.Builder
	if md.Category != "" {
		sb.WriteString("Category: ")
		sb.WriteString(string(md.Category))
		sb.WriteString("\n")
	}
	if len(md.Topics) > 0 {
		sb.WriteString("Topics: ")
		sb.WriteString(strings.Join(md.Topics, ", "))
		sb.WriteString("\n")
	}
	if md.Domain != "" {
		sb.WriteString("Domain: ")
		sb.WriteString(md.Domain)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return content
	}
	sb.WriteString("\n")
	sb.WriteString(content)
	return sb.String()
}
