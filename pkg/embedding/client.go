// Package embedding turns memory content and queries into vectors via an
// OpenAI-compatible embeddings API, with a two-tier cache in front of it.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const defaultChunkSize = 8000

// Client calls an OpenAI-compatible embeddings endpoint. Texts longer
// than the chunk size are split and the chunk vectors averaged, so any
// input length yields a single fixed-dimension vector.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	chunkSize  int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientConfig configures the embeddings client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "http://localhost:11434/v1".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	Model  string
	// ChunkSize is the maximum characters per request. Zero uses the default.
	ChunkSize int
	// RPS throttles outbound requests. Zero disables throttling.
	RPS   float64
	Burst int
}

// NewClient creates an embeddings client. Requests carry no client-side
// deadline; callers bound them through the context if they need to.
func NewClient(cfg ClientConfig) *Client {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		chunkSize:  chunkSize,
		httpClient: &http.Client{},
		limiter:    limiter,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Embed returns a single unit-length vector for the given text. Long
// texts are chunked and their vectors averaged before normalization.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding: empty input")
	}

	chunks := chunkText(text, c.chunkSize)
	vectors, err := c.embedBatch(ctx, chunks)
	if err != nil {
		return nil, err
	}

	vec := averageVectors(vectors)
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding: empty response for model %s", c.model)
	}
	normalize(vec)
	return vec, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp embedResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(raw, &errResp)
		if errResp.Error != nil {
			return nil, fmt.Errorf("embedding: api error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, fmt.Errorf("embedding: api error (status %d)", resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("embedding: decode response: %w", err)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			continue
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[item.Index] = vec
	}
	return vectors, nil
}

// chunkText splits text into pieces of at most size characters,
// preferring to break at whitespace near the boundary.
func chunkText(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= size {
			chunks = append(chunks, string(runes))
			break
		}

		cut := size
		for i := size; i > size/2; i-- {
			if runes[i-1] == ' ' || runes[i-1] == '\n' {
				cut = i
				break
			}
		}

		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return chunks
}

// averageVectors averages the non-empty vectors element-wise. Vectors
// whose dimension differs from the first are skipped.
func averageVectors(vectors [][]float32) []float32 {
	var dim int
	for _, v := range vectors {
		if len(v) > 0 {
			dim = len(v)
			break
		}
	}
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	var count int
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		count++
	}
	if count == 0 {
		return nil
	}

	avg := make([]float32, dim)
	for i, x := range sum {
		avg[i] = float32(x / float64(count))
	}
	return avg
}

// normalize scales a vector to unit length in place.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
