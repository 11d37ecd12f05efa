// Package synthesis generates cluster narratives with the Anthropic API.
package synthesis

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const defaultMaxTokens = 512

// ClaudeCompleter produces short prose completions. It implements
// memory.Completer. The API key is read from ANTHROPIC_API_KEY by the
// underlying client.
type ClaudeCompleter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeCompleter creates a completer for the given model.
func NewClaudeCompleter(model string, maxTokens int) *ClaudeCompleter {
	tokens := int64(maxTokens)
	if tokens <= 0 {
		tokens = defaultMaxTokens
	}
	return &ClaudeCompleter{
		client:    anthropic.NewClient(),
		model:     model,
		maxTokens: tokens,
	}
}

// Complete sends the prompts and returns the concatenated text blocks
// of the response.
func (c *ClaudeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("synthesis: completion failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("synthesis: empty completion")
	}
	return text, nil
}
