// Package composer assembles grounded prompts from retrieved chunks and
// delegates generation to a provider.
package composer

import (
	"context"
	"fmt"
	"strings"

	"github.com/parchment-ai/parchment/internal/domain"
)

// GenerationClient defines the interface for generating answer text.
type GenerationClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const contextDelimiter = "\n---\n"

// Composer builds grounded prompts and produces answers via a
// generation provider.
type Composer struct {
	client GenerationClient
}

// New creates a Composer using the given generation client.
func New(client GenerationClient) *Composer {
	return &Composer{client: client}
}

// ComposePrompt builds the grounded prompt for a query. Each retrieved
// chunk contributes its source identifier and content; the query comes
// last. With no retrieved context the prompt instructs the model to say
// that no relevant information was found.
func ComposePrompt(query string, retrieved []domain.ScoredChunk) string {
	var b strings.Builder

	if len(retrieved) == 0 {
		b.WriteString("No context was found for this question.\n\n")
		b.WriteString("Question: ")
		b.WriteString(query)
		b.WriteString("\n\nState that no relevant information is available in the ingested documents.")
		return b.String()
	}

	b.WriteString("Answer the question using only the context below.\n\nContext:\n")
	for i, sc := range retrieved {
		if i > 0 {
			b.WriteString(contextDelimiter)
		}
		fmt.Fprintf(&b, "[source: %s, chunk %d]\n", sc.Chunk.SourceID, sc.Chunk.Index)
		b.WriteString(sc.Chunk.Content)
	}
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nIf the context does not contain the answer, say so.")
	return b.String()
}

// Answer composes the grounded prompt and delegates to the generation
// provider. Provider failures propagate unchanged.
func (c *Composer) Answer(ctx context.Context, query string, retrieved []domain.ScoredChunk) (string, error) {
	prompt := ComposePrompt(query, retrieved)
	answer, err := c.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return answer, nil
}
