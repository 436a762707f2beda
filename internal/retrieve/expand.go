// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// QueryExpander generates alternative phrasings of a search query.
type QueryExpander interface {
	Expand(ctx context.Context, query string, max int) ([]string, error)
}

const expansionPrompt = `You are an AI language model assistant. Generate %d different versions of the given user question to retrieve relevant documents from a vector database. By generating multiple perspectives on the user question, you help overcome limitations of distance-based similarity search. Provide the alternative questions, one per line, with no numbering or extra text.

Original question: %s`

// numberingPrefix matches list decorations an LLM tends to add despite
// instructions ("1. ", "2) ", "- ").
var numberingPrefix = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*]\s*)`)

// CohereExpander paraphrases queries with the Cohere Chat API.
type CohereExpander struct {
	client      *cohereclient.Client
	model       string
	temperature float64
}

// NewCohereExpander builds an expander for the given chat model.
func NewCohereExpander(httpClient *http.Client, apiKey, model string) *CohereExpander {
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &CohereExpander{client: client, model: model, temperature: 0}
}

// Expand returns up to max query variants. The original query is always
// first; paraphrases fill the remaining slots.
func (e *CohereExpander) Expand(ctx context.Context, query string, max int) ([]string, error) {
	if max <= 1 {
		return []string{query}, nil
	}

	resp, err := e.client.Chat(ctx, &cohere.ChatRequest{
		Message:     fmt.Sprintf(expansionPrompt, max-1, query),
		Model:       &e.model,
		Temperature: &e.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("cohere chat: %w", err)
	}

	return parseExpansion(query, resp.Text, max), nil
}

// parseExpansion turns an LLM response into the query list: the original
// first, then one paraphrase per non-empty line, decorations stripped,
// capped at max.
func parseExpansion(query, text string, max int) []string {
	queries := []string{query}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(numberingPrefix.ReplaceAllString(line, ""))
		if line == "" || line == query {
			continue
		}
		queries = append(queries, line)
		if len(queries) == max {
			break
		}
	}
	return queries
}
