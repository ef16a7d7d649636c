package responder

import (
	"context"
	"fmt"
	"log"
	"strings"

	"aroma-assistant-be/pkg/llm"
	"aroma-assistant-be/pkg/rag/index"
)

const (
	// KeywordPrompt turns a free-form question into vector-search keywords
	KeywordPrompt = `Generate concise search keywords for querying a vector database of essential oil descriptions. Reply with the keywords only, no commentary.`

	// AnswerPrompt frames the final synthesis call
	AnswerPrompt = `You are an aromatherapy expert. Answer the customer's question using only the reference material provided. If the material does not cover the question, say so plainly.`
)

// Config tunes the retrieval-augmented strategy
type Config struct {
	TopK            int
	ExtractKeywords bool // false: search on the raw question instead
}

func DefaultConfig() Config {
	return Config{
		TopK:            5,
		ExtractKeywords: true,
	}
}

// RetrievalResponder answers by extracting keywords, pulling the top-K
// corpus sections and asking the model to synthesize a grounded answer.
type RetrievalResponder struct {
	llmProvider llm.LLMProvider
	idx         index.KnowledgeIndex
	config      Config
	logger      *log.Logger
}

var _ OpenDomainResponder = &RetrievalResponder{}

func NewRetrievalResponder(llmProvider llm.LLMProvider, idx index.KnowledgeIndex, config Config, logger *log.Logger) *RetrievalResponder {
	if config.TopK <= 0 {
		config.TopK = 5
	}
	return &RetrievalResponder{
		llmProvider: llmProvider,
		idx:         idx,
		config:      config,
		logger:      logger,
	}
}

func (r *RetrievalResponder) Respond(ctx context.Context, userID string, question string) (string, error) {
	if r.idx == nil {
		return "", ErrIndexUnavailable
	}

	searchQuery := question
	if r.config.ExtractKeywords {
		keywords, err := llm.Ask(ctx, r.llmProvider, KeywordPrompt, question)
		if err != nil {
			return "", fmt.Errorf("keyword extraction: %w", err)
		}
		searchQuery = keywords
		r.logger.Printf("[RETRIEVAL] Keywords for user %s: %s", userID, truncate(keywords, 80))
	}

	docs, err := r.idx.SearchTop(ctx, searchQuery, r.config.TopK)
	if err != nil {
		return "", fmt.Errorf("index search: %w", err)
	}

	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}
	reference := strings.Join(contents, "\n")

	r.logger.Printf("[RETRIEVAL] %d sections retrieved for user %s", len(docs), userID)

	prompt := fmt.Sprintf("Question: %s\n\nReference material:\n%s", question, reference)
	answer, err := llm.Ask(ctx, r.llmProvider, AnswerPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("answer synthesis: %w", err)
	}

	return answer, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
