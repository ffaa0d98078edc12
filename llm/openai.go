package llm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
)

const systemPrompt = "You are a flashcard author. Given source text, produce concise " +
	"question/answer flashcards. Respond with a bare JSON array of objects with keys " +
	"\"front\" (max 200 chars), \"back\" (max 500 chars) and \"prompt\" (one line " +
	"describing how the card was derived). No prose outside the JSON."

// OpenAIGenerator produces flashcard candidates with a single chat
// completion per request.
type OpenAIGenerator struct {
	apiKey string
}

func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{apiKey: apiKey}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, inputText, modelName string) (*Result, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: g.apiKey,
		Model:  modelName,
	})
	if err != nil {
		log.Printf("Error creating OpenAI client: %v", err)
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("Create flashcards from the following text:\n\n" + inputText),
	}

	start := time.Now()
	out, err := chatModel.Generate(ctx, messages)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("generation call failed after %dms: %v", elapsed, err)
		return nil, err
	}
	if out == nil || out.Content == "" {
		return nil, fmt.Errorf("no assistant content produced")
	}

	drafts, err := ParseCandidates(out.Content)
	if err != nil {
		return nil, err
	}

	return &Result{Candidates: drafts, DurationMs: elapsed}, nil
}
