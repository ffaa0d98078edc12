package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CandidateDraft is one generated flashcard proposal.
type CandidateDraft struct {
	Front  string `json:"front"`
	Back   string `json:"back"`
	Prompt string `json:"prompt"`
}

// Result is the outcome of one generation call.
type Result struct {
	Candidates []CandidateDraft
	DurationMs int64
}

// Generator turns source text into flashcard candidates. Implementations
// are opaque collaborators; the caller treats any failure as a single
// generic generation error.
type Generator interface {
	Generate(ctx context.Context, inputText, model string) (*Result, error)
}

// ParseCandidates validates a raw model response at the boundary. The model
// is asked for a bare JSON array of {front, back, prompt}; anything else is
// rejected before it reaches core logic. Code fences around the array are
// tolerated.
func ParseCandidates(raw string) ([]CandidateDraft, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var drafts []CandidateDraft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("malformed generation payload: %w", err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("generation payload contained no candidates")
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Front) == "" || strings.TrimSpace(d.Back) == "" {
			return nil, fmt.Errorf("candidate %d is missing front or back", i)
		}
	}
	return drafts, nil
}
