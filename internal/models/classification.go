// ABOUTME: Classification result models produced by the LLM provider
// ABOUTME: Parts carry text fragments with topic blocks and cognitive metadata
package models

// Part is one classified fragment of a user message
type Part struct {
	Text          string                 `json:"part"`
	Blocks        []string               `json:"blocks"`
	Emotion       string                 `json:"emotion"`
	Importance    int                    `json:"importance"`
	ThinkingFrame string                 `json:"thinking_frame,omitempty"`
	LevelOfMind   int                    `json:"level_of_mind,omitempty"`
	MemoryType    string                 `json:"memory_type,omitempty"`
	TargetBlock   map[string]interface{} `json:"target_block,omitempty"`
	Action        string                 `json:"action,omitempty"`
	StrategyHint  string                 `json:"strategy_hint,omitempty"`
}

// ClassificationMetadata describes the message as a whole
type ClassificationMetadata struct {
	Intention             string `json:"intention,omitempty"`
	Urgency               string `json:"urgency,omitempty"`
	CognitiveMode         string `json:"cognitive_mode,omitempty"`
	SuggestedResponseMode string `json:"suggested_response_mode,omitempty"`
}

// ClassificationResult is the full provider output for one message
type ClassificationResult struct {
	Parts    []Part                  `json:"parts"`
	Metadata *ClassificationMetadata `json:"metadata,omitempty"`
}

// FallbackClassification wraps an unclassifiable message in a single
// neutral part so downstream stages always see at least one part.
func FallbackClassification(text string) ClassificationResult {
	return ClassificationResult{
		Parts: []Part{{
			Text:       text,
			Blocks:     []string{},
			Emotion:    "neutral",
			Importance: 0,
		}},
	}
}

// BlockTitles returns the union of block titles across all parts,
// first occurrence order, duplicates removed.
func (r ClassificationResult) BlockTitles() []string {
	seen := make(map[string]bool)
	var titles []string
	for _, part := range r.Parts {
		for _, block := range part.Blocks {
			if block == "" || seen[block] {
				continue
			}
			seen[block] = true
			titles = append(titles, block)
		}
	}
	return titles
}
