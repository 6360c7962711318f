package llm

// StrategyGreedy is the only sampling strategy the clients in this module send.
const StrategyGreedy = "greedy"

// SamplingStrategy selects how the model samples tokens.
type SamplingStrategy struct {
	Type        string   `json:"type"`                  // "greedy", "top_p", "top_k"
	Temperature *float64 `json:"temperature,omitempty"` // Only meaningful for top_p
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int     `json:"top_k,omitempty"`
}

// SamplingParams contains model inference parameters.
type SamplingParams struct {
	Strategy          SamplingStrategy `json:"strategy"`
	MaxTokens         int              `json:"max_tokens,omitempty"`
	RepetitionPenalty *float64         `json:"repetition_penalty,omitempty"`
}

// GreedySampling returns sampling parameters using the greedy strategy.
func GreedySampling() SamplingParams {
	return SamplingParams{Strategy: SamplingStrategy{Type: StrategyGreedy}}
}
