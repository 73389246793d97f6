package domain

const (
	SingleHighlightMaxTokens = 200
	MultiHighlightMaxTokens  = 500
	SummaryTemperature       = 0.7

	// SummarizeFailedMessage is the only failure text shown to users.
	SummarizeFailedMessage = "Error generating summary. Please check your API key and try again."
)

// GenerationConfig bounds a generation call.
type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// GenerationRequest is a single prompt plus its limits.
type GenerationRequest struct {
	Prompt string
	Config GenerationConfig
}

// Summary is the formatted result of a summarization.
type Summary struct {
	Raw   string `json:"raw"`
	HTML  string `json:"html"`
	Count int    `json:"count"`
}
