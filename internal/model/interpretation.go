package model

// UserContext is the optional free-form context submitted with a dream.
// Known keys: stress_level, emotional_state, recent_events.
type UserContext map[string]string

type CitedSource struct {
	Source    string  `json:"source"`
	Category  string  `json:"category"`
	Relevance float64 `json:"relevance"`
	Excerpt   string  `json:"excerpt"`
}

// Interpretation is the uniform result record both strategies return.
type Interpretation struct {
	Interpretation  string        `json:"interpretation"`
	ConfidenceScore float64       `json:"confidence_score"`
	Sources         []CitedSource `json:"sources"`
	Reasoning       string        `json:"reasoning"`
	Alternatives    []string      `json:"alternatives"`
	Strategy        string        `json:"strategy"`
	StageTrace      []string      `json:"stage_trace,omitempty"`
}
