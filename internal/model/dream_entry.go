package model

type DreamEntry struct {
	ID              int64           `json:"id"`
	DreamText       string          `json:"dream_text"`
	UserContext     UserContext     `json:"user_context"`
	Interpretation  *Interpretation `json:"interpretation"`
	ConfidenceScore float64         `json:"confidence_score"`
	Symbols         []string        `json:"symbols"`
	Strategy        string          `json:"strategy"`
	Ctime           int64           `json:"ctime"`
}
