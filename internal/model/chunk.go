package model

// ResearchSource is the static per-document metadata attached to every chunk
// produced from that document. Credibility weights come from the validation
// hierarchy of the research corpus and never change at query time.
type ResearchSource struct {
	SourceID          string  `json:"source_id"`
	Title             string  `json:"title"`
	Author            string  `json:"author"`
	Category          string  `json:"category"`
	CredibilityWeight float64 `json:"credibility_weight"`
	ValidationTier    string  `json:"validation_tier"`
}

// ResearchChunk is one indexed span of a research document.
type ResearchChunk struct {
	SourceID          string    `json:"source_id"`
	ChunkIndex        int       `json:"chunk_index"`
	TotalChunks       int       `json:"total_chunks"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	CredibilityWeight float64   `json:"credibility_weight"`
	ValidationTier    string    `json:"validation_tier"`
	Content           string    `json:"content"`
	Embedding         []float32 `json:"-"`
}

// RetrievedChunk is a per-query match. FinalScore is the credibility-boosted
// ranking score: Similarity * (1 + CredibilityWeight).
type RetrievedChunk struct {
	Chunk      ResearchChunk `json:"chunk"`
	Similarity float64       `json:"similarity"`
	FinalScore float64       `json:"final_score"`
	Rank       int           `json:"rank"`
}
