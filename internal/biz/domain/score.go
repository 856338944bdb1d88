package domain

// CandidateScore is computed at ranking time and never persisted
type CandidateScore struct {
	Total   float64  `json:"total"`
	Reasons []string `json:"reasons"`
}

// ScoredCandidate pairs a profile with its score
type ScoredCandidate struct {
	Profile Profile        `json:"profile"`
	Score   CandidateScore `json:"score"`
}
