package candidatematcher

import "io"

// Matcher scores candidates against one user's questionnaire answers
type Matcher interface {
	// ComputeMatches validates answers and returns one Match per candidate, keyed by
	// candidate number, name, or input position. Per-candidate data problems never
	// fail the call; they leave that candidate's Percent nil.
	ComputeMatches(answers []float64, candidates []Candidate, opts ...MatchOption) (Results, error)

	// ComputeMatchesJSON is ComputeMatches over JSON payloads, returning the encoded Results
	ComputeMatchesJSON(answersJSON, candidatesJSON []byte, opts ...MatchOption) ([]byte, error)
}

// SimilarityCalculator computes similarity between an answer vector and candidate positions
type SimilarityCalculator interface {
	// MaskedCosineSimilarity computes cosine similarity over the indices where both the
	// answer and the position are usable. ok is false when there is no overlap or the
	// overlapping vectors have a near-zero norm.
	MaskedCosineSimilarity(answers []float64, positions []Position) (score float64, overlap int, ok bool)

	// Percent maps a similarity score in [-1, 1] to [0, 100] rounded to 2 decimals
	Percent(score float64) float64
}

// CandidateLoader reads candidate datasets from JSON or CSV sources
type CandidateLoader interface {
	// LoadFromFile loads a .json or .csv dataset, serving repeated loads of an
	// unchanged file from cache
	LoadFromFile(path string) ([]Candidate, error)

	// LoadJSON decodes a JSON array of candidate records
	LoadJSON(reader io.Reader) ([]Candidate, error)

	// LoadCSV decodes a questionnaire export with one candidate per row
	LoadCSV(reader io.Reader) ([]Candidate, error)

	// Purge drops every cached dataset
	Purge()
}

// Match is the result for a single candidate
type Match struct {
	Party           string   `json:"party"`
	Name            string   `json:"name"`
	CandidateNumber string   `json:"candidateNumber"`
	Percent         *float64 `json:"percent"` // nil when no comparable score exists
}

// Results maps a derived candidate key to its Match
type Results map[string]Match

// Logger interface for configurable logging
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	Debugf(template string, args ...any)
	Infof(template string, args ...any)
	Warnf(template string, args ...any)
	Errorf(template string, args ...any)
}
