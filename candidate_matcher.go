package candidatematcher

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// placeholderKeyPrefix prefixes the key of a candidate with neither number nor name
const placeholderKeyPrefix = "idx_"

// MatchOption adjusts a single ComputeMatches call
type MatchOption func(*matchOptions)

type matchOptions struct {
	questionCount    int
	hasQuestionCount bool
}

// WithQuestionCount sets the expected number of answers for one call
func WithQuestionCount(n int) MatchOption {
	return func(o *matchOptions) {
		o.questionCount = n
		o.hasQuestionCount = true
	}
}

// candidateMatcher holds only immutable settings, so one instance may serve
// concurrent calls.
type candidateMatcher struct {
	calculator    SimilarityCalculator
	logger        Logger
	questionCount int // 0 means use len(answers)
}

// NewCandidateMatcher creates a new Matcher instance
func NewCandidateMatcher(calculator SimilarityCalculator) Matcher {
	return NewCandidateMatcherWithLogger(calculator, DiscardLogger{}, DefaultQuestionCount)
}

// NewCandidateMatcherWithLogger creates a new Matcher instance with custom logger
// and a default question count used when a call does not pass WithQuestionCount
func NewCandidateMatcherWithLogger(
	calculator SimilarityCalculator,
	logger Logger,
	questionCount int,
) Matcher {
	if calculator == nil {
		calculator = NewSimilarityCalculator()
	}
	return &candidateMatcher{
		calculator:    calculator,
		logger:        orDiscard(logger),
		questionCount: questionCount,
	}
}

// NewCandidateMatcherFromConfig creates a new Matcher from a configuration
func NewCandidateMatcherFromConfig(config *Config, logger Logger) (Matcher, error) {
	if err := Validate(config); err != nil {
		return nil, err
	}

	logger = orDiscard(logger)
	logger.Infof("CandidateMatcher initialized, question_count: %d", config.QuestionCount)

	return NewCandidateMatcherWithLogger(NewSimilarityCalculator(), logger, config.QuestionCount), nil
}

var defaultMatcher = NewCandidateMatcher(NewSimilarityCalculator())

// ComputeMatches scores candidates with a default Matcher
func ComputeMatches(answers []float64, candidates []Candidate, opts ...MatchOption) (Results, error) {
	return defaultMatcher.ComputeMatches(answers, candidates, opts...)
}

// ComputeMatchesJSON scores JSON-encoded candidates with a default Matcher
func ComputeMatchesJSON(answersJSON, candidatesJSON []byte, opts ...MatchOption) ([]byte, error) {
	return defaultMatcher.ComputeMatchesJSON(answersJSON, candidatesJSON, opts...)
}

// ComputeMatches validates the answers, then scores each candidate independently
func (cm *candidateMatcher) ComputeMatches(
	answers []float64,
	candidates []Candidate,
	opts ...MatchOption,
) (Results, error) {
	startTime := time.Now()
	questionCount := cm.resolveQuestionCount(len(answers), opts)

	cm.logger.Debugf("ComputeMatches called, answers_count: %d, candidates_count: %d, question_count: %d",
		len(answers), len(candidates), questionCount)

	if err := validateAnswers(answers, questionCount); err != nil {
		cm.logger.Warnf("Answers rejected, error: %v", err)
		return nil, err
	}

	results := make(Results, len(candidates))
	scored, overwritten := 0, 0

	for idx, candidate := range candidates {
		key, match := cm.matchCandidate(idx, candidate, answers)

		if _, exists := results[key]; exists {
			overwritten++
			cm.logger.Debugf("Duplicate candidate key, later record wins, key: %s, index: %d", key, idx)
		}
		results[key] = match

		if match.Percent != nil {
			scored++
		}
	}

	cm.logger.Infof(
		"ComputeMatches completed, total_duration_ms: %d, candidates_processed: %d, "+
			"scored: %d, unscored: %d, results_returned: %d, overwritten_keys: %d",
		time.Since(startTime).Milliseconds(),
		len(candidates),
		scored,
		len(candidates)-scored,
		len(results),
		overwritten,
	)

	return results, nil
}

// ComputeMatchesJSON decodes both payloads, computes matches and encodes the Results
func (cm *candidateMatcher) ComputeMatchesJSON(
	answersJSON, candidatesJSON []byte,
	opts ...MatchOption,
) ([]byte, error) {
	answers, err := ParseAnswers(answersJSON)
	if err != nil {
		cm.logger.Warnf("Answers payload rejected, error: %v", err)
		return nil, err
	}

	candidates, err := ParseCandidates(candidatesJSON)
	if err != nil {
		cm.logger.Warnf("Candidates payload rejected, error: %v", err)
		return nil, err
	}

	results, err := cm.ComputeMatches(answers, candidates, opts...)
	if err != nil {
		return nil, err
	}

	return EncodeResults(results)
}

func (cm *candidateMatcher) resolveQuestionCount(answerCount int, opts []MatchOption) int {
	var o matchOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case o.hasQuestionCount:
		return o.questionCount
	case cm.questionCount > 0:
		return cm.questionCount
	default:
		return answerCount
	}
}

// matchCandidate derives the result key and Match for one candidate
func (cm *candidateMatcher) matchCandidate(idx int, c Candidate, answers []float64) (string, Match) {
	match := Match{
		Party:           strings.TrimSpace(c.Party),
		Name:            strings.TrimSpace(c.Name),
		CandidateNumber: strings.TrimSpace(c.CandidateNumber),
	}

	key := candidateKey(idx, match)

	if match.Name == "" || c.Positions == nil {
		cm.logger.Debugf("Candidate not eligible for scoring, key: %s, name_empty: %v, positions_missing: %v",
			key, match.Name == "", c.Positions == nil)
		return key, match
	}

	score, overlap, ok := cm.calculator.MaskedCosineSimilarity(answers, c.Positions)
	if !ok {
		cm.logger.Debugf("No comparable score, key: %s, overlap: %d", key, overlap)
		return key, match
	}

	percent := cm.calculator.Percent(score)
	match.Percent = &percent

	return key, match
}

// candidateKey prefers the candidate number, then the name, then the input position
func candidateKey(idx int, m Match) string {
	if m.CandidateNumber != "" {
		return m.CandidateNumber
	}
	if m.Name != "" {
		return m.Name
	}
	return placeholderKeyPrefix + strconv.Itoa(idx)
}

// validateAnswers rejects a wrong answer count before checking individual values
func validateAnswers(answers []float64, questionCount int) error {
	if len(answers) != questionCount {
		return fmt.Errorf("%w: answers must be an array of length %d, got %d",
			ErrLengthMismatch, questionCount, len(answers))
	}

	for i, v := range answers {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < -1 || v > 1 {
			return &AnswerRangeError{Index: i, Value: v}
		}
	}

	return nil
}
