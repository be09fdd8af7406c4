package candidatematcher

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements Logger interface for testing
type mockLogger struct {
	messages []string
}

func (ml *mockLogger) Debug(fields ...any) {
	ml.messages = append(ml.messages, "DEBUG: "+fmt.Sprint(fields...))
}

func (ml *mockLogger) Info(fields ...any) {
	ml.messages = append(ml.messages, "INFO: "+fmt.Sprint(fields...))
}

func (ml *mockLogger) Warn(fields ...any) {
	ml.messages = append(ml.messages, "WARN: "+fmt.Sprint(fields...))
}

func (ml *mockLogger) Error(fields ...any) {
	ml.messages = append(ml.messages, "ERROR: "+fmt.Sprint(fields...))
}

func (ml *mockLogger) Debugf(template string, args ...any) {
	ml.messages = append(ml.messages, "DEBUG: "+fmt.Sprintf(template, args...))
}

func (ml *mockLogger) Infof(template string, args ...any) {
	ml.messages = append(ml.messages, "INFO: "+fmt.Sprintf(template, args...))
}

func (ml *mockLogger) Warnf(template string, args ...any) {
	ml.messages = append(ml.messages, "WARN: "+fmt.Sprintf(template, args...))
}

func (ml *mockLogger) Errorf(template string, args ...any) {
	ml.messages = append(ml.messages, "ERROR: "+fmt.Sprintf(template, args...))
}

func (ml *mockLogger) contains(fragment string) bool {
	for _, msg := range ml.messages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func percentOf(t *testing.T, results Results, key string) *float64 {
	t.Helper()
	match, ok := results[key]
	require.True(t, ok, "missing result for key %q", key)
	return match.Percent
}

func TestComputeMatches_ReferenceExample(t *testing.T) {
	answers := []float64{1, -1, 0.5}
	candidates := []Candidate{
		{Name: "A", Positions: knownPositions(1, -1, 0.5)},
		{Name: "B", Positions: knownPositions(-1, 1, -0.5)},
		{Name: "C", Positions: []Position{Unknown(), Unknown(), Unknown()}},
		{Name: "", Positions: knownPositions(1, -1, 0.5)},
	}

	results, err := ComputeMatches(answers, candidates, WithQuestionCount(3))
	require.NoError(t, err)
	require.Len(t, results, 4)

	a := percentOf(t, results, "A")
	require.NotNil(t, a)
	assert.Equal(t, 100.0, *a)

	b := percentOf(t, results, "B")
	require.NotNil(t, b)
	assert.Equal(t, 0.0, *b)

	assert.Nil(t, percentOf(t, results, "C"), "no overlap")
	assert.Nil(t, percentOf(t, results, "idx_3"), "empty name")
}

func TestComputeMatches_Validation(t *testing.T) {
	tests := []struct {
		name      string
		answers   []float64
		opts      []MatchOption
		target    error
		wantIndex int
	}{
		{
			name:    "length mismatch",
			answers: []float64{1, 2},
			opts:    []MatchOption{WithQuestionCount(3)},
			target:  ErrLengthMismatch,
		},
		{
			name:    "negative question count",
			answers: []float64{},
			opts:    []MatchOption{WithQuestionCount(-1)},
			target:  ErrLengthMismatch,
		},
		{
			name:      "out of range answer",
			answers:   []float64{2},
			target:    ErrOutOfRangeAnswer,
			wantIndex: 0,
		},
		{
			name:      "NaN answer",
			answers:   []float64{0.5, math.NaN()},
			target:    ErrOutOfRangeAnswer,
			wantIndex: 1,
		},
		{
			name:      "infinite answer",
			answers:   []float64{0, 0, math.Inf(-1)},
			target:    ErrOutOfRangeAnswer,
			wantIndex: 2,
		},
		{
			name:      "below range answer",
			answers:   []float64{-1.01},
			target:    ErrOutOfRangeAnswer,
			wantIndex: 0,
		},
	}

	candidates := []Candidate{{Name: "A", Positions: knownPositions(1)}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ComputeMatches(tt.answers, candidates, tt.opts...)
			require.Error(t, err)
			assert.Nil(t, results, "no partial results")
			assert.ErrorIs(t, err, tt.target)

			if errors.Is(tt.target, ErrOutOfRangeAnswer) {
				var rangeErr *AnswerRangeError
				require.ErrorAs(t, err, &rangeErr)
				assert.Equal(t, tt.wantIndex, rangeErr.Index)
				assert.Contains(t, err.Error(), fmt.Sprintf("answers[%d]", tt.wantIndex))
			}
		})
	}
}

func TestComputeMatches_LengthCheckedBeforeValues(t *testing.T) {
	_, err := ComputeMatches([]float64{5, 5}, nil, WithQuestionCount(3))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestComputeMatches_KeyDerivation(t *testing.T) {
	answers := []float64{1}
	candidates := []Candidate{
		{Party: " P1 ", Name: " Alice ", CandidateNumber: " 101 ", Positions: knownPositions(1)},
		{Name: "Bob", Positions: knownPositions(-1)},
		{Party: "Lonely"},
		{CandidateNumber: "   ", Name: "  ", Positions: knownPositions(1)},
	}

	results, err := ComputeMatches(answers, candidates)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, Match{
		Party:           "P1",
		Name:            "Alice",
		CandidateNumber: "101",
		Percent:         results["101"].Percent,
	}, results["101"])
	require.NotNil(t, results["101"].Percent)
	assert.Equal(t, 100.0, *results["101"].Percent)

	require.NotNil(t, percentOf(t, results, "Bob"))
	assert.Equal(t, 0.0, *results["Bob"].Percent)

	lonely := results["idx_2"]
	assert.Equal(t, "Lonely", lonely.Party)
	assert.Equal(t, "", lonely.Name)
	assert.Nil(t, lonely.Percent)

	blank := results["idx_3"]
	assert.Equal(t, "", blank.CandidateNumber)
	assert.Equal(t, "", blank.Name)
	assert.Nil(t, blank.Percent)
}

func TestComputeMatches_DuplicateKeysLastWins(t *testing.T) {
	logger := &mockLogger{}
	matcher := NewCandidateMatcherWithLogger(NewSimilarityCalculator(), logger, 0)

	candidates := []Candidate{
		{Name: "First", CandidateNumber: "7", Positions: knownPositions(1, 1)},
		{Name: "Second", CandidateNumber: "7", Positions: knownPositions(-1, -1)},
	}

	results, err := matcher.ComputeMatches([]float64{1, 1}, candidates)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "Second", results["7"].Name)
	require.NotNil(t, results["7"].Percent)
	assert.Equal(t, 0.0, *results["7"].Percent)
	assert.True(t, logger.contains("overwritten_keys: 1"))
}

func TestComputeMatches_Eligibility(t *testing.T) {
	answers := []float64{1, 0.5}
	candidates := []Candidate{
		{Name: "NoPositions"},
		{Name: "EmptyPositions", Positions: []Position{}},
		{Name: "Degenerate", Positions: knownPositions(0, 0)},
		{Name: "Partial", Positions: []Position{Unknown(), Known(0.5)}},
		{Name: "Invalid", Positions: knownPositions(3, -4)},
	}

	results, err := ComputeMatches(answers, candidates)
	require.NoError(t, err)

	assert.Nil(t, results["NoPositions"].Percent)
	assert.Nil(t, results["EmptyPositions"].Percent)
	assert.Nil(t, results["Degenerate"].Percent)
	assert.Nil(t, results["Invalid"].Percent)

	require.NotNil(t, results["Partial"].Percent)
	assert.Equal(t, 100.0, *results["Partial"].Percent)
}

func TestComputeMatches_PercentProperties(t *testing.T) {
	answers := []float64{1, -0.5, 0, 0.5, -1, 1}
	candidates := make([]Candidate, 0, 50)
	for i := range 50 {
		positions := make([]Position, len(answers))
		for j := range positions {
			if (i+j)%5 == 0 {
				positions[j] = Unknown()
				continue
			}
			positions[j] = Known(ScaleValue((i*3 + j*7) % len(AnswerScale)))
		}
		candidates = append(candidates, Candidate{
			Name:      fmt.Sprintf("candidate-%d", i),
			Positions: positions,
		})
	}

	results, err := ComputeMatches(answers, candidates)
	require.NoError(t, err)
	require.Len(t, results, len(candidates))

	for key, match := range results {
		if match.Percent == nil {
			continue
		}
		p := *match.Percent
		assert.GreaterOrEqual(t, p, 0.0, key)
		assert.LessOrEqual(t, p, 100.0, key)
		assert.InDelta(t, math.Round(p*100), p*100, 1e-6, "%s not rounded to 2 decimals: %v", key, p)
	}
}

func TestComputeMatches_ScaleInvariant(t *testing.T) {
	answers := []float64{1, -1, 0.5, 0}
	candidates := []Candidate{
		{Name: "Half", Positions: knownPositions(0.5, -0.5, 0.25, 0)},
	}

	results, err := ComputeMatches(answers, candidates)
	require.NoError(t, err)
	require.NotNil(t, results["Half"].Percent)
	assert.Equal(t, 100.0, *results["Half"].Percent)
}

func TestComputeMatches_ConfiguredQuestionCount(t *testing.T) {
	matcher := NewCandidateMatcherWithLogger(nil, nil, 3)
	candidates := []Candidate{{Name: "A", Positions: knownPositions(1, 1, 1)}}

	_, err := matcher.ComputeMatches([]float64{1, 1}, candidates)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	results, err := matcher.ComputeMatches([]float64{1, 1}, candidates, WithQuestionCount(2))
	require.NoError(t, err)
	require.NotNil(t, results["A"].Percent)
	assert.Equal(t, 100.0, *results["A"].Percent)
}

func TestComputeMatches_EmptyInputs(t *testing.T) {
	results, err := ComputeMatches([]float64{}, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = ComputeMatches(nil, []Candidate{{Name: "A", Positions: knownPositions(1)}})
	require.NoError(t, err)
	assert.Nil(t, results["A"].Percent)
}

func TestComputeMatches_DoesNotMutateInput(t *testing.T) {
	answers := []float64{1, -1}
	candidates := []Candidate{{Name: "  Padded  ", Positions: knownPositions(1, -1)}}

	_, err := ComputeMatches(answers, candidates)
	require.NoError(t, err)

	assert.Equal(t, "  Padded  ", candidates[0].Name)
	assert.Equal(t, []float64{1, -1}, answers)
}

func TestComputeMatches_Logging(t *testing.T) {
	logger := &mockLogger{}
	matcher := NewCandidateMatcherWithLogger(NewSimilarityCalculator(), logger, 0)

	_, err := matcher.ComputeMatches([]float64{1}, []Candidate{
		{Name: "A", Positions: knownPositions(1)},
		{Name: "B"},
	})
	require.NoError(t, err)

	assert.True(t, logger.contains("ComputeMatches completed"))
	assert.True(t, logger.contains("scored: 1, unscored: 1"))
	assert.True(t, logger.contains("Candidate not eligible for scoring, key: B"))

	_, err = matcher.ComputeMatches([]float64{9}, nil)
	require.Error(t, err)
	assert.True(t, logger.contains("WARN: Answers rejected"))
}

func TestComputeMatches_Concurrent(t *testing.T) {
	matcher := NewCandidateMatcher(NewSimilarityCalculator())
	answers := []float64{1, -1, 0.5, 0}
	candidates := []Candidate{
		{Name: "A", Positions: knownPositions(1, -1, 0.5, 0)},
		{Name: "B", Positions: []Position{Known(-1), Unknown(), Known(0.5)}},
		{Name: "C", Positions: knownPositions(0.5, 0.5, 0.5, 0.5)},
	}

	expected, err := matcher.ComputeMatches(answers, candidates)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := matcher.ComputeMatches(answers, candidates)
			if err != nil {
				errs <- err
				return
			}
			if !assert.ObjectsAreEqual(expected, got) {
				errs <- fmt.Errorf("concurrent result differs: %v", got)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNewCandidateMatcherFromConfig(t *testing.T) {
	logger := &mockLogger{}

	config := DefaultConfig()
	config.QuestionCount = 2

	matcher, err := NewCandidateMatcherFromConfig(config, logger)
	require.NoError(t, err)
	assert.True(t, logger.contains("CandidateMatcher initialized, question_count: 2"))

	_, err = matcher.ComputeMatches([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = NewCandidateMatcherFromConfig(nil, logger)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func BenchmarkComputeMatches(b *testing.B) {
	answers := make([]float64, 20)
	for i := range answers {
		answers[i] = ScaleValue(i % len(AnswerScale))
	}

	candidates := make([]Candidate, 500)
	for i := range candidates {
		positions := make([]Position, len(answers))
		for j := range positions {
			positions[j] = Known(ScaleValue((i + j) % len(AnswerScale)))
		}
		candidates[i] = Candidate{Name: fmt.Sprintf("c%d", i), Positions: positions}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ComputeMatches(answers, candidates)
	}
}
