package candidatematcher

import (
	"encoding/json"
	"fmt"
)

// ParseAnswers decodes a JSON array of numbers. Null elements are rejected
// rather than read as zero.
func ParseAnswers(data []byte) ([]float64, error) {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: invalid answers JSON: %v", ErrMalformedInput, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: invalid answers JSON: expected an array", ErrMalformedInput)
	}

	answers := make([]float64, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, fmt.Errorf("%w: invalid answers JSON: answers[%d] is null", ErrMalformedInput, i)
		}
		answers[i] = *v
	}

	return answers, nil
}

// ParseCandidates decodes a JSON array of candidate records
func ParseCandidates(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("%w: invalid candidates structure: %v", ErrMalformedInput, err)
	}
	if candidates == nil {
		return nil, fmt.Errorf("%w: invalid candidates structure: expected an array", ErrMalformedInput)
	}

	return candidates, nil
}

// EncodeResults encodes Results as a JSON object keyed by candidate key
func EncodeResults(results Results) ([]byte, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return data, nil
}
