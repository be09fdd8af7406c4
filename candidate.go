package candidatematcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

var jsonNull = []byte("null")

// Position is one candidate answer. Valid is false for an explicit null,
// meaning the candidate did not answer that question.
type Position struct {
	Value float64
	Valid bool
}

// Known returns a Position holding v
func Known(v float64) Position {
	return Position{Value: v, Valid: true}
}

// Unknown returns the explicit-absence Position
func Unknown() Position {
	return Position{}
}

// usable reports whether the position can take part in a similarity computation
func (p Position) usable() bool {
	return p.Valid && !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) &&
		p.Value >= -1 && p.Value <= 1
}

func (p Position) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return jsonNull, nil
	}
	return json.Marshal(p.Value)
}

func (p *Position) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*p = Unknown()
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("position must be a number or null: %w", err)
	}
	*p = Known(v)
	return nil
}

// Candidate is one input record. Positions is nil when the record carries no
// positions at all, which is distinct from an empty list.
type Candidate struct {
	Party           string
	Name            string
	CandidateNumber string
	Positions       []Position
}

// Candidate JSON field names. Keys are matched exactly; the candidate number is
// accepted under both its canonical and legacy names.
const (
	fieldParty                 = "party"
	fieldName                  = "name"
	fieldCandidateNumber       = "candidateNumber"
	fieldLegacyCandidateNumber = "candidate_number"
	fieldPositions             = "positions"
)

func (c *Candidate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		return fmt.Errorf("candidate record must be an object, got null")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var (
		party, name, number, legacyNumber *string
		positions                         []Position
	)
	targets := []struct {
		key    string
		target any
	}{
		{fieldParty, &party},
		{fieldName, &name},
		{fieldCandidateNumber, &number},
		{fieldLegacyCandidateNumber, &legacyNumber},
		{fieldPositions, &positions},
	}
	for _, t := range targets {
		raw, ok := fields[t.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, t.target); err != nil {
			return fmt.Errorf("candidate field %q: %w", t.key, err)
		}
	}

	if number == nil {
		number = legacyNumber
	}

	*c = Candidate{
		Party:           deref(party),
		Name:            deref(name),
		CandidateNumber: deref(number),
		Positions:       positions,
	}
	return nil
}

func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Party           string     `json:"party"`
		Name            string     `json:"name"`
		CandidateNumber string     `json:"candidateNumber"`
		Positions       []Position `json:"positions"`
	}{
		Party:           c.Party,
		Name:            c.Name,
		CandidateNumber: c.CandidateNumber,
		Positions:       c.Positions,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
