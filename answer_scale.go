package candidatematcher

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// AnswerScale is the 5-point agreement scale, from fully disagree to fully agree
var AnswerScale = [...]float64{-1, -0.5, 0, 0.5, 1}

// ScaleValue returns the answer for a scale index; unknown indices map to neutral
func ScaleValue(index int) float64 {
	if index < 0 || index >= len(AnswerScale) {
		return 0
	}
	return AnswerScale[index]
}

// ScaleIndex returns the scale index of an exact scale value
func ScaleIndex(value float64) (int, bool) {
	for i, v := range AnswerScale {
		if v == value {
			return i, true
		}
	}
	return -1, false
}

// agreementLabel maps a lowercase label fragment to its scale value
type agreementLabel struct {
	fragments []string
	value     float64
}

// agreementLabels is checked in order. Negated and "fully" forms come before the
// shorter fragments they contain.
var agreementLabels = []agreementLabel{
	{fragments: []string{"neither agree nor disagree"}, value: 0},
	{fragments: []string{"ei nõustu üldse", "полностью не согласен", "ei nõustu täielikult", "strongly disagree"}, value: -1},
	{fragments: []string{"ei nõustu", "не согласен", "disagree"}, value: -0.5},
	{fragments: []string{"neutraal", "нейтра", "neutral"}, value: 0},
	{fragments: []string{"täielikult", "полностью согласен", "nõustun täielikult", "strongly agree"}, value: 1},
	{fragments: []string{"nõustun", "согласен", "agree"}, value: 0.5},
}

// ParseAnswerLabel converts a questionnaire cell into a Position. Agreement labels
// and numeric scale values ("-1", "-0,5", "0.5", ...) are recognized; anything else,
// including a blank cell, is an unknown position.
func ParseAnswerLabel(raw string) Position {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Unknown()
	}

	for _, label := range agreementLabels {
		for _, fragment := range label.fragments {
			if strings.Contains(s, fragment) {
				return Known(label.value)
			}
		}
	}

	v, err := cast.ToFloat64E(strings.ReplaceAll(s, ",", "."))
	if err != nil || math.IsNaN(v) {
		return Unknown()
	}
	if _, ok := ScaleIndex(v); !ok {
		return Unknown()
	}

	return Known(v)
}
