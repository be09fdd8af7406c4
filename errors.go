package candidatematcher

import (
	"errors"
	"fmt"
)

// Error types for the candidate matching library
var (
	// ErrMalformedInput indicates the answers or candidates payload could not be parsed
	ErrMalformedInput = errors.New("malformed input")

	// ErrLengthMismatch indicates the answer count differs from the expected question count
	ErrLengthMismatch = errors.New("answer length mismatch")

	// ErrOutOfRangeAnswer indicates an answer is not a finite number in [-1, 1]
	ErrOutOfRangeAnswer = errors.New("answer out of range")

	// ErrSerialization indicates the result could not be encoded
	ErrSerialization = errors.New("serialization failed")

	// ErrInvalidConfiguration indicates configuration parameters are invalid
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrCandidateFileNotFound indicates the candidate dataset file could not be found
	ErrCandidateFileNotFound = errors.New("candidate file not found")

	// ErrUnsupportedFormat indicates the candidate dataset file type is not supported
	ErrUnsupportedFormat = errors.New("unsupported candidate file format")
)

// AnswerRangeError reports the first answer that failed range validation.
type AnswerRangeError struct {
	Index int
	Value float64
}

func (e *AnswerRangeError) Error() string {
	return fmt.Sprintf("%v: answers[%d] must be a finite number in [-1,1], got %v",
		ErrOutOfRangeAnswer, e.Index, e.Value)
}

func (e *AnswerRangeError) Unwrap() error {
	return ErrOutOfRangeAnswer
}
