package candidatematcher

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedDataset is a parsed file together with the file state it was parsed from
type cachedDataset struct {
	modTime    time.Time
	size       int64
	candidates []Candidate
}

// candidateLoader implements the CandidateLoader interface
type candidateLoader struct {
	logger  Logger
	columns CSVColumns
	cache   *lru.Cache[string, cachedDataset]
}

// NewCandidateLoader creates a new CandidateLoader caching up to cacheSize parsed files
func NewCandidateLoader(logger Logger, cacheSize int, columns CSVColumns) (CandidateLoader, error) {
	cache, err := lru.New[string, cachedDataset](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: candidate cache: %v", ErrInvalidConfiguration, err)
	}

	return &candidateLoader{
		logger:  orDiscard(logger),
		columns: columns,
		cache:   cache,
	}, nil
}

// NewCandidateLoaderFromConfig creates a CandidateLoader from a configuration
func NewCandidateLoaderFromConfig(config *Config, logger Logger) (CandidateLoader, error) {
	if err := Validate(config); err != nil {
		return nil, err
	}
	return NewCandidateLoader(logger, config.CandidateCacheSize, config.CSVColumns)
}

// LoadFromFile loads candidates from a .json or .csv file
func (cl *candidateLoader) LoadFromFile(path string) ([]Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCandidateFileNotFound
		}
		return nil, err
	}

	if cached, ok := cl.cache.Get(path); ok &&
		cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		cl.logger.Debugf("Candidate file served from cache, path: %s, candidates: %d",
			path, len(cached.candidates))
		return cloneCandidates(cached.candidates), nil
	}

	var load func(io.Reader) ([]Candidate, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		load = cl.LoadJSON
	case ".csv":
		load = cl.LoadCSV
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	cl.logger.Infof("Loading candidate file, path: %s", path)

	file, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to open candidate file: %w", err)
	}
	defer file.Close()

	candidates, err := load(file)
	if err != nil {
		return nil, err
	}

	cl.cache.Add(path, cachedDataset{
		modTime:    info.ModTime(),
		size:       info.Size(),
		candidates: candidates,
	})

	return cloneCandidates(candidates), nil
}

// LoadJSON decodes a JSON array of candidate records
func (cl *candidateLoader) LoadJSON(reader io.Reader) ([]Candidate, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading candidate JSON: %w", err)
	}

	candidates, err := ParseCandidates(data)
	if err != nil {
		return nil, err
	}

	cl.logger.Infof("Candidate JSON loaded, candidates: %d", len(candidates))
	return candidates, nil
}

// LoadCSV decodes a questionnaire export. The header row names the label columns
// and the question columns; each following row is one candidate.
//
//nolint:cyclop
func (cl *candidateLoader) LoadCSV(reader io.Reader) ([]Candidate, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: candidate CSV has no header row", ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: candidate CSV header: %v", ErrMalformedInput, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	layout := cl.detectLayout(header)
	cl.logger.Infof(
		"Candidate CSV header parsed, columns: %d, question_columns: %d, "+
			"party_column: %d, name_column: %d, candidate_number_column: %d",
		len(header), len(layout.questions), layout.party, layout.name, layout.number)

	candidates := make([]Candidate, 0)
	lineNumber := 1

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		lineNumber++
		if err != nil {
			return nil, fmt.Errorf("%w: candidate CSV line %d: %v", ErrMalformedInput, lineNumber, err)
		}

		if isBlankRecord(record) {
			continue
		}

		positions := make([]Position, len(layout.questions))
		for i, col := range layout.questions {
			positions[i] = ParseAnswerLabel(cell(record, col))
		}

		candidate := Candidate{
			Party:           strings.TrimSpace(cell(record, layout.party)),
			Name:            strings.TrimSpace(cell(record, layout.name)),
			CandidateNumber: strings.TrimSpace(cell(record, layout.number)),
			Positions:       positions,
		}
		if candidate.Name == "" {
			cl.logger.Warnf("Candidate row without a name, line_number: %d", lineNumber)
		}

		candidates = append(candidates, candidate)
	}

	cl.logger.Infof("Candidate CSV loading completed, candidates: %d, questions: %d",
		len(candidates), len(layout.questions))

	return candidates, nil
}

// Purge drops every cached dataset
func (cl *candidateLoader) Purge() {
	cl.cache.Purge()
}

// csvLayout holds column indices; -1 marks a label column that was not found
type csvLayout struct {
	party     int
	name      int
	number    int
	questions []int
}

func (cl *candidateLoader) detectLayout(header []string) csvLayout {
	layout := csvLayout{
		party:  findColumn(header, cl.columns.PartyHeaders, cl.columns.Party),
		name:   findColumn(header, cl.columns.NameHeaders, cl.columns.Name),
		number: findColumn(header, cl.columns.CandidateNumberHeaders, cl.columns.CandidateNumber),
	}

	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			continue
		}
		if i == layout.party || i == layout.name || i == layout.number {
			continue
		}
		if matchesAny(h, cl.columns.Ignore) {
			continue
		}
		layout.questions = append(layout.questions, i)
	}

	return layout
}

// findColumn returns the first header equal to one of headers, else the first
// header containing one of fragments, both case-insensitive; -1 when neither matches
func findColumn(header []string, headers []string, fragments []string) int {
	for i, h := range header {
		for _, want := range headers {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i
			}
		}
	}
	for i, h := range header {
		if matchesAny(h, fragments) {
			return i
		}
	}
	return -1
}

func matchesAny(header string, fragments []string) bool {
	h := strings.ToLower(header)
	for _, f := range fragments {
		if f != "" && strings.Contains(h, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cloneCandidates copies candidates so callers cannot modify cached positions
func cloneCandidates(candidates []Candidate) []Candidate {
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = c
		out[i].Positions = slices.Clone(c.Positions)
	}
	return out
}
