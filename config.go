package candidatematcher

import (
	"os"
	"slices"

	"github.com/spf13/viper"
)

const (
	DefaultQuestionCount      = 0 // infer from the answer count
	DefaultCandidateCacheSize = 16
)

var (
	DefaultPartyColumns           = []string{"Erakond", "Партия", "valimisnimekiri"}
	DefaultNameColumns            = []string{"Eesnimi", "perekonnanimi", "Имя", "фамилия"}
	DefaultCandidateNumberColumns = []string{"Kandidaadi number", "Номер кандидата"}
	DefaultIgnoreColumns          = []string{"Ajatempel", "Timestamp", "newField"}

	DefaultPartyHeaders           = []string{"party"}
	DefaultNameHeaders            = []string{"name"}
	DefaultCandidateNumberHeaders = []string{"candidate number", "candidateNumber", "candidate_number"}
)

// CSVColumns locates the label columns of a questionnaire export. Party, Name and
// CandidateNumber are case-insensitive header fragments; the *Headers lists must
// equal the whole trimmed header, case-insensitively, and are tried first. Only the
// first column found for each label is a label column. Headers containing an Ignore
// fragment are skipped; every other non-empty header is a question column.
type CSVColumns struct {
	Party           []string `mapstructure:"party"`
	Name            []string `mapstructure:"name"`
	CandidateNumber []string `mapstructure:"candidate_number"`
	Ignore          []string `mapstructure:"ignore"`

	PartyHeaders           []string `mapstructure:"party_headers"`
	NameHeaders            []string `mapstructure:"name_headers"`
	CandidateNumberHeaders []string `mapstructure:"candidate_number_headers"`
}

// Config holds configuration parameters for the candidate matcher
type Config struct {
	// QuestionCount is the expected number of answers. Zero accepts any answer count
	// and compares over all of them; a per-call WithQuestionCount takes precedence.
	QuestionCount int `mapstructure:"question_count"`

	// CandidatesPath optionally points to a .json or .csv candidate dataset
	CandidatesPath     string     `mapstructure:"candidates_path"`
	CandidateCacheSize int        `mapstructure:"candidate_cache_size"`
	CSVColumns         CSVColumns `mapstructure:"csv_columns"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		QuestionCount:      DefaultQuestionCount,
		CandidatesPath:     "",
		CandidateCacheSize: DefaultCandidateCacheSize,
		CSVColumns:         DefaultCSVColumns(),
	}
}

// DefaultCSVColumns returns copies of the default header fragments
func DefaultCSVColumns() CSVColumns {
	return CSVColumns{
		Party:           slices.Clone(DefaultPartyColumns),
		Name:            slices.Clone(DefaultNameColumns),
		CandidateNumber: slices.Clone(DefaultCandidateNumberColumns),
		Ignore:          slices.Clone(DefaultIgnoreColumns),

		PartyHeaders:           slices.Clone(DefaultPartyHeaders),
		NameHeaders:            slices.Clone(DefaultNameHeaders),
		CandidateNumberHeaders: slices.Clone(DefaultCandidateNumberHeaders),
	}
}

// LoadFromYAML loads configuration from a YAML file
func LoadFromYAML(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := v.UnmarshalKey("candidate_matcher", config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func Validate(config *Config) error {
	if config == nil {
		return ErrInvalidConfiguration
	}

	if config.QuestionCount < 0 {
		return ErrInvalidConfiguration
	}

	if config.CandidateCacheSize <= 0 {
		return ErrInvalidConfiguration
	}

	// Verify the dataset exists when one is configured
	if config.CandidatesPath != "" {
		if _, err := os.Stat(config.CandidatesPath); err != nil {
			if os.IsNotExist(err) {
				return ErrCandidateFileNotFound
			}
			return err
		}
	}

	cols := config.CSVColumns
	if len(cols.Party)+len(cols.PartyHeaders) == 0 ||
		len(cols.Name)+len(cols.NameHeaders) == 0 ||
		len(cols.CandidateNumber)+len(cols.CandidateNumberHeaders) == 0 {
		return ErrInvalidConfiguration
	}
	for _, list := range [][]string{
		cols.Party, cols.Name, cols.CandidateNumber, cols.Ignore,
		cols.PartyHeaders, cols.NameHeaders, cols.CandidateNumberHeaders,
	} {
		if slices.Contains(list, "") {
			return ErrInvalidConfiguration
		}
	}

	return nil
}
