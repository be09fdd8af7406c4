package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cm "github.com/kydenul/candidate-matcher"
)

var errNoCandidates = errors.New("no candidate dataset: pass --candidates or set candidates_path")

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score every candidate against one set of answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("answers", "a", "", "JSON file holding the answer array")
	matchCmd.Flags().String("values", "", `comma separated answers, e.g. "1,-1,0.5"`)
	matchCmd.Flags().Bool("likert", false, "treat --values as 0-4 scale indices")
	matchCmd.Flags().StringP("candidates", "c", "", "candidate dataset (.json or .csv), overrides candidates_path")
	matchCmd.Flags().IntP("question-count", "n", 0, "expected number of answers, overrides question_count")

	matchCmd.MarkFlagsMutuallyExclusive("answers", "values")
	matchCmd.MarkFlagsOneRequired("answers", "values")

	viper.BindPFlag("answers", matchCmd.Flags().Lookup("answers"))
	viper.BindPFlag("values", matchCmd.Flags().Lookup("values"))
	viper.BindPFlag("likert", matchCmd.Flags().Lookup("likert"))
	viper.BindPFlag("candidates", matchCmd.Flags().Lookup("candidates"))
	viper.BindPFlag("question-count", matchCmd.Flags().Lookup("question-count"))
}

func runMatch(cmd *cobra.Command) error {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if path := viper.GetString("candidates"); path != "" {
		config.CandidatesPath = path
	}
	if viper.IsSet("question-count") {
		config.QuestionCount = viper.GetInt("question-count")
	}
	if config.CandidatesPath == "" {
		return errNoCandidates
	}

	answers, err := readAnswers(viper.GetString("answers"), viper.GetString("values"), viper.GetBool("likert"))
	if err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}

	loader, err := cm.NewCandidateLoaderFromConfig(config, logger)
	if err != nil {
		return err
	}

	candidates, err := loader.LoadFromFile(config.CandidatesPath)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}

	matcher, err := cm.NewCandidateMatcherFromConfig(config, logger)
	if err != nil {
		return err
	}

	results, err := matcher.ComputeMatches(answers, candidates)
	if err != nil {
		return err
	}

	data, err := cm.EncodeResults(results)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		return fmt.Errorf("%w: %v", cm.ErrSerialization, err)
	}
	pretty.WriteByte('\n')

	_, err = cmd.OutOrStdout().Write(pretty.Bytes())
	return err
}

// readAnswers takes answers from a JSON file when path is set, otherwise from a
// comma separated list. With likert set, list entries are AnswerScale indices.
func readAnswers(path, values string, likert bool) ([]float64, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return cm.ParseAnswers(data)
	}

	if strings.TrimSpace(values) == "" {
		return []float64{}, nil
	}

	fields := strings.Split(values, ",")
	answers := make([]float64, 0, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)

		if likert {
			idx, err := cast.ToIntE(field)
			if err != nil || idx < 0 || idx >= len(cm.AnswerScale) {
				return nil, fmt.Errorf("%w: values[%d] must be a scale index 0-%d, got %q",
					cm.ErrMalformedInput, i, len(cm.AnswerScale)-1, field)
			}
			answers = append(answers, cm.ScaleValue(idx))
			continue
		}

		v, err := cast.ToFloat64E(field)
		if err != nil {
			return nil, fmt.Errorf("%w: values[%d] is not a number, got %q", cm.ErrMalformedInput, i, field)
		}
		answers = append(answers, v)
	}

	return answers, nil
}
