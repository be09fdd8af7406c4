package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cm "github.com/kydenul/candidate-matcher"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a questionnaire CSV export into a candidate JSON dataset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("input", "i", "", "source dataset (.csv or .json)")
	convertCmd.Flags().StringP("output", "o", "", "destination JSON file (stdout when unset)")
	convertCmd.MarkFlagRequired("input")

	viper.BindPFlag("input", convertCmd.Flags().Lookup("input"))
	viper.BindPFlag("output", convertCmd.Flags().Lookup("output"))
}

func runConvert(cmd *cobra.Command) error {
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	loader, err := cm.NewCandidateLoaderFromConfig(config, logger)
	if err != nil {
		return err
	}

	input := viper.GetString("input")
	candidates, err := loader.LoadFromFile(input)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}

	data, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", cm.ErrSerialization, err)
	}
	data = append(data, '\n')

	output := viper.GetString("output")
	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}

	logger.Infof("Candidates converted, input: %s, output: %s, candidates: %d", input, output, len(candidates))
	return nil
}
