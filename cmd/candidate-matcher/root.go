package main

import (
	"strings"

	"github.com/kydenul/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cm "github.com/kydenul/candidate-matcher"
)

const (
	app       = "candidate-matcher"
	envPrefix = "CANDIDATE_MATCHER"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "candidate-matcher scores election candidates against a voter's questionnaire answers",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file with a candidate_matcher section (defaults are used when unset)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initEnv lets CANDIDATE_MATCHER_* variables stand in for any bound flag.
func initEnv() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func getConfig() (*cm.Config, error) {
	if cfgFile == "" {
		return cm.DefaultConfig(), nil
	}

	return cm.LoadFromYAML(cfgFile)
}

func newLogger() log.Logger {
	level := "info"
	if viper.GetBool("debug") {
		level = "debug"
	}

	return log.NewLog(&log.Options{Level: level})
}
