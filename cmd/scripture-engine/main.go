// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scripture-engine CLI.
// Each error kind exits with a distinct code so callers (scripts, CI) can
// distinguish failure modes: invalid reference 2, empty passage 3,
// citation out of range 4, analysis failed 5, any other domain error 1.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/scripture-engine/internal/analysis"
	"github.com/pdiddy/scripture-engine/internal/canon"
	"github.com/pdiddy/scripture-engine/internal/llm"
	"github.com/pdiddy/scripture-engine/internal/retrieve"
	"github.com/pdiddy/scripture-engine/internal/secrets"
	"github.com/pdiddy/scripture-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// Exit codes for the error taxonomy.
const (
	exitInvalidReference   = 2
	exitEmptyPassage       = 3
	exitCitationOutOfRange = 4
	exitAnalysisFailed     = 5
)

// rootCmd is the base command for the scripture-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "scripture-engine",
	Short: "Grounded AI analysis of Bible passages",
	Long: `scripture-engine retrieves Bible passages by reference and produces
grounded structured analyses. Passages and chapters run a single-shot
pipeline; whole books are segmented deterministically, analyzed segment by
segment, and synthesized into an outline. Every citation the model produces
is verified against the source text it was given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scripture-engine.yaml or ~/.config/scripture-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "log estimated token counts per generation call")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scripture-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scripture-engine"))
		}
	}

	viper.SetDefault("model", "claude-haiku-4-5-20251001")
	viper.SetDefault("bible_db", filepath.Join("data", "asv.db"))

	viper.SetEnvPrefix("SCRIPTURE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger. Warnings and up always print; debug
// adds the per-call token estimate lines.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// engineConfig assembles the run configuration from viper settings and the
// loaded secrets.
func engineConfig() types.EngineConfig {
	return types.EngineConfig{
		AI: types.AIConfig{
			Model:     viper.GetString("model"),
			APIKey:    loadedSecrets.AnthropicAPIKey(viper.GetString("api_key")),
			MaxTokens: viper.GetInt("max_tokens"),
			Timeout:   viper.GetDuration("timeout"),
			Debug:     viper.GetBool("debug"),
		},
		Canon: types.CanonConfig{
			DBPath: viper.GetString("bible_db"),
		},
	}
}

// buildEngine wires the oracle, retriever, provider, and orchestrator from
// configuration. The returned closer releases the corpus database.
func buildEngine() (*analysis.Engine, *retrieve.Retriever, llm.Provider, *zap.Logger, func(), error) {
	cfg := engineConfig()
	log := newLogger(cfg.AI.Debug)

	oracle, err := canon.NewSQLiteOracle(cfg.Canon.DBPath)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	retr := retrieve.New(canon.Cached(oracle))
	provider := llm.NewClaude(cfg.AI, log)

	closer := func() {
		oracle.Close()
		log.Sync()
	}
	return analysis.New(retr, provider, log), retr, provider, log, closer, nil
}

// exitCode maps a domain error to its CLI exit code.
func exitCode(err error) int {
	var (
		invalidRef  *types.InvalidReferenceError
		emptyPass   *types.EmptyPassageError
		outOfRange  *types.CitationOutOfRangeError
		analysisErr *types.AnalysisFailedError
	)
	switch {
	case errors.As(err, &invalidRef):
		return exitInvalidReference
	case errors.As(err, &emptyPass):
		return exitEmptyPassage
	case errors.As(err, &outOfRange):
		return exitCitationOutOfRange
	case errors.As(err, &analysisErr):
		return exitAnalysisFailed
	default:
		return 1
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
