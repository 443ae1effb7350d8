package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/awmpietro/quantum-dilemma/internal/logger"
	"github.com/awmpietro/quantum-dilemma/internal/narrative"
)

var (
	logLevel      string
	narrativePath string
)

var rootCmd = &cobra.Command{
	Use:   "quantum",
	Short: "Play and inspect branching dilemma narratives",
	Long: `quantum plays a binary dilemma narrative in the terminal. Every choice
advances its timeline and opens a new one for the road not taken, so all
outcomes are explored side by side.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log level written to stderr (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&narrativePath, "narrative", "",
		"DOT narrative file (default: the built-in narrative)")
}

func Execute() error {
	return rootCmd.Execute()
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Config{Level: logLevel, Encoding: "console", OutputPath: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// loadGraph compiles path, or the --narrative file, or the built-in narrative.
func loadGraph(path string) (*narrative.Graph, error) {
	if path == "" {
		path = narrativePath
	}
	if path == "" {
		return narrative.Canonical()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return narrative.NewCompiler().Compile(string(raw))
}
