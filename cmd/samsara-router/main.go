// Package main implements samsara-router, a demo binary that wires the
// Turiya bandit router, the Hybrid Recall engine, the Lokapala guardian
// controller, and the SQLite-backed store together and replays a fixture
// transcript through all four end to end.
//
// # File Index
//
//   - main.go     - entry point, rootCmd, global flags, init()
//   - demo.go     - runDemo(): subsystem construction and transcript replay
//   - backends.go - in-memory BM25/graphwalk hybrid.Backend adapters for the demo
//   - meta.go     - buildMetaLookup(): bridges the vector store into a hybrid.MetaLookup
//   - fixture.go  - the hardcoded demo transcript
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"samsara/internal/logging"
)

var (
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "samsara-router",
	Short: "samsara-router - agentic request router and memory substrate demo",
	Long: `samsara-router wires the Turiya contextual-bandit router, the Hybrid
Recall engine, the Lokapala guardians (Rakshaka/Gati/Satya), and the
SQLite-backed collaborator store together, then replays a fixture
transcript through all four end to end: classify, recall, guard, record.

Run without arguments to replay the bundled demo transcript.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		}
		if err := logging.Initialize(ws); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize file logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		ctx := cmd.Context()
		return runDemo(ctx, ws)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML (default: <workspace>/samsara.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall replay timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
