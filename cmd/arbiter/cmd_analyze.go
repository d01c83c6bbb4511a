package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dispute-arbiter/internal/bootstrap"
	"dispute-arbiter/internal/config"
	"dispute-arbiter/internal/dispute"
)

var analyzeFlags struct {
	noAI    bool
	compact bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <case.json|->",
	Short: "Arbitrate a dispute case read from a JSON file",
	Long: `Read a dispute case in the same JSON shape the /api/dispute/analyze endpoint
accepts and print the verdict.

Usage:
  arbiter analyze case.json
  arbiter analyze --no-ai case.json
  cat case.json | arbiter analyze -

Narrative commentary uses the OLLAMA_API / OPENAI_API_KEY settings unless
--no-ai or DISABLE_AI=true is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.BoolVar(&analyzeFlags.noAI, "no-ai", false, "Skip narrative commentary")
	f.BoolVar(&analyzeFlags.compact, "compact", false, "Print the verdict as a single JSON line")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	c, err := readCase(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	bootstrap.ConfigureLogging(cfg)
	if analyzeFlags.noAI {
		cfg.Narrative.Disable = true
	}

	engine, err := bootstrap.Engine(cfg, bootstrap.Completer(cfg))
	if err != nil {
		return err
	}
	verdict := engine.Arbitrate(cmd.Context(), c)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !analyzeFlags.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(verdict)
}

func readCase(path string, stdin io.Reader) (dispute.Case, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return dispute.Case{}, fmt.Errorf("read case: %w", err)
	}
	var c dispute.Case
	if err := json.Unmarshal(data, &c); err != nil {
		return dispute.Case{}, fmt.Errorf("parse case %s: %w", path, err)
	}
	return c, nil
}
