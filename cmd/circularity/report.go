package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Circularity/internal/config"
	"github.com/MikeSquared-Agency/Circularity/internal/render"
	"github.com/MikeSquared-Agency/Circularity/internal/scoring"
)

type reportFlags struct {
	format     string
	out        string
	configPath string
}

func newReportCmd() *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report <responses-file>",
		Short: "Compute a report from a YAML or JSON file of factor ratings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(args[0], f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "json", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.configPath, "config", "", "Config file for catalog path and weights")

	return cmd
}

func runReport(path string, f *reportFlags, stdout io.Writer) error {
	if f.format != "json" && f.format != "md" {
		return exitError(exitInputError, "unknown format: %s", f.format)
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return exitError(exitInputError, "failed to load config: %v", err)
	}
	slog.SetDefault(newLogger(cfg.Logging, os.Stderr))

	scorer, err := newScorer(cfg)
	if err != nil {
		return exitError(exitInputError, "%v", err)
	}

	raw, err := readResponses(path)
	if err != nil {
		return exitError(exitInputError, "failed to read responses: %v", err)
	}
	responses, err := scoring.ResponsesFrom(scorer.Catalog(), raw)
	if err != nil {
		return exitError(exitInputError, "%v", err)
	}

	report, err := scorer.ComputeReport(responses)
	if errors.Is(err, scoring.ErrNoResponses) {
		return exitError(exitNoResponses, "%v", err)
	}
	if err != nil {
		return exitError(exitInputError, "%v", err)
	}

	var output string
	switch f.format {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		output = string(data) + "\n"
	case "md":
		output = render.Markdown(report)
	}

	if f.out != "" {
		if err := os.WriteFile(f.out, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err = io.WriteString(stdout, output)
	return err
}

// readResponses parses a mapping of factor name or DMF code to rating. JSON
// input is accepted since it is valid YAML.
func readResponses(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Responses map[string]int `yaml:"responses"`
	}
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Responses != nil {
		return doc.Responses, nil
	}
	var flat map[string]int
	if err := yaml.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return flat, nil
}
