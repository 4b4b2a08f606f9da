package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/pipeline"
	"github.com/nao1215/aptscout/internal/summarize"
)

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "summarize <file | dir>",
		Aliases: []string{"gpt"},
		Short:   "Summarize listing records with a language model",
		Long: `Summarize sends the title, price, description, location, URL and details
of a listing record to the OpenAI chat completion API and asks for a JSON
summary with the monthly price breakdown, pros and cons.

The API key is read from OPENAI_API_KEY, from the environment or a .env file.

With a file, the summary is printed and, when --output is given, also
written to that file. With a directory, every record <name>.json gets a
summary <output>/<name>.ai.json; existing summaries are skipped with a
warning unless --force is given.

Examples:
  # Print the summary of one record
  aptscout summarize ads/0.json

  # Summarize every record
  aptscout summarize ads -o gpt`,
		Args: cobra.ExactArgs(1),
		RunE: runSummarizeCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Output file for a single record, or output directory for a directory (default: gpt)")
	cmd.Flags().StringP("prompt", "p", "", "Instruction prompt overriding the built-in one")
	cmd.Flags().String("prompt-file", "", "Read the instruction prompt from this file")
	cmd.Flags().StringP("model", "m", "", "Chat model (default: gpt-4o-mini)")
	cmd.Flags().BoolP("force", "f", false, "Regenerate existing summaries")

	return cmd
}

func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}
	prompt, err := promptFromFlags(cmd)
	if err != nil {
		return err
	}
	if flags.Changed("model") {
		if env.cfg.Model, err = flags.GetString("model"); err != nil {
			return err
		}
	}

	sumCfg := summarize.NewConfig(env.cfg.OpenAIAPIKey)
	sumCfg.BaseURL = env.cfg.OpenAIBaseURL
	sumCfg.Model = env.cfg.Model
	if prompt != "" {
		sumCfg.Prompt = prompt
	}
	client, err := summarize.NewClient(sumCfg, summarize.WithLogger(env.logger))
	if err != nil {
		return fmt.Errorf("failed to create summarizer: %w", err)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	target, err := env.cfg.Target()
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if !info.IsDir() {
		return summarizeFile(ctx, env, client, target, output, cmd.OutOrStdout())
	}
	if output == "" {
		output = env.cfg.SummaryDir
	}
	return summarizeDir(ctx, env, client, target, output, force)
}

func promptFromFlags(cmd *cobra.Command) (string, error) {
	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return "", err
	}
	promptFile, err := cmd.Flags().GetString("prompt-file")
	if err != nil {
		return "", err
	}
	if promptFile == "" {
		return prompt, nil
	}
	if prompt != "" {
		return "", fmt.Errorf("--prompt and --prompt-file cannot be used together")
	}
	data, err := os.ReadFile(filepath.Clean(promptFile))
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file: %w", err)
	}
	return string(data), nil
}

func summarizeFile(ctx context.Context, env *runtimeEnv, s summarize.Summarizer, path, output string, echo io.Writer) error {
	env.logger.Info("summarizing ad", "path", path)
	job := &pipeline.Job{InputPath: path, OutputPath: output}
	p := pipeline.NewSummarizePipeline(pipeline.SummarizeOptions{
		Summarizer: s,
		Echo:       echo,
		Force:      true,
		Logger:     env.logger,
	})
	return p.Execute(ctx, job)
}

func summarizeDir(ctx context.Context, env *runtimeEnv, s summarize.Summarizer, dir, outputDir string, force bool) error {
	files, err := pipeline.RecordFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		env.logger.Warn("no records to summarize", "dir", dir)
		return nil
	}

	opts := pipeline.SummarizeOptions{Summarizer: s, Force: force, Logger: env.logger}
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pipeline.NewSummarizePipeline(opts) },
		pipeline.WithConcurrency(env.cfg.Concurrency),
		pipeline.WithBatchLogger(env.logger),
	)
	result, err := bp.ProcessBatch(ctx, pipeline.SummarizeJobs(files, outputDir))
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		env.logger.Warn("some summaries failed", "failed", result.Failed, "total", result.Total)
	}
	return nil
}
