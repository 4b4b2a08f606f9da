package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/aptscout/internal/normalize"
)

// NewPrettifyCmd creates the prettify command.
func NewPrettifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prettify <dir | file>",
		Short: "Re-indent JSON files in place",
		Long: `Prettify rewrites JSON files with two-space indentation, keeping key order.

With a directory, every *.json file in it is rewritten; files that are not
valid JSON are logged and left alone.

Examples:
  aptscout prettify ads
  aptscout prettify gpt/0.ai.json`,
		Args: cobra.ExactArgs(1),
		RunE: runPrettifyCmd,
	}
}

func runPrettifyCmd(cmd *cobra.Command, args []string) error {
	env, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	target, err := env.cfg.Target()
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if !info.IsDir() {
		return normalize.PrettifyFile(target)
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	n, err := normalize.PrettifyDir(ctx, target, env.logger)
	if err != nil {
		return err
	}
	env.logger.Info("json files prettified", "dir", target, "count", n)
	return nil
}
