package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"status-sentiment/internal/app"
	"status-sentiment/internal/config"
	"status-sentiment/internal/logging"
)

type options struct {
	configPath string
	userID     string
	asJSON     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "statusctl",
		Short:         "Classify status sentiment and manage history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yml", "Path to the YAML config")
	rootCmd.PersistentFlags().StringVarP(&opts.userID, "user", "u", "local:cli", "History user id")
	rootCmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "Print JSON instead of text")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newRecordCmd(opts),
		newHistoryCmd(opts),
		newPurgeCmd(opts),
		newSummaryCmd(opts),
		newKeygenCmd(),
	)

	return rootCmd
}

// withApp bootstraps the application for one command and tears it down after.
func withApp(cmd *cobra.Command, opts *options, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.Bootstrap(cfg, logger)
	if err != nil {
		logger.Error("Failed to bootstrap", zap.Error(err))
		return err
	}
	defer a.Close()

	return fn(cmd.Context(), a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var errNoText = errors.New("status text is required")

func joinArgs(args []string) (string, error) {
	if len(args) == 0 {
		return "", errNoText
	}
	text := args[0]
	for _, a := range args[1:] {
		text += " " + a
	}
	return text, nil
}

func fprintLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintf(w, "  - %s\n", l)
	}
}
