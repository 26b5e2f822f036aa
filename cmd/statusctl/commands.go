package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"status-sentiment/internal/app"
	"status-sentiment/internal/crypto"
	"status-sentiment/internal/sentiment"
)

func newClassifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify a status without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := joinArgs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				result, err := a.Statuses.Classify(ctx, opts.userID, text)
				if err != nil {
					return explain(err)
				}
				out := cmd.OutOrStdout()
				if opts.asJSON {
					return printJSON(out, result)
				}
				fmt.Fprintf(out, "%s (%.2f%%)\n", result.Label, result.Confidence)
				fprintLines(out, a.Statuses.Recommendations(result.Label))
				return nil
			})
		},
	}
}

func newRecordCmd(opts *options) *cobra.Command {
	var label string
	var confidence float64

	cmd := &cobra.Command{
		Use:   "record <text...>",
		Short: "Classify and store a status, or store a given result with --label",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := joinArgs(args)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				out := cmd.OutOrStdout()
				if label != "" {
					entry, err := a.Statuses.RecordResult(ctx, opts.userID, text, label, confidence)
					if err != nil {
						return err
					}
					if opts.asJSON {
						return printJSON(out, entry)
					}
					fmt.Fprintf(out, "#%d %s %s (%.2f%%)\n", entry.ID, entry.Date, entry.Label, entry.Confidence)
					return nil
				}

				res, err := a.Statuses.Analyze(ctx, opts.userID, text)
				if err != nil {
					return explain(err)
				}
				if opts.asJSON {
					return printJSON(out, res)
				}
				fmt.Fprintf(out, "#%d %s %s (%.2f%%)\n", res.Entry.ID, res.Entry.Date, res.Entry.Label, res.Entry.Confidence)
				fprintLines(out, res.Recommendations)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Store this label instead of classifying")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence stored with --label")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List stored statuses, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				entries, err := a.Statuses.ListHistory(ctx, opts.userID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.asJSON {
					return printJSON(out, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "no history")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tLABEL\tCONFIDENCE\tTEXT")
				for _, e := range entries {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", e.ID, e.Date, e.Label, e.Confidence, e.Text)
				}
				return tw.Flush()
			})
		},
	}
}

func newPurgeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete every stored status of the user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				deleted, err := a.Statuses.ClearHistory(ctx, opts.userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d statuses\n", deleted)
				return nil
			})
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show counts per label and per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				summary, err := a.Statuses.Summary(ctx, opts.userID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if opts.asJSON {
					return printJSON(out, summary)
				}
				fmt.Fprintf(out, "total %d, mean confidence %.2f%%\n", summary.Total, summary.MeanConfidence)
				for _, lc := range summary.ByLabel {
					fmt.Fprintf(out, "  %-10s %d (%.2f%%)\n", lc.Label, lc.Count, lc.MeanConfidence)
				}
				if len(summary.Daily) == 0 {
					return nil
				}

				fmt.Fprintln(out, "daily:")
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				for _, dc := range summary.Daily {
					fmt.Fprintf(tw, "  %s\t%s\t%d\n", dc.Date, dc.Label, dc.Count)
				}
				return tw.Flush()
			})
		},
	}
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new storage.encryption_key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func explain(err error) error {
	var rejection *sentiment.Rejection
	if errors.As(err, &rejection) {
		return fmt.Errorf("status too short: write at least %d words", rejection.MinWords)
	}
	return err
}
