package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/TINANOROUZI/24hr-stories/internal/domain"
	"github.com/TINANOROUZI/24hr-stories/internal/media"
	"github.com/TINANOROUZI/24hr-stories/internal/playback"
	"github.com/TINANOROUZI/24hr-stories/internal/tui"
	"github.com/TINANOROUZI/24hr-stories/pkg/formatter"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func init() {
	addCmd := &cobra.Command{
		Use:   "add PATH...",
		Short: "Add images or videos as new stories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), []fx.Option{withPrinter}, func(ctx context.Context, e env) error {
				var files []domain.File
				for _, path := range args {
					f, err := domain.FileFromPath(path)
					if err != nil {
						fmt.Fprintln(os.Stderr, err)
						continue
					}
					files = append(files, f)
				}
				res := e.ctrl.AddFiles(ctx, files)
				printBatch(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	rootCmd.AddCommand(addCmd)

	var archive bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List active stories, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, archive)
		},
	}
	listCmd.Flags().BoolVarP(&archive, "archive", "a", false, "List the archive instead")
	rootCmd.AddCommand(listCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "archive",
		Short: "List archived stories, most recently archived first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, true)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Move stories older than the retention window to the archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), []fx.Option{withPrinter}, func(ctx context.Context, e env) error {
				if _, err := e.ctrl.Sweep(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s active, %s archived\n",
					formatter.FormatNumber(len(e.ctrl.Items(domain.Active))),
					formatter.FormatNumber(len(e.ctrl.Items(domain.Archive))))
				return nil
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a story from either collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), []fx.Option{withPrinter}, func(ctx context.Context, e env) error {
				if err := e.ctrl.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "view",
		Short: "Browse stories in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			player := fx.Provide(fx.Annotate(tui.NewPlayer, fx.As(new(playback.Player))))
			return withApp(cmd.Context(), []fx.Option{player}, func(ctx context.Context, e env) error {
				ctx, cancel := context.WithCancel(ctx)
				defer cancel()

				if err := e.scheduler.ScheduleSweep(ctx, e.cfg.Story.SweepInterval); err != nil {
					return err
				}
				return tui.Run(ctx, e.ctrl, e.clock, e.cfg.Story.Retention, e.log)
			})
		},
	})
}

func runList(cmd *cobra.Command, archive bool) error {
	return withApp(cmd.Context(), []fx.Option{withPrinter}, func(ctx context.Context, e env) error {
		coll := domain.Active
		if archive {
			coll = domain.Archive
		}
		items := e.ctrl.Items(coll)
		if len(items) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no %s stories\n", coll)
			return nil
		}

		now := e.clock.Now()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSIZE\tADDED\tSTATUS")
		for _, item := range items {
			status := formatter.FormatRemaining(item.CreatedAt, e.cfg.Story.Retention, now)
			if item.IsArchived() {
				status = "archived " + formatter.FormatAge(*item.ArchivedAt, now)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				item.ID, item.Kind, formatter.FormatBytes(media.PayloadSize(item.Data)),
				formatter.FormatAge(item.CreatedAt, now), status)
		}
		return w.Flush()
	})
}

func printBatch(w io.Writer, res media.BatchResult) {
	for _, item := range res.Items {
		fmt.Fprintf(w, "added %s (%s, %s)\n", item.ID, item.Kind, formatter.FormatBytes(media.PayloadSize(item.Data)))
	}
	for _, name := range res.Skipped {
		fmt.Fprintf(w, "skipped %s: not an image or video\n", name)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "failed %s: %v\n", f.Name, f.Err)
	}
}
