package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JeevithaAnandhan/marksheetpro/internal/cli/formatter"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/service"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previously processed marksheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !cached {
				stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching history…", app.interactive())
				entries, err := app.History.Refresh(ctx)
				stop()
				if err == nil {
					fmt.Fprint(out, formatter.FormatHistory(entries, nil, app.Now()))
					return nil
				}
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleYellow.Render("Could not refresh history: "+processing.UserMessage(err)))
				if entries != nil {
					// Fetched fine, only the local cache write failed.
					fmt.Fprint(out, formatter.FormatHistory(entries, nil, app.Now()))
					return nil
				}
			}

			entries, fetchedAt, err := app.History.Cached(ctx)
			if err != nil {
				return fmt.Errorf("reading cached history: %w", err)
			}
			if fetchedAt == nil && !cached {
				return fmt.Errorf("no cached history available")
			}
			fmt.Fprint(out, formatter.FormatHistory(entries, fetchedAt, app.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Show the locally cached listing without contacting the service")

	return cmd
}

func newDownloadCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "download PROCESSED_FILENAME",
		Short: "Download a processed spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := args[0]
			if outDir == "" {
				outDir = app.Config.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			target := filepath.Join(outDir, service.ArtifactName(ref, ref))

			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Downloading…", app.interactive())
			n, err := app.Client.Download(cmd.Context(), ref, f)
			stop()
			if err != nil {
				f.Close()
				os.Remove(target)
				return fmt.Errorf("download: %s", processing.UserMessage(err))
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("writing %s: %w", target, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s %s\n", formatter.StyleGreen.Render("✔"), target, formatter.Dim("("+formatter.Bytes(n)+")"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to save into (default from config)")

	return cmd
}

func newAttemptsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "attempts",
		Short: "Show the local log of submissions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			attempts, err := app.Attempts.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAttempts(attempts, app.Now()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum attempts to show (0 for all)")

	return cmd
}
