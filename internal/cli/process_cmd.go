package cli

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/JeevithaAnandhan/marksheetpro/internal/cli/formatter"
	"github.com/JeevithaAnandhan/marksheetpro/internal/domain"
	"github.com/JeevithaAnandhan/marksheetpro/internal/fileinfo"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/service"
	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTypesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported marksheet types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTypes(domain.Catalog()))
			return nil
		},
	}
}

func newProcessCmd(app *App) *cobra.Command {
	var mtype marksheetTypeValue
	var outDir string
	var parallel int

	cmd := &cobra.Command{
		Use:   "process --type TYPE FILE...",
		Short: "Upload marksheets and extract their records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.MarksheetType(mtype)
			files, err := fileinfo.InspectAll(args)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("parallel") {
				parallel = app.Config.Parallel
			}

			var finished atomic.Int32
			spin := formatter.NewSpinner(cmd.ErrOrStderr(), fmt.Sprintf("Processing %d file(s)…", len(files)))
			if app.interactive() {
				spin.Start()
			}
			batch := service.NewBatchProcessor(app.NewController, app.observers...)
			results := batch.Run(cmd.Context(), t, files, service.BatchOptions{
				Parallel: parallel,
				OutDir:   outDir,
				OnResult: func(service.BatchResult) {
					spin.SetMessage(fmt.Sprintf("Processed %d of %d…", finished.Add(1), len(files)))
				},
			})
			if app.interactive() {
				spin.Stop()
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprint(out, formatter.FormatFailed(r.File.Name, failureMessage(r.Err)))
					continue
				}
				fmt.Fprint(out, formatter.FormatProcessed(r.File, r.Result.RecordsCount, r.Result.DownloadURL, r.SavedPath))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().VarP(&mtype, "type", "t", "Marksheet type (10th, 12th, semester)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Download processed spreadsheets into this directory")
	cmd.Flags().IntVarP(&parallel, "parallel", "j", 1, "Concurrent uploads")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// marksheetTypeValue is a flag value that only accepts catalog types.
type marksheetTypeValue string

var _ pflag.Value = (*marksheetTypeValue)(nil)

func (v *marksheetTypeValue) String() string { return string(*v) }

func (v *marksheetTypeValue) Set(s string) error {
	t, err := domain.ParseMarksheetType(s)
	if err != nil {
		return err
	}
	*v = marksheetTypeValue(t)
	return nil
}

func (v *marksheetTypeValue) Type() string { return "type" }

// failureMessage picks the text shown for a failed file.
func failureMessage(err error) string {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		return errLoggedOut.Error()
	case errors.As(err, &verr):
		return verr.Error()
	default:
		return processing.UserMessage(err)
	}
}
