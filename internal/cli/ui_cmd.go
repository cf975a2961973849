package cli

import (
	"errors"

	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive upload screen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("ui needs an interactive terminal; use `marksheet process` instead")
			}
			ctx := cmd.Context()
			ctrl := app.NewController()

			p := tea.NewProgram(newUploadModel(ctx, app, ctrl),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			// Controller calls only happen inside Cmds, so Send never runs on
			// the program loop.
			unsubscribe := ctrl.Subscribe(func(e session.Event) {
				p.Send(controllerEventMsg{Event: e})
			})

			_, err := p.Run()
			unsubscribe()
			ctrl.Wait()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
