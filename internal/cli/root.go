package cli

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JeevithaAnandhan/marksheetpro/internal/config"
	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
	"github.com/JeevithaAnandhan/marksheetpro/internal/processing"
	"github.com/JeevithaAnandhan/marksheetpro/internal/repository"
	"github.com/JeevithaAnandhan/marksheetpro/internal/service"
	"github.com/JeevithaAnandhan/marksheetpro/internal/session"
	"github.com/spf13/cobra"
)

// App holds the client, services and settings shared by CLI commands.
type App struct {
	Config   config.Config
	Client   *processing.Client
	Accounts service.AccountService
	History  service.HistoryService
	Attempts service.AttemptService

	// IsInteractive reports whether prompts and animations may be used.
	IsInteractive func() bool
	// Now is the clock used for relative timestamps.
	Now func() time.Time

	database  *sql.DB
	logWriter io.Writer
	logger    *slog.Logger
	observers []service.UseCaseObserver
}

// AppOption configures an App.
type AppOption func(*App)

// WithCallLog writes service calls and use-case events to w.
func WithCallLog(w io.Writer) AppOption {
	return func(a *App) { a.logWriter = w }
}

// WithInteractive overrides terminal detection.
func WithInteractive(fn func() bool) AppOption {
	return func(a *App) { a.IsInteractive = fn }
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) AppOption {
	return func(a *App) { a.Now = now }
}

// NewApp wires the processing client and the local stores for cfg.
func NewApp(cfg config.Config, database *sql.DB, opts ...AppOption) (*App, error) {
	app := &App{
		Config:        cfg,
		IsInteractive: func() bool { return false },
		Now:           time.Now,
		database:      database,
	}
	for _, opt := range opts {
		opt(app)
	}

	app.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if app.logWriter != nil {
		app.logger = slog.New(slog.NewTextHandler(app.logWriter, &slog.HandlerOptions{Level: slog.LevelInfo}))
		app.observers = []service.UseCaseObserver{service.NewLogUseCaseObserver(app.logWriter)}
	}

	if err := app.connect(cfg.Endpoint); err != nil {
		return nil, err
	}
	app.Attempts = service.NewAttemptService(repository.NewSQLiteAttemptRepo(database))
	return app, nil
}

// connect (re)builds the client and the services bound to it.
func (a *App) connect(endpoint string) error {
	var clientOpts []processing.Option
	if a.logWriter != nil {
		clientOpts = append(clientOpts, processing.WithObserver(processing.NewLogObserver(a.logWriter)))
	}
	client, err := processing.NewClient(processing.Config{
		Endpoint:      endpoint,
		Timeout:       a.Config.Timeout(),
		UploadTimeout: a.Config.UploadTimeout(),
	}, clientOpts...)
	if err != nil {
		return fmt.Errorf("configuring client: %w", err)
	}

	a.Config.Endpoint = endpoint
	a.Client = client
	a.Accounts = service.NewAccountService(client, repository.NewSQLiteCookieRepo(a.database), a.observers...)
	a.History = service.NewHistoryService(client, repository.NewSQLiteHistoryCacheRepo(a.database), db.NewSQLiteUnitOfWork(a.database), a.observers...)
	return nil
}

// NewController builds a session controller wired to the app's services.
func (a *App) NewController() *session.Controller {
	return session.New(session.Deps{
		Auth:     a.Accounts,
		Uploader: a.Client,
		Fetcher:  a.Client,
		History:  a.History,
		Recorder: a.Attempts,
	}, session.WithLogger(a.logger), session.WithClock(a.Now))
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "marksheet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var endpoint string

	root := &cobra.Command{
		Use:           "marksheet",
		Short:         "Extract marksheet records into spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("endpoint") && endpoint != app.Config.Endpoint {
				if err := app.connect(endpoint); err != nil {
					return err
				}
			}
			return app.Accounts.Restore(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&endpoint, "endpoint", app.Config.Endpoint, "Processing service base URL")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newTypesCmd(app),
		newProcessCmd(app),
		newHistoryCmd(app),
		newDownloadCmd(app),
		newAttemptsCmd(app),
		newUICmd(app),
	)

	return root
}

// Execute runs the root command against os.Args.
func Execute(app *App) error {
	root := NewRootCmd(app)
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	return root.Execute()
}
