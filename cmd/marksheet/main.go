package main

import (
	"fmt"
	"io"
	"os"

	"github.com/JeevithaAnandhan/marksheetpro/internal/cli"
	"github.com/JeevithaAnandhan/marksheetpro/internal/config"
	"github.com/JeevithaAnandhan/marksheetpro/internal/db"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var callLog io.Writer
	if cfg.LogCalls {
		callLog = os.Stderr
	}

	app, err := cli.NewApp(cfg, database,
		cli.WithCallLog(callLog),
		// Prompts and the ui screen need a terminal on both ends.
		cli.WithInteractive(func() bool {
			return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
		}),
	)
	if err != nil {
		return err
	}

	return cli.Execute(app)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
