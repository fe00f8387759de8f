package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tasktracker/internal/config"
	"tasktracker/internal/storage"
	"tasktracker/internal/storage/local"
	"tasktracker/internal/storage/sqlite"
)

const (
	Version = "1.0.0"
	appName = "todo"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the resolved configuration between cobra commands.
type app struct {
	configPath string
	dotenv     string
	local      bool
	dbPath     string
	localPath  string
	logLevel   string

	cfg *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Task tracker with categories, priorities, due dates and tags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&a.dotenv, "env-file", ".env", "Dotenv file loaded before reading TODO_* variables")
	flags.BoolVar(&a.local, "local", false, "Use the local JSON snapshot instead of SQLite")
	flags.StringVar(&a.dbPath, "db", "", "Path to sqlite database file")
	flags.StringVar(&a.localPath, "local-path", "", "Path to the local JSON snapshot")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(a),
		taskCmd(a),
		categoryCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// load resolves defaults < YAML < .env/env < flags.
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, a.dotenv)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("local") && a.local {
		cfg.Storage = config.StorageLocal
	}
	if flags.Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if flags.Changed("local-path") {
		cfg.LocalPath = a.localPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// openRepository opens the configured backend.
func (a *app) openRepository(logger *slog.Logger) (storage.Repository, error) {
	switch a.cfg.Storage {
	case config.StorageLocal:
		return local.Open(a.cfg.LocalPath, logger)
	default:
		return sqlite.Open(a.cfg.DBPath, logger)
	}
}

func (a *app) logger(w io.Writer) (*slog.Logger, error) {
	return a.cfg.NewLogger(w)
}
