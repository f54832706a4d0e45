package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwebster45206/survival-kitchen/internal/config"
	"github.com/jwebster45206/survival-kitchen/internal/logger"
	"github.com/jwebster45206/survival-kitchen/pkg/catalog"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

type options struct {
	catalogPath string
	seed        int64
	apiURL      string
	logFile     string
	verbose     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "console",
		Short:         "Survival Kitchen in the terminal",
		Long:          "Survive the last stretch of grad school: shop, cook and sleep your way to graduation.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "catalog file (built-in catalog when empty)")
	root.PersistentFlags().Int64Var(&opts.seed, "seed", 0, "random seed (random when 0)")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "play against a running API instead of in-process, e.g. http://localhost:8080")

	root.AddCommand(newPlayCmd(opts), newAutoplayCmd(opts))
	return root
}

func newPlayCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			logFile, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer func() {
				_ = logFile.Close()
			}()

			game, err := newGame(opts, logFile)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewConsoleUI(game),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.logFile, "log-file", filepath.Join(os.TempDir(), "survival-kitchen.log"), "where to write logs")
	return cmd
}

func newAutoplayCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autoplay",
		Short: "Play a whole game headlessly with a simple policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			var logOut io.Writer = io.Discard
			if opts.verbose {
				logOut = cmd.ErrOrStderr()
			}
			game, err := newGame(opts, logOut)
			if err != nil {
				return err
			}

			gs, steps, err := autoplay(cmd.Context(), game)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(gs.Prompt.Title))
			fmt.Fprintln(out, gs.Prompt.Text)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Outcome: %s after %d commands (day %d of %d)\n", gs.Progress.Outcome, steps, gs.Progress.Day, gs.TotalDays)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")
	return cmd
}

// newGame builds a local or remote game from the flags.
func newGame(opts *options, logOut io.Writer) (Game, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.SetupWriter(cfg, logOut)

	if opts.apiURL != "" {
		return newRemoteGame(opts, log)
	}

	cat := catalog.Default()
	if opts.catalogPath != "" {
		cat, err = catalog.Load(opts.catalogPath)
		if err != nil {
			return nil, err
		}
	}
	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("Starting local game", "catalog", cat.Name, "seed", seed)
	return newLocalGame(cat, seed, log), nil
}

// newRemoteGame talks to the API. The catalog flag names a file on the
// server; a local copy, when present, is used to parse typed commands.
func newRemoteGame(opts *options, log *slog.Logger) (Game, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	if !testConnection(client, opts.apiURL) {
		return nil, errors.New("could not connect to API, please ensure it is running (try: docker-compose up -d)")
	}

	cat := catalog.Default()
	if opts.catalogPath != "" {
		local, err := catalog.Load(opts.catalogPath)
		switch {
		case err == nil:
			cat = local
		case errors.Is(err, fs.ErrNotExist):
			log.Debug("No local copy of catalog, parsing with the built-in one", "catalog", opts.catalogPath)
		default:
			return nil, err
		}
	}
	log.Info("Starting remote game", "api", opts.apiURL, "catalog", opts.catalogPath)
	return newAPIGame(client, opts.apiURL, opts.catalogPath, opts.seed, cat), nil
}

