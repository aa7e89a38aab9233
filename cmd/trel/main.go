package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	charmLog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/trel/internal/app"
	"github.com/evanschultz/trel/internal/config"
	"github.com/evanschultz/trel/internal/domain"
	"github.com/evanschultz/trel/internal/platform"
	"github.com/evanschultz/trel/internal/report"
	"github.com/evanschultz/trel/internal/trello"
	"github.com/evanschultz/trel/internal/tui"
)

const appName = "trel"

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := fang.Execute(context.Background(), root); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flag values shared by every command.
type rootOptions struct {
	envFile       string
	configPath    string
	apiKey        string
	token         string
	includeClosed bool
	devMode       bool
}

// runtimeEnv bundles everything a command needs after startup resolution.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Fetch Trello boards and tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to a .env file (defaults to ./.env when present)")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml (defaults to the platform config dir)")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "Trello API key (or set TRELLO_API_KEY)")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "Trello token (or set TRELLO_TOKEN)")
	root.PersistentFlags().BoolVar(&opts.includeClosed, "include-closed", false, "include closed boards, lists, and cards")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", false, "dev mode: separate config dir and optional file logging")

	root.AddCommand(
		newTasksCmd(opts, stdout, stderr),
		newBoardsCmd(opts, stdout, stderr),
		newLinkBoardCmd(opts, stdout),
		newUnlinkBoardCmd(opts, stdout),
		newShowBoardsCmd(opts, stdout),
		newPathsCmd(opts, stdout),
	)
	return root
}

// setup resolves paths, dotenv files, config, and the runtime logger. Every
// command goes through here before touching the network.
func setup(opts *rootOptions, stderr io.Writer) (*runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: appName, DevMode: opts.devMode})
	if err != nil {
		return nil, fmt.Errorf("resolve platform paths: %w", err)
	}

	if err := config.LoadDotenv(opts.envFile, paths.EnvPath); err != nil {
		return nil, err
	}

	configPath := opts.configPath
	if configPath == "" {
		configPath = paths.ConfigPath
	}
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := newRuntimeLogger(stderr, appName, opts.devMode, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	logger.Debug("startup configuration resolved", "config_path", configPath, "dev_mode", opts.devMode)

	return &runtimeEnv{paths: paths, configPath: configPath, cfg: cfg, logger: logger}, nil
}

// newService builds the fetch service; it fails fast when no credential
// pair can be resolved.
func newService(env *runtimeEnv, opts *rootOptions) (*app.Service, error) {
	creds, err := config.ResolveCredentials(opts.apiKey, opts.token)
	if err != nil {
		return nil, err
	}
	client := trello.NewClient(creds.APIKey, creds.Token,
		trello.WithBaseURL(env.cfg.API.BaseURL),
		trello.WithLogger(env.logger.clientLogger()),
	)
	return app.NewService(client), nil
}

func includeClosed(env *runtimeEnv, opts *rootOptions) bool {
	return opts.includeClosed || env.cfg.Defaults.IncludeClosed
}

func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	env, err := setup(opts, stderr)
	if err != nil {
		return err
	}
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink
	// while the UI owns the terminal.
	env.logger.SetConsoleEnabled(false)
	defer closeLogger(env.logger, stderr)

	svc, err := newService(env, opts)
	if err != nil {
		return err
	}

	env.logger.Info("command flow start", "command", "tui")
	m := tui.NewModel(svc,
		tui.WithIncludeClosed(includeClosed(env, opts)),
		tui.WithBoardRoots(env.cfg.BoardRoots),
	)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		env.logger.Error("command flow failed", "command", "tui", "err", err)
		return fmt.Errorf("run ui: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

func newTasksCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		boardID     string
		listID      string
		format      string
		outPath     string
		includeDesc bool
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Fetch tasks for a board or a single list",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, stderr)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, stderr)

			board := config.ResolveID(boardID, config.EnvBoardID, env.cfg.Defaults.BoardID)
			list := config.ResolveID(listID, config.EnvListID, env.cfg.Defaults.ListID)
			if boardID != "" && listID != "" {
				return errors.New("--board and --list are mutually exclusive")
			}
			if board == "" && list == "" {
				return errors.New("a board or list is required: set --board/--list, TRELLO_BOARD_ID/TRELLO_LIST_ID, or a config default")
			}

			fmtValue := format
			if fmtValue == "" {
				fmtValue = env.cfg.Defaults.Format
			}
			outputFormat, err := report.ParseFormat(fmtValue)
			if err != nil {
				return err
			}

			svc, err := newService(env, opts)
			if err != nil {
				return err
			}

			withClosed := includeClosed(env, opts)
			ctx := cmd.Context()

			var tasks []domain.Task
			boardRoot := ""
			if listID != "" || (board == "" && list != "") {
				env.logger.Info("command flow start", "command", "tasks", "list", list)
				tasks, err = svc.FetchCardsForList(ctx, list, withClosed)
			} else {
				env.logger.Info("command flow start", "command", "tasks", "board", board)
				tasks, err = svc.FetchCardsForBoard(ctx, board, withClosed)
				boardRoot = env.cfg.BoardRoots[board]
			}
			if err != nil {
				env.logger.Error("command flow failed", "command", "tasks", "err", err)
				return err
			}

			w, closeOut, err := openOutput(stdout, outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			renderOpts := report.TaskOptions{
				IncludeDesc: includeDesc || env.cfg.Defaults.IncludeDesc,
				BoardRoot:   boardRoot,
			}
			if err := report.WriteTasks(w, tasks, outputFormat, renderOpts); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			env.logger.Info("command flow complete", "command", "tasks", "count", len(tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&boardID, "board", "", "board id (or set TRELLO_BOARD_ID)")
	cmd.Flags().StringVar(&listID, "list", "", "list id (or set TRELLO_LIST_ID)")
	cmd.Flags().StringVar(&format, "format", "", "output format: text or json")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&includeDesc, "include-desc", false, "include card descriptions in text output")
	return cmd
}

func newBoardsCmd(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		format  string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List boards visible to the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, stderr)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, stderr)

			fmtValue := format
			if fmtValue == "" {
				fmtValue = env.cfg.Defaults.Format
			}
			outputFormat, err := report.ParseFormat(fmtValue)
			if err != nil {
				return err
			}

			svc, err := newService(env, opts)
			if err != nil {
				return err
			}

			env.logger.Info("command flow start", "command", "boards")
			boards, err := svc.FetchMyBoards(cmd.Context(), includeClosed(env, opts))
			if err != nil {
				env.logger.Error("command flow failed", "command", "boards", "err", err)
				return err
			}

			w, closeOut, err := openOutput(stdout, outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			linked := make(map[string]bool, len(env.cfg.BoardRoots))
			for id := range env.cfg.BoardRoots {
				linked[id] = true
			}
			if err := report.WriteBoards(w, boards, outputFormat, report.BoardOptions{Linked: linked}); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			env.logger.Info("command flow complete", "command", "boards", "count", len(boards))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "output format: text or json")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to a file instead of stdout")
	return cmd
}

func newLinkBoardCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "link-board <board-id>",
		Short: "Link a board to a local repository path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, io.Discard)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, io.Discard)
			cfg, err := config.UpsertBoardRoot(env.configPath, env.cfg, args[0], path)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "linked %s -> %s\n", args[0], cfg.BoardRoots[strings.TrimSpace(args[0])])
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "local repository path for the board")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func newUnlinkBoardCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink-board <board-id>",
		Short: "Remove a board's local repository link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, io.Discard)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, io.Discard)
			if _, err := config.RemoveBoardRoot(env.configPath, env.cfg, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "unlinked %s\n", strings.TrimSpace(args[0]))
			return nil
		},
	}
}

func newShowBoardsCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "show-boards",
		Short: "Show configured board links",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, io.Discard)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, io.Discard)
			if len(env.cfg.BoardRoots) == 0 {
				fmt.Fprintln(stdout, "no boards linked")
				return nil
			}
			for _, id := range sortedKeys(env.cfg.BoardRoots) {
				fmt.Fprintf(stdout, "%s -> %s\n", id, env.cfg.BoardRoots[id])
			}
			return nil
		},
	}
}

func newPathsCmd(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the resolved config and dotenv paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(opts, io.Discard)
			if err != nil {
				return err
			}
			defer closeLogger(env.logger, io.Discard)
			fmt.Fprintf(stdout, "config: %s\n", env.configPath)
			fmt.Fprintf(stdout, "env:    %s\n", env.paths.EnvPath)
			return nil
		},
	}
}

// openOutput returns the report writer: stdout, or the --out file.
func openOutput(stdout io.Writer, outPath string) (io.Writer, func(), error) {
	if strings.TrimSpace(outPath) == "" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func closeLogger(logger *runtimeLogger, stderr io.Writer) {
	if closeErr := logger.Close(); closeErr != nil && logger.consoleEnabled {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// runtimeLogger fans log events to a styled console sink and an optional
// dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig) (*runtimeLogger, error) {
	if strings.TrimSpace(cfg.Level) == "" {
		cfg.Level = "info"
	}
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile.Enabled {
		return logger, nil
	}

	logFile, err := os.OpenFile(cfg.DevFile.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = cfg.DevFile.Path
	return logger, nil
}

// clientLogger returns the sink handed to the HTTP client for per-request
// debug lines. The dev-file sink is preferred so TUI runs stay quiet.
func (l *runtimeLogger) clientLogger() *charmLog.Logger {
	if l == nil || len(l.sinks) == 0 {
		return charmLog.New(io.Discard)
	}
	if len(l.sinks) > 1 {
		return l.sinks[len(l.sinks)-1]
	}
	if l.consoleEnabled {
		return l.consoleSink
	}
	return charmLog.New(io.Discard)
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil || sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	l.log(func(sink *charmLog.Logger) { sink.Debug(msg, keyvals...) })
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	l.log(func(sink *charmLog.Logger) { sink.Info(msg, keyvals...) })
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	l.log(func(sink *charmLog.Logger) { sink.Warn(msg, keyvals...) })
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	l.log(func(sink *charmLog.Logger) { sink.Error(msg, keyvals...) })
}

func (l *runtimeLogger) log(emit func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		emit(sink)
	}
}
