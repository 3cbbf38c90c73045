// Package cli provides the storygoal command-line interface.
//
// Each subcommand maps to exactly one store operation, takes its fields as
// positional arguments, and prints the resulting snapshot to stdout. Errors
// go to stderr as "<Kind>: <message>" with a matching exit code.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HendryAvila/storygoal/internal/config"
	"github.com/HendryAvila/storygoal/internal/logging"
	"github.com/HendryAvila/storygoal/internal/store"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// streams are the process streams a command reads and writes. logs is
// where diagnostics go; nil picks stderr with TTY detection.
type streams struct {
	in   io.Reader
	out  io.Writer
	err  io.Writer
	logs io.Writer
}

// app holds everything a command needs once PersistentPreRunE has run.
type app struct {
	flags GlobalFlags
	io    streams
	info  BuildInfo
	v     *viper.Viper
	cfg   *config.Config
	log   *logging.Logger
	store *store.Store
}

// openStore opens the database on first use. Commands that never touch
// storage (version, help) never create the file.
func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.New(a.cfg.StoreConfig(), store.WithLogger(a.log.Logger))
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing store")
		}
		a.store = nil
	}
	if a.log != nil {
		_ = a.log.Close()
	}
}

// setup binds flags, loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := BindGlobalFlags(a.v, cmd); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if changed(cmd.Root().PersistentFlags(), "output") && !slices.Contains(config.OutputFormats(), a.flags.Output) {
		return newUsageError("--output %q must be one of %v", a.flags.Output, config.OutputFormats())
	}

	cfg, err := config.Load(a.v, a.flags.ConfigFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log, a.flags.Verbose, a.flags.Quiet, a.io.logs)
	a.log = log
	if err != nil {
		a.log.Warn().Err(err).Msg("log file disabled")
	}
	a.log.Debug().
		Str("command", cmd.CommandPath()).
		Str("db", cfg.StoreConfig().DBPath()).
		Str("output", cfg.Output).
		Msg("configuration loaded")
	return nil
}

// newRootCmd creates the root command with every subcommand attached.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storygoal",
		Short: "Track goals and user stories per workspace",
		Long: `storygoal records goals (desired outcomes) and user stories
("as a ... I want ... so that ...") inside isolated workspaces.

Every command takes the workspace key as its first argument. Results are
printed to stdout as JSON unless --output selects yaml or text. The same
operations are available to coding assistants through "storygoal serve".`,
		Version: formatVersion(a.info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(flagError)
	cmd.SetIn(a.io.in)
	cmd.SetOut(a.io.out)
	cmd.SetErr(a.io.err)

	AddGlobalFlags(cmd, &a.flags)

	addWorkspaceCommands(cmd, a)
	addGoalCommands(cmd, a)
	addStoryCommands(cmd, a)
	addTransferCommands(cmd, a)
	addServeCommand(cmd, a)
	addVersionCommand(cmd, a)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// run executes args against the given streams and returns the exit code.
func run(ctx context.Context, info BuildInfo, args []string, s streams) int {
	a := &app{io: s, info: info, v: config.NewViper(), log: logging.Nop()}
	defer a.close()

	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	kind, msg := describeError(err)
	fmt.Fprintf(s.err, "%s: %s\n", kind, msg)
	return ExitCodeForError(err)
}

// Execute runs the CLI against the process streams and returns the exit code.
func Execute(ctx context.Context, info BuildInfo) int {
	return run(ctx, info, os.Args[1:], streams{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
	})
}
