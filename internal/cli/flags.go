package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/HendryAvila/storygoal/internal/config"
	"github.com/HendryAvila/storygoal/internal/store"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitError indicates a storage, configuration or other failure.
	ExitError = 1
	// ExitInvalidInput indicates bad arguments, flags or field values.
	ExitInvalidInput = 2
	// ExitNotFound indicates a missing story, goal or workspace.
	ExitNotFound = 3
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// DBPath overrides the database location.
	DBPath string
	// Output is json, yaml or text.
	Output string
	// ConfigFile is an explicit config file merged over the global one.
	ConfigFile string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet limits logging to errors.
	Quiet bool
}

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.DBPath, "db", "", "database file (default $STORYGOAL_HOME/story_goals.db)")
	pf.StringVarP(&flags.Output, "output", "o", config.OutputJSON,
		"output format ("+strings.Join(config.OutputFormats(), "|")+")")
	pf.StringVar(&flags.ConfigFile, "config", "", "config file merged over ~/.storygoal/config.yaml")
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging on stderr")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "log errors only")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds the flags that double as config keys. A flag only
// overrides file and environment values when it is set explicitly.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	rootFlags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		"db_path": "db",
		"output":  "output",
	} {
		if err := v.BindPFlag(key, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// ─── Errors ──────────────────────────────────────────────────────────────────

// usageError marks a problem with how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// flagError is installed as the root FlagErrorFunc.
func flagError(_ *cobra.Command, err error) error {
	return &usageError{err: err}
}

// cobraUsagePrefixes match errors cobra raises before any command runs.
var cobraUsagePrefixes = []string{
	"unknown command",
	"unknown flag",
	"unknown shorthand flag",
	"if any flags in the group",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError maps an error to the process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ue *usageError
	if errors.As(err, &ue) {
		return ExitInvalidInput
	}
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return ExitInvalidInput
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrReferenceNotFound),
		errors.Is(err, store.ErrWorkspaceNotFound):
		return ExitNotFound
	}
	if isCobraUsageError(err) {
		return ExitInvalidInput
	}
	return ExitError
}

func isCobraUsageError(err error) bool {
	msg := err.Error()
	return slices.ContainsFunc(cobraUsagePrefixes, func(p string) bool {
		return strings.HasPrefix(msg, p)
	})
}

// describeError splits err into the kind and message printed on stderr.
func describeError(err error) (kind, message string) {
	var se *store.Error
	if errors.As(err, &se) {
		return store.KindOf(err), store.MessageOf(err)
	}
	var ue *usageError
	if errors.As(err, &ue) || isCobraUsageError(err) {
		return store.ErrInvalidInput.Error(), err.Error()
	}
	return "Error", err.Error()
}

// positional validates the argument count and reports failures as usage
// errors naming the expected arguments.
func positional(min, max int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || (max >= 0 && len(args) > max) {
			return newUsageError("%s expects %s, got %d argument(s)", cmd.Name(), usage, len(args))
		}
		return nil
	}
}

// optionalArg returns args[i] or "" when it was not supplied.
func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// changed reports whether a local flag was set on the command line.
func changed(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	return f != nil && f.Changed
}
