// Package commands provides the CLI commands for mcmark.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dshills/mcmark/internal/app"
)

// Version information set at build time.
var (
	Version = "dev"
	Commit  = "unknown"
)

// ErrOutOfSync is returned by check when a file needs fixing.
var ErrOutOfSync = errors.New("markers out of sync")

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrOutOfSync):
		return 2
	default:
		return 1
	}
}

// state is shared by the commands of one tree.
type state struct {
	configPath string
	logLevel   string
	dir        string
	noColor    bool

	fs        afero.Fs
	logOutput io.Writer
	app       *app.App
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&state{})
}

func newRootCmd(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "mcmark",
		Short: "Keep macro markers in Minecraft function files in sync",
		Long: `mcmark maintains the "$" marker that Minecraft requires on function
commands using $(name) macro placeholders. It adds the marker where a
placeholder appears, removes it where none is left and shows which
commands are macro lines.

Run 'mcmark fix' to update files in place, 'mcmark check' in CI, or
'mcmark nvim' as a Neovim remote plugin for live updates while typing.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if st.noColor {
				color.NoColor = true
			}
			a, err := app.New(app.Options{
				ConfigPath: st.configPath,
				Dir:        st.dir,
				LogLevel:   st.logLevel,
				LogOutput:  st.logOutput,
				Fs:         st.fs,
			})
			if err != nil {
				return err
			}
			st.app = a
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&st.configPath, "config", "c", "", "Config file (default: mcmark.toml in the working directory)")
	flags.StringVar(&st.logLevel, "log-level", "", "Log level (debug|info|warn|error|off)")
	flags.StringVarP(&st.dir, "dir", "C", "", "Directory to search for config and .env files")
	flags.BoolVar(&st.noColor, "no-color", false, "Disable colored output")

	root.SetVersionTemplate(fmt.Sprintf("mcmark %s (%s)\n", Version, Commit))

	root.AddCommand(
		newFixCmd(st),
		newCheckCmd(st),
		newWatchCmd(st),
		newViewCmd(st),
		newNvimCmd(st),
		newLuaCmd(st),
		newVersionCmd(),
	)
	return root
}

// ExecuteContext runs the CLI with ctx.
func ExecuteContext(ctx context.Context) error {
	st := &state{}
	return execute(ctx, st, newRootCmd(st))
}

// execute runs root and then closes the app its commands opened. Cobra
// skips post-run hooks when a command fails, so the close happens here.
func execute(ctx context.Context, st *state, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if st.app != nil {
		if cerr := st.app.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		st.app = nil
	}
	return err
}

func rootsOrCwd(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}
	return args
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcmark %s\nCommit: %s\n", Version, Commit)
		},
	}
}
