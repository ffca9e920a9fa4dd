package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/mcmark/internal/host/filehost"
)

func newFixCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "fix [path...]",
		Short: "Add and remove markers in place",
		Long: `Sweep every function file below the given paths (default: the working
directory) and rewrite the files whose markers are out of date.

Examples:
  mcmark fix
  mcmark fix data/pack/function/tick.mcfunction`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := st.app.FileHost().SyncAll(cmd.Context(), true, rootsOrCwd(args)...)

			out := cmd.OutOrStdout()
			fixed := 0
			for _, res := range results {
				if !res.Written {
					continue
				}
				fixed++
				fmt.Fprintf(out, "%s %s (%s)\n", color.GreenString("fixed"), res.Path, plural(res.Edits, "edit"))
			}
			fmt.Fprintf(out, "%s checked, %s fixed\n", plural(len(results), "file"), plural(fixed, "file"))
			return err
		},
	}
}

func newCheckCmd(st *state) *cobra.Command {
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report files whose markers are out of date",
		Long: `Sweep every function file below the given paths without writing.
Exits with status 2 when any file needs 'mcmark fix'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := st.app.FileHost().SyncAll(cmd.Context(), false, rootsOrCwd(args)...)

			out := cmd.OutOrStdout()
			stale := 0
			for _, res := range results {
				if !res.Changed() {
					continue
				}
				stale++
				fmt.Fprintf(out, "%s %s (%s)\n", color.RedString("out of sync"), res.Path, plural(res.Edits, "line"))
				if showDiff {
					writeDiff(out, res)
				}
			}
			if err != nil {
				return err
			}
			if stale > 0 {
				return fmt.Errorf("%w: %s", ErrOutOfSync, plural(stale, "file"))
			}
			fmt.Fprintf(out, "%s ok\n", plural(len(results), "file"))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showDiff, "diff", "d", false, "Show the changes fix would make")
	return cmd
}

func writeDiff(out io.Writer, res *filehost.Result) {
	for _, line := range strings.SplitAfter(res.Diff(), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(out, color.New(color.Bold).Sprint(line))
		case strings.HasPrefix(line, "@@"):
			fmt.Fprint(out, color.CyanString("%s", line))
		case strings.HasPrefix(line, "+"):
			fmt.Fprint(out, color.GreenString("%s", line))
		case strings.HasPrefix(line, "-"):
			fmt.Fprint(out, color.RedString("%s", line))
		default:
			fmt.Fprint(out, line)
		}
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
