package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/watch"
)

func newWatchCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Fix files as they are saved",
		Long: `Fix every function file below the given directories (default: the
working directory), then keep watching and fix each file again after it
is written. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			roots := rootsOrCwd(args)
			fh := st.app.FileHost()

			results, err := fh.SyncAll(ctx, true, roots...)
			if err != nil {
				return err
			}

			w, err := st.app.Watcher()
			if err != nil {
				return err
			}
			defer w.Close()
			for _, root := range roots {
				if err := w.Add(root); err != nil {
					return fmt.Errorf("watching %s: %w", root, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s below %v\n",
				color.CyanString("watching"), plural(len(results), "file"), roots)

			return w.Run(ctx, watch.SyncHandler(fh, logging.WithComponent("watch")))
		},
	}
}
