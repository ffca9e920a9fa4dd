package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/mcmark/internal/engine/buffer"
	"github.com/dshills/mcmark/internal/host/filehost"
	"github.com/dshills/mcmark/internal/logging"
	"github.com/dshills/mcmark/internal/render"
)

func newViewCmd(st *state) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Preview a file with its markers highlighted",
		Long: `Show FILE in the terminal with macro commands marked by a bar in the
gutter. The preview follows changes to the file. With --fix the file is
also rewritten whenever its markers are out of date.

Keys: q quit, arrows or j/k scroll, PgUp/PgDn page, Home/End jump, r reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if st.app.Config().Log.File == "" {
				// Log lines would scribble over the screen.
				logging.Init(logging.Config{Level: logging.Disabled})
			}
			fh := st.app.FileHost()

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("initializing screen: %w", err)
			}
			defer screen.Fini()

			view := render.NewView(screen, render.NewTheme(st.app.DecorationStyle()), frameLoader(fh, path, fix))

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			w, err := st.app.Watcher()
			if err != nil {
				return err
			}
			if err := w.Add(filepath.Dir(path)); err != nil {
				_ = w.Close()
				return err
			}
			go func() {
				err := w.Run(ctx, func(_ context.Context, changed string) {
					if abs, err := filepath.Abs(changed); err == nil && abs == path {
						view.Reload()
					}
				})
				if err != nil {
					logger := logging.WithComponent("view")
					logger.Warn().Err(err).Msg("watch stopped")
				}
			}()

			return view.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "Rewrite the file when its markers are out of date")
	return cmd
}

// frameLoader sweeps path and returns the corrected text as a frame.
func frameLoader(fh *filehost.Host, path string, fix bool) render.Loader {
	return func(ctx context.Context) (render.Frame, error) {
		process := fh.Check
		if fix {
			process = fh.Sync
		}
		res, err := process(ctx, path)
		if err != nil {
			return render.Frame{}, err
		}

		title := filepath.Base(path)
		if res.Changed() && !res.Written {
			title += " [out of sync]"
		}
		return render.Frame{
			Title:     title,
			Lines:     buffer.NewBufferFromString(res.After).Lines(),
			Decorated: res.Decorations,
		}, nil
	}
}
