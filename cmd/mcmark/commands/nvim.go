package commands

import (
	"os"

	"github.com/neovim/go-client/nvim"
	nvimplugin "github.com/neovim/go-client/nvim/plugin"
	"github.com/spf13/cobra"

	"github.com/dshills/mcmark/internal/event"
	"github.com/dshills/mcmark/internal/host/nvimhost"
	"github.com/dshills/mcmark/internal/logging"
)

func newNvimCmd(st *state) *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "nvim",
		Short: "Run as a Neovim remote plugin",
		Long: `Serve the Neovim RPC protocol on stdin and stdout. Neovim starts this
command as a remote plugin host; markers in the focused function file are
updated while typing and macro commands get a sign in the gutter.

Register the host in init.lua:

  vim.fn['remote#host#Register']('mcmark', 'x', function()
    return vim.fn.jobstart({'mcmark', 'nvim'}, {rpc = true})
  end)

then append the output of 'mcmark nvim --manifest mcmark' to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := logging.WithComponent("nvim")

			// Stdout carries RPC; anything else written there corrupts it.
			stdout := os.Stdout
			os.Stdout = os.Stderr
			defer func() { os.Stdout = stdout }()

			v, err := nvim.New(os.Stdin, stdout, stdout, func(format string, args ...any) {
				logger.Debug().Msgf(format, args...)
			})
			if err != nil {
				return err
			}
			p := nvimplugin.New(v)

			bus := event.NewBus()
			h := nvimhost.New(v, bus,
				nvimhost.WithDecorationStyle(st.app.DecorationStyle()),
				nvimhost.WithLogger(logger),
			)
			pl, err := st.app.Plugin(ctx, bus, h)
			if err != nil {
				return err
			}
			h.Register(ctx, p, pl.SweepActive)

			if manifest != "" {
				_, err := stdout.Write(p.Manifest(manifest))
				return err
			}

			// Calls block until Serve runs, so start up in the background.
			go func() {
				if err := h.Init(); err != nil {
					logger.Error().Err(err).Msg("host init failed")
					return
				}
				if err := pl.Activate(ctx); err != nil {
					logger.Error().Err(err).Msg("plugin activation failed")
				}
			}()
			go func() {
				<-ctx.Done()
				_ = v.Close()
			}()

			err = v.Serve()
			if pl.IsActive() {
				_ = pl.Deactivate()
			}
			return err
		},
	}
	cmd.Flags().StringVar(&manifest, "manifest", "", "Print the plugin manifest for `host` and exit")
	return cmd
}
