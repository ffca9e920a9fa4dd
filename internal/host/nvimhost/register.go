package nvimhost

import (
	"context"

	nvimplugin "github.com/neovim/go-client/nvim/plugin"
)

// SyncCommand is the user command that sweeps the focused buffer.
const SyncCommand = "McmarkSync"

const autocmdGroup = "mcmark"

// bufferEval evaluates to [bufnr, absolute path or "", changedtick] for the
// buffer an autocmd fired for.
const bufferEval = `[expand('<abuf>'), ` +
	`empty(bufname(str2nr(expand('<abuf>')))) ? '' : fnamemodify(bufname(str2nr(expand('<abuf>'))), ':p'), ` +
	`string(getbufvar(str2nr(expand('<abuf>')), 'changedtick'))]`

// Register installs the autocmds that feed buffer events into the host and
// the McmarkSync command, which calls sweep.
func (h *Host) Register(ctx context.Context, p *nvimplugin.Plugin, sweep func() bool) {
	p.HandleAutocmd(&nvimplugin.AutocmdOptions{
		Event:   "BufEnter",
		Group:   autocmdGroup,
		Pattern: "*",
		Eval:    bufferEval,
	}, func(args []string) {
		a, err := parseBufferArgs(args)
		if err != nil {
			h.logger.Warn().Err(err).Msg("bad BufEnter arguments")
			return
		}
		if err := h.Enter(ctx, a.Buffer, a.Path); err != nil {
			h.logger.Debug().Err(err).Msg("publish failed")
		}
	})

	for _, ev := range []string{"TextChanged", "TextChangedI"} {
		p.HandleAutocmd(&nvimplugin.AutocmdOptions{
			Event:   ev,
			Group:   autocmdGroup,
			Pattern: "*",
			Eval:    bufferEval,
		}, func(args []string) {
			a, err := parseBufferArgs(args)
			if err != nil {
				h.logger.Warn().Err(err).Str("event", ev).Msg("bad autocmd arguments")
				return
			}
			if err := h.Changed(ctx, a.Buffer, a.Tick); err != nil {
				h.logger.Debug().Err(err).Msg("publish failed")
			}
		})
	}

	p.HandleAutocmd(&nvimplugin.AutocmdOptions{
		Event:   "BufFilePost",
		Group:   autocmdGroup,
		Pattern: "*",
		Eval:    bufferEval,
	}, func(args []string) {
		a, err := parseBufferArgs(args)
		if err != nil {
			h.logger.Warn().Err(err).Msg("bad BufFilePost arguments")
			return
		}
		if err := h.Renamed(ctx, a.Buffer, a.Path); err != nil {
			h.logger.Debug().Err(err).Msg("publish failed")
		}
	})

	p.HandleAutocmd(&nvimplugin.AutocmdOptions{
		Event:   "BufWipeout",
		Group:   autocmdGroup,
		Pattern: "*",
		Eval:    bufferEval,
	}, func(args []string) {
		if a, err := parseBufferArgs(args); err == nil {
			h.Wipe(a.Buffer)
		}
	})

	p.HandleCommand(&nvimplugin.CommandOptions{Name: SyncCommand}, func() {
		if !sweep() {
			h.logger.Debug().Msg("focused buffer is not a function file")
		}
	})
}
