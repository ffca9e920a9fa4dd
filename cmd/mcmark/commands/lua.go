package commands

import (
	"github.com/spf13/cobra"
	lua "github.com/yuin/gopher-lua"
)

func newLuaCmd(st *state) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "lua [SCRIPT] [arg...]",
		Short: "Run a Lua script with the mcmark module",
		Long: `Run SCRIPT, or the code given with -e, in the sandboxed Lua state used
for sweep hooks. require("mcmark") gives access to the marker functions;
the remaining arguments are in the global table arg.

Example:
  mcmark lua -e 'print(require("mcmark").sync("say $(x)"))'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" && len(args) == 0 {
				return cmd.Usage()
			}

			s := st.app.LuaState()
			defer s.Close()

			scriptArgs := args
			if code == "" {
				scriptArgs = args[1:]
			}
			argTable := s.NewTable()
			for i, a := range scriptArgs {
				argTable.RawSetInt(i+1, lua.LString(a))
			}
			s.L.SetGlobal("arg", argTable)

			if code != "" {
				return s.DoString(cmd.Context(), "-e", code)
			}
			return s.DoFile(cmd.Context(), args[0])
		},
	}
	cmd.Flags().StringVarP(&code, "eval", "e", "", "Run `code` instead of a script file")
	return cmd
}
