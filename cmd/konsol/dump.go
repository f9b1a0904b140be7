package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/konsol"
	"pkt.systems/prettyx"
)

// NewDumpCommand builds the dump command: feed recorded VT output
// through a console and print the resulting screen.
func NewDumpCommand() *cobra.Command {
	var cols int
	var rows int
	var wrapText bool
	var asInfo bool
	var full bool

	cmd := &cobra.Command{
		Use:   "dump [file]",
		Short: "Replay VT output into a screen buffer and print it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			con, err := konsol.NewConsole(konsol.Options{
				Cols:       cols,
				Rows:       rows,
				WindowCols: cols,
				WindowRows: rows,
				WrapText:   wrapText,
			})
			if err != nil {
				return err
			}
			if _, err := io.Copy(con, in); err != nil {
				return err
			}

			if asInfo {
				data, err := json.Marshal(con.Information())
				if err != nil {
					return err
				}
				return prettyx.PrettyTo(cmd.OutOrStdout(), data, prettyx.DefaultOptions)
			}
			if full {
				return con.RenderFull(cmd.OutOrStdout())
			}
			return con.Render(cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cols, "cols", konsol.DefaultWindowCols, "screen buffer columns")
	flags.IntVar(&rows, "rows", konsol.DefaultWindowRows, "screen buffer rows")
	flags.BoolVar(&wrapText, "wrap", true, "reflow on resize")
	flags.BoolVar(&asInfo, "info", false, "print buffer information as JSON instead of the screen")
	flags.BoolVar(&full, "full", false, "render the whole buffer, scrollback included")

	return cmd
}
