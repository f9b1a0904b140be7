package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/konsol"
	"pkt.systems/pslog"
)

// NewRootCommand builds the root CLI command. Running it without a
// subcommand hosts a shell inside a console screen buffer.
func NewRootCommand(loader *konsol.Loader) *cobra.Command {
	var configFile string
	var shellPath string
	var termName string
	var cols int
	var rows int
	var wrapText bool
	var logFile string

	v := loader.Viper()
	v.SetDefault("console.cols", konsol.DefaultCols)
	v.SetDefault("console.rows", konsol.DefaultRows)
	v.SetDefault("console.wrap_text", true)
	v.SetDefault("host.shell", "")
	v.SetDefault("host.term", konsol.DefaultTerm)
	v.SetDefault("log.file", konsol.DefaultLogPath())
	v.SetDefault("log.level", konsol.DefaultLogLevel)

	cmd := &cobra.Command{
		Use:   "konsol",
		Short: "Konsol console host and screen buffer tools",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if configFile != "" {
				loader.SetConfigFile(configFile)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			shellValue := shellPath
			if !cmd.Flags().Changed("shell") {
				shellValue = cfg.Host.Shell
			}
			termValue := termName
			if !cmd.Flags().Changed("term") {
				termValue = cfg.Host.Term
			}
			wrapValue := wrapText
			if !cmd.Flags().Changed("wrap") {
				wrapValue = cfg.Console.WrapText
			}
			colsValue := cols
			if !cmd.Flags().Changed("cols") {
				colsValue = 0
			}
			rowsValue := rows
			if !cmd.Flags().Changed("rows") {
				rowsValue = 0
			}
			logPath := logFile
			if !cmd.Flags().Changed("log-file") {
				logPath = cfg.Log.File
			}

			logger, closer, err := openSessionLogger(logPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = closer.Close()
			}()
			logger = logger.With("component", "host")
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)
			return konsol.Host(ctx, konsol.HostOptions{
				Shell:    shellValue,
				Term:     termValue,
				Cols:     colsValue,
				Rows:     rowsValue,
				WrapText: wrapValue,
				Logger:   logger,
			})
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	flags := cmd.Flags()
	flags.StringVar(&shellPath, "shell", "", "override login shell path")
	flags.StringVar(&termName, "term", konsol.DefaultTerm, "TERM for the hosted command")
	flags.IntVar(&cols, "cols", konsol.DefaultWindowCols, "initial columns")
	flags.IntVar(&rows, "rows", konsol.DefaultWindowRows, "initial rows")
	flags.BoolVar(&wrapText, "wrap", true, "reflow the buffer on resize")
	flags.StringVar(&logFile, "log-file", konsol.DefaultLogPath(), "session log file")

	cmd.AddCommand(NewDumpCommand())
	cmd.AddCommand(NewConfigCommand(loader))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
