package config

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = ".konsol"
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = "config.yaml"
	// DefaultLogFileName is the default log file name.
	DefaultLogFileName = "konsol.log"

	// DefaultCols is the default screen buffer width in characters.
	DefaultCols = 80
	// DefaultRows is the default screen buffer height in characters.
	DefaultRows = 300
	// DefaultWindowCols is the default window width in characters.
	DefaultWindowCols = 80
	// DefaultWindowRows is the default window height in characters.
	DefaultWindowRows = 24
	// DefaultCursorSize is the default cursor height in percent.
	DefaultCursorSize = 25
	// DefaultFontWidth is the default character cell width in pixels.
	DefaultFontWidth = 8
	// DefaultFontHeight is the default character cell height in pixels.
	DefaultFontHeight = 16
	// DefaultHBarPx is the default horizontal scroll bar height in pixels.
	DefaultHBarPx = 16
	// DefaultVBarPx is the default vertical scroll bar width in pixels.
	DefaultVBarPx = 16

	// DefaultShell is the command hosted when none is configured.
	DefaultShell = "/bin/sh"
	// DefaultTerm is the TERM value exported to the hosted command.
	DefaultTerm = "xterm-256color"
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)
