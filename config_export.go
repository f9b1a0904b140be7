package konsol

import "pkt.systems/konsol/internal/config"

// Config mirrors the Konsol configuration.
type Config = config.Config

// ConsoleConfig configures screen buffer and window geometry.
type ConsoleConfig = config.ConsoleConfig

// HostConfig configures the hosted command.
type HostConfig = config.HostConfig

// LogConfig configures logging output.
type LogConfig = config.LogConfig

// Loader wraps configuration loading via Viper.
type Loader = config.Loader

const (
	// DefaultConfigDirName is the directory name under the home directory.
	DefaultConfigDirName = config.DefaultConfigDirName
	// DefaultConfigFileName is the default config file name.
	DefaultConfigFileName = config.DefaultConfigFileName
	// DefaultLogFileName is the default log file name.
	DefaultLogFileName = config.DefaultLogFileName

	// DefaultCols is the default screen buffer width.
	DefaultCols = config.DefaultCols
	// DefaultRows is the default screen buffer height.
	DefaultRows = config.DefaultRows
	// DefaultWindowCols is the default window width.
	DefaultWindowCols = config.DefaultWindowCols
	// DefaultWindowRows is the default window height.
	DefaultWindowRows = config.DefaultWindowRows
	// DefaultCursorSize is the default cursor height in percent.
	DefaultCursorSize = config.DefaultCursorSize
	// DefaultShell is the command hosted when none is configured.
	DefaultShell = config.DefaultShell
	// DefaultTerm is the TERM value exported to the hosted command.
	DefaultTerm = config.DefaultTerm
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = config.DefaultLogLevel
)

// NewLoader returns a config loader with the KONSOL environment prefix
// and the config search paths set; it registers no default values.
func NewLoader() *config.Loader {
	return config.NewLoader()
}

// DefaultConfig returns default Konsol configuration.
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// DefaultConfigDir returns the default config directory.
func DefaultConfigDir() string {
	return config.DefaultConfigDir()
}

// DefaultConfigPath returns the default config path.
func DefaultConfigPath() string {
	return config.DefaultConfigPath()
}

// DefaultLogPath returns the default log path.
func DefaultLogPath() string {
	return config.DefaultLogPath()
}
