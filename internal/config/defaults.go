package config

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		Console: ConsoleConfig{
			Cols:       DefaultCols,
			Rows:       DefaultRows,
			WindowCols: DefaultWindowCols,
			WindowRows: DefaultWindowRows,
			WrapText:   true,
			CursorSize: DefaultCursorSize,
			FontWidth:  DefaultFontWidth,
			FontHeight: DefaultFontHeight,
			HBarPx:     DefaultHBarPx,
			VBarPx:     DefaultVBarPx,
		},
		Host: HostConfig{
			Shell: DefaultShell,
			Term:  DefaultTerm,
		},
		Log: LogConfig{
			File:  DefaultLogPath(),
			Level: DefaultLogLevel,
		},
	}
}
