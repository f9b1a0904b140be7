// Package config loads Konsol configuration from file, environment,
// and flags via Viper.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for Konsol.
type Config struct {
	Console ConsoleConfig `mapstructure:"console" yaml:"console"`
	Host    HostConfig    `mapstructure:"host" yaml:"host"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// ConsoleConfig configures the screen buffer and window geometry.
type ConsoleConfig struct {
	Cols       int  `mapstructure:"cols" yaml:"cols"`
	Rows       int  `mapstructure:"rows" yaml:"rows"`
	WindowCols int  `mapstructure:"window_cols" yaml:"window_cols"`
	WindowRows int  `mapstructure:"window_rows" yaml:"window_rows"`
	WrapText   bool `mapstructure:"wrap_text" yaml:"wrap_text"`
	CursorSize int  `mapstructure:"cursor_size" yaml:"cursor_size"`
	FontWidth  int  `mapstructure:"font_width" yaml:"font_width"`
	FontHeight int  `mapstructure:"font_height" yaml:"font_height"`
	HBarPx     int  `mapstructure:"hbar_px" yaml:"hbar_px"`
	VBarPx     int  `mapstructure:"vbar_px" yaml:"vbar_px"`
}

// HostConfig configures the hosted command and its environment.
type HostConfig struct {
	Shell string `mapstructure:"shell" yaml:"shell"`
	Term  string `mapstructure:"term" yaml:"term"`
}

// LogConfig configures logging output.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// Loader wraps Viper configuration loading for Konsol.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader initializes a Loader with the KONSOL environment prefix and
// the standard config search paths; it registers no default values.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix("KONSOL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/konsol")
	v.AddConfigPath("$HOME/.konsol")

	return &Loader{v: v}
}

// Viper exposes the underlying Viper instance for flag binding and defaults.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = strings.TrimSpace(path)
}

// ReadInConfig reads configuration from file if available.
func (l *Loader) ReadInConfig() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads configuration and unmarshals it into a Config struct.
func (l *Loader) Load() (Config, error) {
	if err := l.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
