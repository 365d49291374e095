// Package config loads the campus console configuration from .campus.yaml
// and CAMPUS_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/campus/pkg/timewindow"
)

// Source kinds.
const (
	SourceREST = "rest"
	SourceFile = "file"
)

// Config is the resolved configuration.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	Source       string
	FixturesPath string
	HistoryPath  string

	Breakpoint              int
	ResizeOverridesExplicit bool

	WeekStart time.Weekday
	Location  *time.Location

	LogLevel log.Level

	// PageSizes holds per-page page size overrides keyed by page name.
	PageSizes map[string]int
}

// Classifier returns the calendar convention for time windows.
func (c *Config) Classifier() timewindow.Classifier {
	return timewindow.Classifier{Location: c.Location, WeekStart: c.WeekStart}
}

// Scope names the backend the history is kept for.
func (c *Config) Scope() string {
	if c.Source == SourceFile {
		return "file:" + c.FixturesPath
	}
	return c.BaseURL
}

// BasePath implements store.Config.
func (c *Config) BasePath() string {
	return c.HistoryPath
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("source", SourceREST)
	v.SetDefault("fixtures.path", "./fixtures")
	v.SetDefault("history.path", "~/.campus/history")
	v.SetDefault("viewport.breakpoint", 120)
	v.SetDefault("viewport.resize_overrides_explicit", false)
	v.SetDefault("calendar.week_start", "sunday")
	v.SetDefault("calendar.timezone", "UTC")
	v.SetDefault("log.level", "warn")
}

// Load reads .campus.yaml from $CAMPUS_CONFIG_PATH or the working
// directory. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(".campus") // .yaml is implicit
	v.SetEnvPrefix("CAMPUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("CAMPUS_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}
	return resolve(v)
}

func resolve(v *viper.Viper) (*Config, error) {
	c := &Config{
		BaseURL:                 strings.TrimSpace(v.GetString("api.base_url")),
		Timeout:                 v.GetDuration("api.timeout"),
		Source:                  strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		Breakpoint:              v.GetInt("viewport.breakpoint"),
		ResizeOverridesExplicit: v.GetBool("viewport.resize_overrides_explicit"),
		PageSizes:               map[string]int{},
	}
	switch c.Source {
	case SourceREST, SourceFile:
	default:
		return nil, fmt.Errorf("config: source %q: expected %q or %q", c.Source, SourceREST, SourceFile)
	}

	var err error
	if c.HistoryPath, err = homedir.Expand(v.GetString("history.path")); err != nil {
		return nil, fmt.Errorf("config: history.path: %w", err)
	}
	if c.FixturesPath, err = homedir.Expand(v.GetString("fixtures.path")); err != nil {
		return nil, fmt.Errorf("config: fixtures.path: %w", err)
	}
	if c.WeekStart, err = timewindow.ParseWeekday(v.GetString("calendar.week_start")); err != nil {
		return nil, fmt.Errorf("config: calendar.week_start: %w", err)
	}
	if c.Location, err = time.LoadLocation(v.GetString("calendar.timezone")); err != nil {
		return nil, fmt.Errorf("config: calendar.timezone: %w", err)
	}
	if c.LogLevel, err = log.ParseLevel(v.GetString("log.level")); err != nil {
		return nil, fmt.Errorf("config: log.level: %w", err)
	}

	for name := range v.GetStringMap("pages") {
		if size := v.GetInt("pages." + name + ".page_size"); size > 0 {
			c.PageSizes[name] = size
		}
	}
	return c, nil
}
