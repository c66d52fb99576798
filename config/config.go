// Package config loads the quizgraph configuration from a YAML file and the
// environment, and builds the root logger from it.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/meikuraledutech/quizgraph"
	"github.com/meikuraledutech/quizgraph/layout"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the server and the CLI need.
type Config struct {
	Listen   string         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Layout   LayoutConfig   `yaml:"layout"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite"
	URL    string `yaml:"url"`    // connection string, or a file path for sqlite
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// LayoutConfig holds the node boxes and spacing used to lay out graphs.
type LayoutConfig struct {
	NodeWidth      float64 `yaml:"nodeWidth"`
	QuestionHeight float64 `yaml:"questionHeight"`
	EndHeight      float64 `yaml:"endHeight"`
	NodeSep        float64 `yaml:"nodeSep"`
	RankSep        float64 `yaml:"rankSep"`
	Direction      string  `yaml:"direction"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Listen: ":3000",
		Database: DatabaseConfig{
			Driver: DriverPostgres,
		},
		Log: LogConfig{
			Level: "info",
		},
		Layout: LayoutConfig{
			NodeWidth:      quizgraph.DefaultSizes.Question.Width,
			QuestionHeight: quizgraph.DefaultSizes.Question.Height,
			EndHeight:      quizgraph.DefaultSizes.Terminal.Height,
			NodeSep:        quizgraph.DefaultSizes.NodeSep,
			RankSep:        quizgraph.DefaultSizes.RankSep,
			Direction:      string(quizgraph.DirectionVertical),
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv overrides the config with the environment variables that are set.
func (c *Config) ApplyEnv() {
	if u := os.Getenv("DATABASE_URL"); u != "" {
		c.Database.URL = u
	}
	if d := os.Getenv("QUIZGRAPH_DRIVER"); d != "" {
		c.Database.Driver = d
	}
	if l := os.Getenv("QUIZGRAPH_LISTEN"); l != "" {
		c.Listen = l
	}
	if l := os.Getenv("QUIZGRAPH_LOG_LEVEL"); l != "" {
		c.Log.Level = l
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if _, err := quizgraph.ParseDirection(c.Layout.Direction); err != nil {
		return err
	}
	l := c.Layout
	if l.NodeWidth <= 0 || l.QuestionHeight <= 0 || l.EndHeight <= 0 {
		return errors.New("layout sizes must be positive")
	}
	if l.NodeSep < 0 || l.RankSep < 0 {
		return errors.New("layout separations must not be negative")
	}
	return nil
}

// Sizes returns the layout boxes. Dangling answer targets get the terminal box.
func (c Config) Sizes() quizgraph.Sizes {
	end := layout.Size{Width: c.Layout.NodeWidth, Height: c.Layout.EndHeight}
	return quizgraph.Sizes{
		Question:    layout.Size{Width: c.Layout.NodeWidth, Height: c.Layout.QuestionHeight},
		Terminal:    end,
		Placeholder: end,
		NodeSep:     c.Layout.NodeSep,
		RankSep:     c.Layout.RankSep,
	}
}

// Direction returns the default layout direction. Validate has checked it.
func (c Config) Direction() quizgraph.Direction {
	d, _ := quizgraph.ParseDirection(c.Layout.Direction)
	return d
}

// Logger builds the root logger writing to w.
func (c Config) Logger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "quizgraph",
		Level:      hclog.LevelFromString(strings.TrimSpace(c.Log.Level)),
		Output:     w,
		JSONFormat: c.Log.JSON,
	})
}
