// Package config provides centralized configuration for the gitgraph backend.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/kurobon/gitgraph/internal/graph"
)

const (
	// EnvPrefix prefixes every environment override, e.g. GITGRAPH_SERVER_ADDR.
	EnvPrefix = "GITGRAPH"
	// FileName is the configuration file searched for in the working directory.
	FileName = "gitgraph"
)

// Config holds application-wide configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Graph      GraphConfig      `mapstructure:"graph"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Fixtures   FixturesConfig   `mapstructure:"fixtures"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // structured or console
}

// GraphConfig carries the presentation constants and the soft lane limit
// above which a layout is reported as too wide.
type GraphConfig struct {
	LaneWidth     float64 `mapstructure:"lane_width"`
	RowHeight     float64 `mapstructure:"row_height"`
	CurveFraction float64 `mapstructure:"curve_fraction"`
	SoftLaneLimit int     `mapstructure:"soft_lane_limit"`
}

// RepositoryConfig controls how commits are loaded from a repository.
type RepositoryConfig struct {
	Limit              int  `mapstructure:"limit"`
	IncludeUncommitted bool `mapstructure:"include_uncommitted"`
}

type FixturesConfig struct {
	Dir string `mapstructure:"dir"`
}

// Geometry converts the graph settings for the layout engine.
func (g GraphConfig) Geometry() graph.Geometry {
	return graph.Geometry{
		LaneWidth:     g.LaneWidth,
		RowHeight:     g.RowHeight,
		CurveFraction: g.CurveFraction,
	}
}

// Defaults lists every key with its default value.
func Defaults() map[string]any {
	return map[string]any{
		"server.addr":                    ":8080",
		"log.level":                      "info",
		"log.format":                     "console",
		"graph.lane_width":               graph.DefaultGeometry.LaneWidth,
		"graph.row_height":               graph.DefaultGeometry.RowHeight,
		"graph.curve_fraction":           graph.DefaultGeometry.CurveFraction,
		"graph.soft_lane_limit":          32,
		"repository.limit":               20000,
		"repository.include_uncommitted": true,
		"fixtures.dir":                   "fixtures",
	}
}

// Load resolves configuration from defaults, an optional file and the
// environment, in increasing order of precedence. Flags bound to v by the
// caller take precedence over all of them. An empty path searches the
// working directory for gitgraph.yaml and tolerates its absence.
func Load(v *viper.Viper, path string) (*Config, error) {
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read configuration: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
