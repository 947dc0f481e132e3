package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"geoview/internal/geo"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "GEOVIEW_"

// Config holds viewer settings. Values come from GEOVIEW_* environment
// variables and may then be overridden by command line flags.
type Config struct {
	CacheDir   string   `env:"CACHE_DIR"`
	Projection string   `env:"PROJECTION" envDefault:"mercator"`
	CenterLat  *float64 `env:"CENTER_LAT"`
	CenterLon  *float64 `env:"CENTER_LON"`
	Level      float64  `env:"LEVEL" envDefault:"-1"`
	Aspect     float64  `env:"ASPECT" envDefault:"2.0"`
	PlacesCSV  string   `env:"PLACES"`
	DebugLog   string   `env:"DEBUG_LOG"`
	Offline    bool     `env:"OFFLINE"`
}

// Load parses the environment
func Load() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and fills derived defaults
func (c *Config) Validate() error {
	var errs []error

	if c.Aspect < 1.0 || c.Aspect > 4.0 {
		errs = append(errs, fmt.Errorf("aspect ratio must be between 1.0 and 4.0, got %.2f", c.Aspect))
	}
	if _, err := geo.ProjectionByName(c.Projection); err != nil {
		errs = append(errs, err)
	}
	if (c.CenterLat == nil) != (c.CenterLon == nil) {
		errs = append(errs, errors.New("center needs both latitude and longitude"))
	}
	if c.CenterLat != nil && (*c.CenterLat < -90 || *c.CenterLat > 90) {
		errs = append(errs, fmt.Errorf("center latitude must be between -90 and 90, got %.4f", *c.CenterLat))
	}
	if c.CenterLon != nil && (*c.CenterLon < -180 || *c.CenterLon > 180) {
		errs = append(errs, fmt.Errorf("center longitude must be between -180 and 180, got %.4f", *c.CenterLon))
	}

	if c.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get home directory: %w", err))
		} else {
			c.CacheDir = filepath.Join(home, ".geoview", "data")
		}
	}

	return errors.Join(errs...)
}

// ProjectionImpl returns the configured projection
func (c *Config) ProjectionImpl() (geo.Projection, error) {
	return geo.ProjectionByName(c.Projection)
}

// Center returns the configured center; ok is false unless both latitude
// and longitude were set
func (c *Config) Center() (geo.LatLon, bool) {
	if c.CenterLat == nil || c.CenterLon == nil {
		return geo.LatLon{}, false
	}
	return geo.LatLon{Lat: *c.CenterLat, Lon: *c.CenterLon}, true
}

// SetCenterFlag parses a command line coordinate into dst
func SetCenterFlag(dst **float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	}
}

// StartLevel returns the configured zoom level; ok is false when none was set
func (c *Config) StartLevel() (float64, bool) {
	return c.Level, c.Level >= 0
}
