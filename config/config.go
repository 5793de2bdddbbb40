// Package config holds the run parameters of the curve builder and the curve
// server.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/zerocurve/marketdata"
	"github.com/meenmo/zerocurve/output"
	"github.com/meenmo/zerocurve/spline"
	"github.com/meenmo/zerocurve/utils"
	"github.com/meenmo/zerocurve/zerocurve"
)

// EnvPrefix prefixes every environment override, e.g. ZEROCURVE_HORIZON_DAYS.
const EnvPrefix = "ZEROCURVE_"

// Config holds the snapshot selection, curve conventions and I/O targets.
type Config struct {
	// SnapshotDate selects the observation rows (YYYY-MM-DD).
	SnapshotDate string `yaml:"snapshot_date"`

	// HorizonDays is the number of daily rows emitted.
	HorizonDays int `yaml:"horizon_days"`

	// DaysPerYear converts days to month tenors. DayCount, when set, overrides it.
	DaysPerYear float64 `yaml:"days_per_year"`
	DayCount    string  `yaml:"day_count"`

	// TenorDecimals rounds query tenors; negative disables rounding.
	TenorDecimals int `yaml:"tenor_decimals"`

	// Boundary is "not-a-knot" or "natural".
	Boundary string `yaml:"boundary"`

	// Extrapolation is "cubic" or "flat".
	Extrapolation string `yaml:"extrapolation"`

	// SkipFlag drops rows whose flag column equals it.
	SkipFlag string `yaml:"skip_flag"`

	// InputSource is a CSV path or a postgres:// / clickhouse:// DSN.
	InputSource string `yaml:"input_source"`
	InputTable  string `yaml:"input_table"`

	// OutputSink is a CSV path ("-" for stdout, ".zst" to compress) or a DSN.
	OutputSink  string `yaml:"output_sink"`
	OutputTable string `yaml:"output_table"`

	Server ServerConfig `yaml:"server"`
}

// ServerConfig configures the HTTP curve service.
type ServerConfig struct {
	Addr     string        `yaml:"addr"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// RedisAddr, when set, shares built curves between servers.
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
}

// Default returns the standard run: 2010-01-04 snapshot, 5400 days.
func Default() Config {
	return Config{
		SnapshotDate:  "2010-01-04",
		HorizonDays:   zerocurve.DefaultHorizonDays,
		DaysPerYear:   zerocurve.DefaultDaysPerYear,
		TenorDecimals: zerocurve.DefaultTenorDecimals,
		Boundary:      spline.NotAKnot.String(),
		Extrapolation: spline.ExtrapolateCubic.String(),
		SkipFlag:      "Same",
		InputSource:   "cubic.csv",
		InputTable:    marketdata.DefaultTable,
		OutputSink:    "maturity_days_and_rates.csv",
		OutputTable:   output.DefaultTable,
		Server: ServerConfig{
			Addr:        ":8081",
			CacheTTL:    10 * time.Minute,
			RedisPrefix: "zerocurve:",
		},
	}
}

// Load starts from Default, applies the YAML file at path (if any), a .env file
// in the working directory (if present) and then ZEROCURVE_* variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from ZEROCURVE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("SNAPSHOT_DATE", &c.SnapshotDate)
	str("DAY_COUNT", &c.DayCount)
	str("BOUNDARY", &c.Boundary)
	str("EXTRAPOLATION", &c.Extrapolation)
	str("SKIP_FLAG", &c.SkipFlag)
	str("INPUT_SOURCE", &c.InputSource)
	str("INPUT_TABLE", &c.InputTable)
	str("OUTPUT_SINK", &c.OutputSink)
	str("OUTPUT_TABLE", &c.OutputTable)
	str("SERVER_ADDR", &c.Server.Addr)
	str("REDIS_ADDR", &c.Server.RedisAddr)
	str("REDIS_PREFIX", &c.Server.RedisPrefix)

	if v, ok := lookup(EnvPrefix + "HORIZON_DAYS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sHORIZON_DAYS: %w", EnvPrefix, err)
		}
		c.HorizonDays = n
	}
	if v, ok := lookup(EnvPrefix + "DAYS_PER_YEAR"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: %sDAYS_PER_YEAR: %w", EnvPrefix, err)
		}
		c.DaysPerYear = f
	}
	if v, ok := lookup(EnvPrefix + "TENOR_DECIMALS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sTENOR_DECIMALS: %w", EnvPrefix, err)
		}
		c.TenorDecimals = n
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sCACHE_TTL: %w", EnvPrefix, err)
		}
		c.Server.CacheTTL = d
	}
	return nil
}

// Validate checks every field and resolves DayCount into DaysPerYear.
func (c *Config) Validate() error {
	if _, err := c.Snapshot(); err != nil {
		return fmt.Errorf("config: snapshot_date: %w", err)
	}
	if c.HorizonDays < 1 {
		return fmt.Errorf("config: horizon_days must be at least 1, got %d", c.HorizonDays)
	}
	if c.DayCount != "" {
		dpy, err := utils.DaysPerYear(c.DayCount)
		if err != nil {
			return fmt.Errorf("config: day_count: %w", err)
		}
		c.DaysPerYear = dpy
	}
	if c.DaysPerYear <= 0 || math.IsNaN(c.DaysPerYear) || math.IsInf(c.DaysPerYear, 0) {
		return fmt.Errorf("config: days_per_year must be finite and positive, got %v", c.DaysPerYear)
	}
	if c.TenorDecimals > zerocurve.MaxTenorDecimals {
		return fmt.Errorf("config: tenor_decimals must not exceed %d, got %d", zerocurve.MaxTenorDecimals, c.TenorDecimals)
	}
	if _, err := c.CurveOptions(); err != nil {
		return err
	}
	if c.InputSource == "" {
		return fmt.Errorf("config: input_source is required")
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("config: server.cache_ttl must not be negative")
	}
	return nil
}

// Snapshot parses SnapshotDate.
func (c Config) Snapshot() (time.Time, error) {
	return utils.ParseDate(c.SnapshotDate)
}

// Grid returns the resampling grid.
func (c Config) Grid() zerocurve.Grid {
	return zerocurve.Grid{Days: c.HorizonDays, DaysPerYear: c.DaysPerYear, TenorDecimals: c.TenorDecimals}
}

// CurveOptions parses Boundary and Extrapolation.
func (c Config) CurveOptions() (zerocurve.Options, error) {
	bc, err := spline.ParseBoundary(c.Boundary)
	if err != nil {
		return zerocurve.Options{}, fmt.Errorf("config: boundary: %w", err)
	}
	ex, err := spline.ParseExtrapolation(c.Extrapolation)
	if err != nil {
		return zerocurve.Options{}, fmt.Errorf("config: extrapolation: %w", err)
	}
	return zerocurve.Options{Boundary: bc, Extrapolation: ex}, nil
}

// Filter returns the snapshot filter for date.
func (c Config) Filter(date time.Time) marketdata.Filter {
	f := marketdata.DefaultFilter(date)
	f.SkipFlag = c.SkipFlag
	f.DaysPerYear = c.DaysPerYear
	f.TenorDecimals = c.TenorDecimals
	return f
}
