// Package config provides functionality for managing configuration options
// for the application using command-line flags, a JSON config file, a .env
// file and environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"port"`

	// DatabaseDSN holds the database connection string. Empty means the
	// server runs on the bundled dataset only.
	DatabaseDSN string `json:"databaseDsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret signs and verifies bearer tokens.
	JWTSecret string `json:"jwtSecret"`

	// QuotaLimit is the number of distinct faults a free user may open per day.
	QuotaLimit int `json:"quotaLimit"`

	// Timezone names the location that defines a quota day.
	Timezone string `json:"timezone"`

	// LogLevel is a zap level name.
	LogLevel string `json:"logLevel"`

	// Seed loads the bundled dataset into the database on startup.
	Seed bool `json:"seed"`

	// CleanupInterval is how often stale free-plan account rows are purged.
	CleanupInterval Duration `json:"cleanupInterval"`
	// StaleAfter is how long an idle free-plan account row is kept. It may
	// not be shorter than MinStaleAfter.
	StaleAfter Duration `json:"staleAfter"`
}

// MinStaleAfter keeps an account row alive across at least one full quota
// day in any timezone, so a purge can never hand out a second daily quota.
const MinStaleAfter = 48 * time.Hour

// Duration is a time.Duration that reads "90s" style strings from JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Set implements flag.Value.
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (o *Options) Location() (*time.Location, error) {
	if o.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(o.Timezone)
}

func defaults() *Options {
	return &Options{
		Port:            "localhost:8080",
		Config:          "config.json",
		QuotaLimit:      10,
		LogLevel:        "info",
		CleanupInterval: Duration{time.Hour},
		StaleAfter:      Duration{30 * 24 * time.Hour},
	}
}

func register(set *flag.FlagSet, o *Options) {
	set.StringVar(&o.Port, "a", o.Port, "run on ip:port server")
	set.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "db address")
	set.StringVar(&o.Config, "config", o.Config, "path to config file")
	set.StringVar(&o.Config, "c", o.Config, "path to config file (shorthand)")
	set.StringVar(&o.JWTSecret, "jwt-secret", o.JWTSecret, "token signing secret")
	set.IntVar(&o.QuotaLimit, "quota", o.QuotaLimit, "free plan daily quota")
	set.StringVar(&o.Timezone, "tz", o.Timezone, "timezone of the quota day")
	set.StringVar(&o.LogLevel, "log-level", o.LogLevel, "log level")
	set.BoolVar(&o.Seed, "seed", o.Seed, "seed the database from the bundled dataset")
	set.Var(&o.CleanupInterval, "cleanup-interval", "stale account cleanup interval")
	set.Var(&o.StaleAfter, "stale-after", "age after which idle free accounts are removed")
}

// Parse parses the command-line flags, the config file and environment
// variables. Precedence, highest first: environment, config file, flags.
func Parse() (*Options, error) {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return parse(flag.CommandLine, os.Args[1:], os.LookupEnv)
}

func parse(set *flag.FlagSet, args []string, lookup func(string) (string, bool)) (*Options, error) {
	o := defaults()
	register(set, o)
	if err := set.Parse(args); err != nil {
		return nil, err
	}

	// Override flags with environment variables if set
	if configPath, ok := lookup("CONFIG"); ok && configPath != "" {
		o.Config = configPath
	}

	if o.Config != "" {
		if _, err := os.Stat(o.Config); err == nil {
			data, err := os.ReadFile(o.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, o); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if err := applyEnv(o, lookup); err != nil {
		return nil, err
	}
	if o.QuotaLimit < 0 {
		return nil, fmt.Errorf("quota must not be negative, got %d", o.QuotaLimit)
	}
	if o.CleanupInterval.Duration <= 0 {
		return nil, fmt.Errorf("cleanup interval must be positive, got %s", o.CleanupInterval)
	}
	if o.StaleAfter.Duration < MinStaleAfter {
		return nil, fmt.Errorf("stale-after must be at least %s, got %s", MinStaleAfter, o.StaleAfter)
	}
	return o, nil
}

func applyEnv(o *Options, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SERVER_ADDRESS": &o.Port,
		"DATABASE_DSN":   &o.DatabaseDSN,
		"JWT_SECRET":     &o.JWTSecret,
		"QUOTA_TZ":       &o.Timezone,
		"LOG_LEVEL":      &o.LogLevel,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("FREE_DAILY_QUOTA"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FREE_DAILY_QUOTA %q: %w", v, err)
		}
		o.QuotaLimit = n
	}
	if v, ok := lookup("SEED_DATABASE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEED_DATABASE %q: %w", v, err)
		}
		o.Seed = b
	}
	return nil
}
