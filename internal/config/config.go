/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mikeb26/knockoutdraw/draw"
	"github.com/mikeb26/knockoutdraw/internal"
	"gopkg.in/yaml.v3"
)

const envPrefix = "KNOCKOUTDRAW_"

type Config struct {
	Season    string          `yaml:"season"`
	Policy    string          `yaml:"policy"`
	Sample    SampleConfig    `yaml:"sample"`
	Standings StandingsConfig `yaml:"standings"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Bot       BotConfig       `yaml:"bot"`
}

type SampleConfig struct {
	Attempts int `yaml:"attempts"`
	// 0 means one worker per CPU
	Workers int `yaml:"workers"`
}

type StandingsConfig struct {
	URLs        []string `yaml:"urls"`
	CacheBucket string   `yaml:"cache_bucket"`
}

// ArchiveBackend selects where completed draws are recorded.
type ArchiveBackend string

const (
	ArchiveSQLite ArchiveBackend = "sqlite"
	ArchiveS3     ArchiveBackend = "s3"
	ArchiveNone   ArchiveBackend = "none"
)

type ArchiveConfig struct {
	Backend ArchiveBackend `yaml:"backend"`
	Path    string         `yaml:"path"`
	Bucket  string         `yaml:"bucket"`
}

// BotConfig holds the drawbot settings. Discord credentials are only ever
// read from the environment.
type BotConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	Token     string `yaml:"-"`
	PublicKey string `yaml:"-"`
	AppID     string `yaml:"-"`
	CommandID string `yaml:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		Season: "2021",
		Policy: draw.DegreeOrdered{}.Name(),
		Sample: SampleConfig{
			Attempts: 1000,
		},
		Standings: StandingsConfig{
			CacheBucket: internal.WebCacheBucket,
		},
		Archive: ArchiveConfig{
			Backend: ArchiveSQLite,
			Path:    filepath.Join(defaultDataDir(), "draws.db"),
			Bucket:  internal.ArchiveBucket,
		},
		Bot: BotConfig{
			ListenAddr: ":8080",
		},
	}
}

// DefaultPath is $KNOCKOUTDRAW_CONFIG if set, otherwise config.yaml under the
// user's config directory.
func DefaultPath() string {
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "knockoutdraw.yaml"
	}
	return filepath.Join(dir, "knockoutdraw", "config.yaml")
}

func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "knockoutdraw")
}

// Load reads a YAML config file on top of the defaults and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %v: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(envPrefix + "SEASON"); v != "" {
		c.Season = v
	}
	if v := os.Getenv(envPrefix + "POLICY"); v != "" {
		c.Policy = v
	}
	if v := os.Getenv(envPrefix + "ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%vATTEMPTS: %w", envPrefix, err)
		}
		c.Sample.Attempts = n
	}
	if v := os.Getenv(envPrefix + "WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%vWORKERS: %w", envPrefix, err)
		}
		c.Sample.Workers = n
	}
	if v := os.Getenv(envPrefix + "STANDINGS_URLS"); v != "" {
		c.Standings.URLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.Standings.URLs = append(c.Standings.URLs, u)
			}
		}
	}
	if v := os.Getenv(envPrefix + "WEBCACHE_BUCKET"); v != "" {
		c.Standings.CacheBucket = v
	}
	if v := os.Getenv(envPrefix + "ARCHIVE"); v != "" {
		c.Archive.Backend = ArchiveBackend(strings.ToLower(v))
	}
	if v := os.Getenv(envPrefix + "ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv(envPrefix + "ARCHIVE_BUCKET"); v != "" {
		c.Archive.Bucket = v
	}
	if v := os.Getenv(envPrefix + "LISTEN_ADDR"); v != "" {
		c.Bot.ListenAddr = v
	}

	c.Bot.Token = os.Getenv("DRAWBOT_TOKEN")
	c.Bot.PublicKey = os.Getenv("DRAWBOT_PUBKEY")
	c.Bot.AppID = os.Getenv("DRAWBOT_APPID")
	c.Bot.CommandID = os.Getenv("DRAWBOT_CMDID")

	return nil
}

func (c *Config) Validate() error {
	if _, err := draw.PolicyByName(c.Policy); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Sample.Attempts <= 0 {
		return fmt.Errorf("config: sample.attempts must be positive, got %d",
			c.Sample.Attempts)
	}
	if c.Sample.Workers < 0 {
		return fmt.Errorf("config: sample.workers must not be negative, got %d",
			c.Sample.Workers)
	}
	switch c.Archive.Backend {
	case ArchiveSQLite:
		if c.Archive.Path == "" {
			return fmt.Errorf("config: archive.path is required for the sqlite backend")
		}
	case ArchiveS3:
		if c.Archive.Bucket == "" {
			return fmt.Errorf("config: archive.bucket is required for the s3 backend")
		}
	case ArchiveNone:
	default:
		return fmt.Errorf("config: unknown archive backend %q", c.Archive.Backend)
	}

	return nil
}
