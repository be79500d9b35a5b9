// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, including custom markup profiles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"asia2tv/internal/extract"
	"asia2tv/internal/httputil"
	"asia2tv/internal/provider"
)

// Duration is a time.Duration written as a string such as "30s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Base         string                      `toml:"base"`
	Profile      string                      `toml:"profile"`
	UserAgent    string                      `toml:"user_agent"`
	Timeout      Duration                    `toml:"timeout"`
	Workers      int                         `toml:"workers"`
	NextPage     provider.NextPagePolicy     `toml:"next_page"`
	Player       string                      `toml:"player"`
	SubsLanguage string                      `toml:"subs_language"`
	Quality      string                      `toml:"quality"`
	History      bool                        `toml:"history"`
	DownloadDir  string                      `toml:"download_dir"`
	Debug        bool                        `toml:"debug"`
	Headers      map[string]string           `toml:"headers"`
	Extractors   extract.Hosts               `toml:"extractors"`
	Profiles     map[string]provider.Profile `toml:"profiles"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:         "https://asia2tv.com",
		Profile:      provider.DefaultProfile,
		UserAgent:    httputil.DefaultUserAgent,
		Timeout:      Duration{30 * time.Second},
		Workers:      provider.DefaultWorkers,
		NextPage:     provider.NextPageEnd,
		Player:       "mpv",
		SubsLanguage: "arabic",
		Quality:      "best",
		History:      true,
		DownloadDir:  "~/Videos/asia2tv",
		Debug:        false,
		Extractors:   extract.DefaultHosts(),
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "asia2tv"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "asia2tv"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config file at path and merges it with defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validQualities := map[string]bool{
		"best": true, "360": true, "480": true, "720": true, "1080": true,
	}
	if !validQualities[c.Quality] {
		return fmt.Errorf("unsupported quality %q (valid: best, 360, 480, 720, 1080)", c.Quality)
	}

	if c.Base == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if err := httputil.ValidateURL(c.Base); err != nil {
		return fmt.Errorf("base URL: %w", err)
	}

	if c.Workers < 1 || c.Workers > 32 {
		return fmt.Errorf("workers must be between 1 and 32, got %d", c.Workers)
	}

	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	if !c.NextPage.Valid() {
		return fmt.Errorf("unsupported next_page %q (valid: %s, %s)", c.NextPage, provider.NextPageEnd, provider.NextPageAssumeMore)
	}

	if _, err := c.SiteProfile(); err != nil {
		return err
	}

	return nil
}

// SiteProfile returns the markup profile named by Profile. Profiles defined in
// the config file take precedence over the built-in ones of the same name.
func (c *Config) SiteProfile() (provider.Profile, error) {
	p, ok := c.Profiles[c.Profile]
	if !ok {
		p, ok = provider.Builtin(c.Profile)
	}
	if !ok {
		return provider.Profile{}, fmt.Errorf("unknown profile %q (built-in: %s)", c.Profile, strings.Join(provider.BuiltinNames(), ", "))
	}
	if len(p.Sections) == 0 {
		def, _ := provider.Builtin(provider.DefaultProfile)
		p.Sections = def.Sections
	}
	if err := p.Validate(); err != nil {
		return provider.Profile{}, fmt.Errorf("profile %q: %w", c.Profile, err)
	}
	return p, nil
}

// HTTP returns the HTTP client configuration.
func (c *Config) HTTP() httputil.Config {
	return httputil.Config{
		UserAgent: c.UserAgent,
		Headers:   c.Headers,
		Timeout:   c.Timeout.Duration,
	}
}

// ExpandDownloadDir resolves ~ in the download directory path.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "asia2tv", "history.db"), nil
}
