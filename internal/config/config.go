// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "wspick/internal/error"
	"wspick/internal/models"
	"wspick/internal/utils"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFileName = "config.yaml"
	DefaultConfigDir      = ".config/wspick"
	DefaultLogFileName    = "wspick.log"
	DefaultFilePerms      = 0600
	DefaultEndpoint       = "ws://localhost:8080/session"
	MaxRecent             = 10
)

const (
	DownloadBrowser = "browser"
	DownloadSave    = "save"
)

type Download struct {
	Mode string `yaml:"mode"`
	Dir  string `yaml:"dir"`
}

type Config struct {
	Endpoint          string          `yaml:"endpoint"`
	Hostname          string          `yaml:"hostname"`
	Location          string          `yaml:"location"`
	RequestTimeout    time.Duration   `yaml:"request_timeout"`
	HandshakeTimeout  time.Duration   `yaml:"handshake_timeout"`
	CloseOnDisconnect bool            `yaml:"close_on_disconnect"`
	Download          Download        `yaml:"download"`
	LogFile           string          `yaml:"log_file"`
	Theme             string          `yaml:"theme"`
	Recent            []models.Target `yaml:"recent"`
}

// Default returns the configuration used when no file exists. Fields missing
// from a config file keep these values.
func Default() *Config {
	cfg := &Config{
		Endpoint:          DefaultEndpoint,
		Location:          "/",
		RequestTimeout:    10 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		CloseOnDisconnect: true,
		Download: Download{
			Mode: DownloadBrowser,
			Dir:  ".",
		},
		Theme:  "Default",
		Recent: []models.Target{},
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.Download.Dir = filepath.Join(home, "Downloads")
		cfg.LogFile = filepath.Join(home, DefaultConfigDir, DefaultLogFileName)
	}
	return cfg
}

// Validate checks values that would otherwise fail late, at connect time.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return apperrors.New(apperrors.ConfigError, "invalid endpoint", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return apperrors.Newf(apperrors.ConfigError, "endpoint must be a ws:// or wss:// url, got %q", c.Endpoint)
	}
	if u.Host == "" {
		return apperrors.Newf(apperrors.ConfigError, "endpoint %q has no host", c.Endpoint)
	}
	if c.RequestTimeout <= 0 {
		return apperrors.Newf(apperrors.ConfigError, "request_timeout must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return apperrors.Newf(apperrors.ConfigError, "handshake_timeout must be positive")
	}
	switch c.Download.Mode {
	case DownloadBrowser, DownloadSave:
	default:
		return apperrors.Newf(apperrors.ConfigError, "download.mode must be %q or %q", DownloadBrowser, DownloadSave)
	}
	return nil
}

// Target is the connection prefill taken from the config.
func (c *Config) Target() models.Target {
	return models.Target{Hostname: c.Hostname, Location: c.Location}
}

type Manager struct {
	configPath string
	config     *Config
}

// NewManager falls back to the default path when configPath is empty.
func NewManager(configPath string) *Manager {
	if configPath == "" {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			configPath = defaultPath
		} else {
			configPath = DefaultConfigFileName
		}
	}

	return &Manager{
		configPath: configPath,
		config:     Default(),
	}
}

func (m *Manager) Path() string { return m.configPath }

func (m *Manager) Config() *Config { return m.config }

// Load reads the config file. A missing file yields the defaults and is not
// created until Save.
func (m *Manager) Load() error {
	cfg := Default()

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.config = cfg
			return nil
		}
		return apperrors.New(apperrors.ConfigError, "failed to read config file", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperrors.New(apperrors.ConfigError, "failed to parse config file", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Download.Dir = utils.ToLocalPath(utils.ExpandHome(cfg.Download.Dir))
	cfg.LogFile = utils.ToLocalPath(utils.ExpandHome(cfg.LogFile))
	if cfg.Recent == nil {
		cfg.Recent = []models.Target{}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", m.configPath, err)
	}

	m.config = cfg
	return nil
}

// Clone returns a copy that shares no slices with c.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Recent = append([]models.Target{}, c.Recent...)
	return &cp
}

func (m *Manager) Save() error {
	return Save(m.configPath, m.config)
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return apperrors.New(apperrors.ConfigError, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return apperrors.New(apperrors.ConfigError, "failed to marshal config", err)
	}

	if err := os.WriteFile(path, data, DefaultFilePerms); err != nil {
		return apperrors.New(apperrors.ConfigError, "failed to write config file", err)
	}

	return nil
}

// AddRecent moves target to the front of the recent list, dropping
// duplicates and keeping at most MaxRecent entries. It also becomes the
// prefill for the next start.
func (m *Manager) AddRecent(target models.Target) {
	if target.IsZero() {
		return
	}

	recent := []models.Target{target}
	for _, t := range m.config.Recent {
		if t == target {
			continue
		}
		if len(recent) == MaxRecent {
			break
		}
		recent = append(recent, t)
	}

	m.config.Recent = recent
	m.config.Hostname = target.Hostname
	m.config.Location = target.Location
}

func (m *Manager) GetRecent() []models.Target {
	return m.config.Recent
}

func GetDefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDir, DefaultConfigFileName), nil
}
