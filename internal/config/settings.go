// Package config loads and stores settings.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"gitdesk/internal/logging"
)

const (
	DefaultLanguage         = "zh-CN"
	DefaultTheme            = "light"
	DefaultSSHHost          = "git@github.com"
	DefaultRemote           = "origin"
	DefaultMaxCommitHistory = 100
	DefaultCommandTimeout   = 60 * time.Second
	DefaultNetworkTimeout   = 10 * time.Minute
)

// Settings mirrors the on-disk settings.yaml schema.
type Settings struct {
	Language            string   `yaml:"language" json:"language" validate:"omitempty,oneof=zh-CN en-US"`
	Theme               string   `yaml:"theme" json:"theme" validate:"omitempty,oneof=light dark system"`
	AutoOpenLastRepo    bool     `yaml:"autoOpenLastRepo" json:"autoOpenLastRepo"`
	GitUserName         string   `yaml:"gitUserName,omitempty" json:"gitUserName,omitempty"`
	GitUserEmail        string   `yaml:"gitUserEmail,omitempty" json:"gitUserEmail,omitempty" validate:"omitempty,email"`
	SSHKeyPath          string   `yaml:"sshKeyPath,omitempty" json:"sshKeyPath,omitempty"`
	SSHHost             string   `yaml:"sshHost" json:"sshHost"`
	DefaultRemote       string   `yaml:"defaultRemote" json:"defaultRemote" validate:"omitempty,max=100"`
	AutoStashBeforePull bool     `yaml:"autoStashBeforePull" json:"autoStashBeforePull"`
	MaxCommitHistory    int      `yaml:"maxCommitHistory" json:"maxCommitHistory" validate:"gte=0,lte=10000"`
	CommandTimeout      Duration `yaml:"commandTimeout" json:"commandTimeout" ts_type:"string"`
	NetworkTimeout      Duration `yaml:"networkTimeout" json:"networkTimeout" ts_type:"string"`
}

// Defaults returns the settings used when no file exists.
func Defaults() Settings {
	return Settings{
		Language:            DefaultLanguage,
		Theme:               DefaultTheme,
		AutoOpenLastRepo:    true,
		SSHHost:             DefaultSSHHost,
		DefaultRemote:       DefaultRemote,
		AutoStashBeforePull: true,
		MaxCommitHistory:    DefaultMaxCommitHistory,
		CommandTimeout:      Duration(DefaultCommandTimeout),
		NetworkTimeout:      Duration(DefaultNetworkTimeout),
	}
}

// normalize fills zero values with defaults so callers never see an unset
// timeout or remote.
func (s Settings) normalize() Settings {
	d := Defaults()
	if strings.TrimSpace(s.Language) == "" {
		s.Language = d.Language
	}
	if strings.TrimSpace(s.Theme) == "" {
		s.Theme = d.Theme
	}
	if strings.TrimSpace(s.SSHHost) == "" {
		s.SSHHost = d.SSHHost
	}
	if strings.TrimSpace(s.DefaultRemote) == "" {
		s.DefaultRemote = d.DefaultRemote
	}
	if s.MaxCommitHistory <= 0 {
		s.MaxCommitHistory = d.MaxCommitHistory
	}
	if s.CommandTimeout <= 0 {
		s.CommandTimeout = d.CommandTimeout
	}
	if s.NetworkTimeout <= 0 {
		s.NetworkTimeout = d.NetworkTimeout
	}
	return s
}

// ExpandedSSHKeyPath returns SSHKeyPath with environment variables and a
// leading ~ expanded.
func (s Settings) ExpandedSSHKeyPath() string {
	p := os.ExpandEnv(strings.TrimSpace(s.SSHKeyPath))
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

var validate = validator.New()

// Validate checks field constraints.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Load reads settings.yaml. A missing file yields Defaults(); keys absent
// from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s.normalize(), nil
}

// Save writes s to path through a temp file and rename.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Store caches the settings file and serialises updates.
type Store struct {
	path string
	log  logging.Logger

	mu      sync.RWMutex
	current Settings
}

// NewStore loads path once. A malformed file is logged and replaced by
// defaults in memory; it is only overwritten by the next Update.
func NewStore(path string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	s, err := Load(path)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", "path", path, "error", err)
		s = Defaults()
	}
	return &Store{path: path, log: logger, current: s}
}

func (st *Store) Path() string { return st.path }

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update validates, persists and adopts next. The previous settings stay in
// effect when validation or the write fails.
func (st *Store) Update(next Settings) (Settings, error) {
	next = next.normalize()
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := Save(st.path, next); err != nil {
		return Settings{}, err
	}
	st.current = next
	st.log.Info("settings updated", "path", st.path)
	return next, nil
}
