package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/charmbracelet/log"
)

// Config is the on-disk TOML configuration.
type Config struct {
	API        APIConfig         `toml:"api"`
	Defaults   DefaultsConfig    `toml:"defaults"`
	Logging    LoggingConfig     `toml:"logging"`
	BoardRoots map[string]string `toml:"board_roots"`
}

// APIConfig selects the Trello endpoint.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// DefaultsConfig supplies fallbacks for flags left unset.
type DefaultsConfig struct {
	BoardID       string `toml:"board_id"`
	ListID        string `toml:"list_id"`
	Format        string `toml:"format"`
	IncludeClosed bool   `toml:"include_closed"`
	IncludeDesc   bool   `toml:"include_desc"`
}

// LoggingConfig controls the runtime logger.
type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// DevFileConfig enables an extra logfmt file sink for development.
type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "https://api.trello.com/1",
		},
		Defaults: DefaultsConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		BoardRoots: map[string]string{},
	}
}

// Load reads the config at path over defaults. A missing or empty file
// yields the defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	if cfg.BoardRoots == nil {
		cfg.BoardRoots = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}

	switch strings.TrimSpace(strings.ToLower(c.Defaults.Format)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid defaults.format: %q", c.Defaults.Format)
	}

	if level := strings.TrimSpace(c.Logging.Level); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
		}
	}

	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Path) == "" {
		return errors.New("logging.dev_file.path is required when enabled")
	}

	for id, root := range c.BoardRoots {
		if strings.TrimSpace(id) == "" {
			return errors.New("board_roots contains an empty board id")
		}
		if strings.TrimSpace(root) == "" {
			return fmt.Errorf("board_roots[%s] has an empty path", id)
		}
	}

	return nil
}

// Save writes the config to path, creating the directory when needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	content, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode toml: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// UpsertBoardRoot links a board id to a local path and persists the config.
func UpsertBoardRoot(path string, cfg Config, boardID, root string) (Config, error) {
	boardID = strings.TrimSpace(boardID)
	root = strings.TrimSpace(root)
	if boardID == "" {
		return Config{}, errors.New("board id is required")
	}
	if root == "" {
		return Config{}, errors.New("path is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Config{}, fmt.Errorf("resolve path: %w", err)
	}

	if cfg.BoardRoots == nil {
		cfg.BoardRoots = map[string]string{}
	}
	cfg.BoardRoots[boardID] = abs
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RemoveBoardRoot unlinks a board id and persists the config. Removing an
// unknown id is not an error.
func RemoveBoardRoot(path string, cfg Config, boardID string) (Config, error) {
	boardID = strings.TrimSpace(boardID)
	if boardID == "" {
		return Config{}, errors.New("board id is required")
	}
	if cfg.BoardRoots == nil {
		cfg.BoardRoots = map[string]string{}
	}
	delete(cfg.BoardRoots, boardID)
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnsureConfigDir creates the directory holding path.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
