package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sandeepkv93/tasklist/internal/model"
	"github.com/sandeepkv93/tasklist/internal/reminder"
	"github.com/sandeepkv93/tasklist/internal/storage"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "tasks.db"
	DefaultStateName      = "tasks.json"
	DefaultLogName        = "tasklist.log"
)

type Storage struct {
	Backend   string `toml:"backend"`
	DBPath    string `toml:"db_path"`
	StatePath string `toml:"state_path"`
}

type Reminders struct {
	TickIntervalSeconds    int  `toml:"tick_interval_seconds"`
	DueSoonMinutes         int  `toml:"due_soon_minutes"`
	DueLaterMinutes        int  `toml:"due_later_minutes"`
	OverdueCooldownMinutes int  `toml:"overdue_cooldown_minutes"`
	DesktopNotifications   bool `toml:"desktop_notifications"`
	Buffer                 int  `toml:"buffer"`
}

type Config struct {
	Storage     Storage   `toml:"storage"`
	Reminders   Reminders `toml:"reminders"`
	Categories  []string  `toml:"categories"`
	DefaultSort string    `toml:"default_sort"`
	LogPath     string    `toml:"log_path"`
	LogLevel    string    `toml:"log_level"`
}

func Default() Config {
	cats := make([]string, 0, len(model.DefaultCategories))
	for _, c := range model.DefaultCategories {
		cats = append(cats, string(c))
	}
	return Config{
		Storage: Storage{
			Backend:   string(storage.BackendSQLite),
			DBPath:    DefaultDBName,
			StatePath: DefaultStateName,
		},
		Reminders: Reminders{
			TickIntervalSeconds:    30,
			DueSoonMinutes:         15,
			DueLaterMinutes:        60,
			OverdueCooldownMinutes: 30,
			DesktopNotifications:   true,
			Buffer:                 64,
		},
		Categories:  cats,
		DefaultSort: string(model.SortByCreatedAt),
		LogPath:     DefaultLogName,
		LogLevel:    "info",
	}
}

// DefaultPath is config.toml under the user config dir, or the working
// directory when that cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, "tasklist", DefaultConfigFileName)
}

// LoadOrCreate reads the TOML file at path, writing the defaults there
// first if it does not exist. Relative storage and log paths resolve
// against the config file's directory.
func LoadOrCreate(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(filepath.Dir(path)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = DefaultDBName
	}
	if cfg.Storage.StatePath == "" {
		cfg.Storage.StatePath = DefaultStateName
	}
	return cfg.resolve(filepath.Dir(path)), nil
}

func write(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c Config) resolve(base string) Config {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "file:") {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Storage.DBPath = join(c.Storage.DBPath)
	c.Storage.StatePath = join(c.Storage.StatePath)
	c.LogPath = join(c.LogPath)
	return c
}

func (c Config) Validate() error {
	var errs []error
	if _, err := storage.ParseBackend(c.Storage.Backend); err != nil {
		errs = append(errs, err)
	}
	r := c.Reminders
	if r.TickIntervalSeconds <= 0 {
		errs = append(errs, errors.New("config: reminders.tick_interval_seconds must be positive"))
	}
	if r.DueSoonMinutes <= 0 {
		errs = append(errs, errors.New("config: reminders.due_soon_minutes must be positive"))
	}
	if r.DueLaterMinutes <= r.DueSoonMinutes {
		errs = append(errs, errors.New("config: reminders.due_later_minutes must exceed due_soon_minutes"))
	}
	if r.OverdueCooldownMinutes <= 0 {
		errs = append(errs, errors.New("config: reminders.overdue_cooldown_minutes must be positive"))
	}
	if len(c.CategoryList()) == 0 {
		errs = append(errs, errors.New("config: categories must not be empty"))
	}
	if _, err := model.ParseSortKey(c.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("config: default_sort: %w", err))
	}
	return errors.Join(errs...)
}

func (c Config) Backend() storage.Backend {
	b, err := storage.ParseBackend(c.Storage.Backend)
	if err != nil {
		return storage.BackendSQLite
	}
	return b
}

// StoragePath is the file the selected backend persists to.
func (c Config) StoragePath() string {
	if c.Backend() == storage.BackendJSON {
		return c.Storage.StatePath
	}
	return c.Storage.DBPath
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Reminders.TickIntervalSeconds) * time.Second
}

func (c Config) Windows() reminder.Windows {
	return reminder.Windows{
		DueSoon:         time.Duration(c.Reminders.DueSoonMinutes) * time.Minute,
		DueLater:        time.Duration(c.Reminders.DueLaterMinutes) * time.Minute,
		OverdueCooldown: time.Duration(c.Reminders.OverdueCooldownMinutes) * time.Minute,
	}
}

// CategoryList trims, lowercases and dedupes the configured categories.
func (c Config) CategoryList() []model.Category {
	seen := make(map[model.Category]bool, len(c.Categories))
	out := make([]model.Category, 0, len(c.Categories))
	for _, raw := range c.Categories {
		cat := model.Category(strings.ToLower(strings.TrimSpace(raw)))
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

func (c Config) SortKey() model.SortKey {
	key, err := model.ParseSortKey(c.DefaultSort)
	if err != nil {
		return model.SortByCreatedAt
	}
	return key
}
