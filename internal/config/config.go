package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/i18n"
	"cmdpalette/internal/recent"
	"cmdpalette/internal/remote"
)

// FileName is the config file looked up in the working and user config directories
const FileName = "cmdpalette.toml"

// EnvPrefix prefixes environment overrides, e.g. CMDPALETTE_LOCALE
const EnvPrefix = "CMDPALETTE"

// DefaultID keys the recent cache when the config names no instance id
const DefaultID = "main"

// Recent store kinds
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Config represents the palette configuration
type Config struct {
	ID                          string         `mapstructure:"id" toml:"id,omitempty"`
	Locale                      string         `mapstructure:"locale" toml:"locale"`
	Debug                       bool           `mapstructure:"debug" toml:"debug"`
	AllowHTMLIcons              bool           `mapstructure:"allowHtmlIcons" toml:"allowHtmlIcons"`
	EnableLinksScraper          bool           `mapstructure:"enableLinksScraper" toml:"enableLinksScraper"`
	LinkScraperExcludeSelectors []string       `mapstructure:"linkScraperExcludeSelectors" toml:"linkScraperExcludeSelectors"`
	LinkScraperSource           string         `mapstructure:"linkScraperSource" toml:"linkScraperSource,omitempty"`
	LinkScraperHeadingSubtitles bool           `mapstructure:"linkScraperHeadingSubtitles" toml:"linkScraperHeadingSubtitles"`
	MaxRecentItems              int            `mapstructure:"maxRecentItems" toml:"maxRecentItems"`
	BaseURL                     string         `mapstructure:"baseUrl" toml:"baseUrl,omitempty"`
	ExternalSearch              ExternalSearch `mapstructure:"externalSearch" toml:"externalSearch"`
	Recent                      RecentSettings `mapstructure:"recent" toml:"recent"`
	Items                       []ItemConfig   `mapstructure:"items" toml:"items"`
}

// ExternalSearch configures the remote search endpoint. An empty endpoint
// disables remote search.
type ExternalSearch struct {
	Endpoint         string   `mapstructure:"endpoint" toml:"endpoint"`
	Types            []string `mapstructure:"types" toml:"types"`
	MinChars         int      `mapstructure:"minChars" toml:"minChars"`
	TimeoutMs        int      `mapstructure:"timeoutMs" toml:"timeoutMs"`
	RequestTimeoutMs int      `mapstructure:"requestTimeoutMs" toml:"requestTimeoutMs"`
}

// RecentSettings selects where recent items are kept
type RecentSettings struct {
	Store string `mapstructure:"store" toml:"store"`
	Path  string `mapstructure:"path" toml:"path,omitempty"`
}

// ItemConfig is an item as written in the config file. Action is a URL;
// Command names a built-in callback.
type ItemConfig struct {
	Icon     string `mapstructure:"icon" toml:"icon,omitempty"`
	Name     string `mapstructure:"name" toml:"name"`
	Subtitle string `mapstructure:"subtitle" toml:"subtitle,omitempty"`
	Action   string `mapstructure:"action" toml:"action,omitempty"`
	Command  string `mapstructure:"command" toml:"command,omitempty"`
	Visible  *bool  `mapstructure:"visible" toml:"visible,omitempty"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus eventbus.EventBus
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	return &configService{}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	return &configService{bus: bus}
}

// Load reads cmdpalette.toml from the working directory or the user config
// directory. A missing file yields the defaults.
func (cs *configService) Load() (*Config, error) {
	v := newViper()
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "cmdpalette"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return decode(v)
}

// SaveToPath writes the configuration as TOML
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: path})
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault("id", d.ID)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("allowHtmlIcons", d.AllowHTMLIcons)
	v.SetDefault("enableLinksScraper", d.EnableLinksScraper)
	v.SetDefault("linkScraperExcludeSelectors", d.LinkScraperExcludeSelectors)
	v.SetDefault("linkScraperSource", d.LinkScraperSource)
	v.SetDefault("linkScraperHeadingSubtitles", d.LinkScraperHeadingSubtitles)
	v.SetDefault("maxRecentItems", d.MaxRecentItems)
	v.SetDefault("baseUrl", d.BaseURL)
	v.SetDefault("externalSearch.endpoint", d.ExternalSearch.Endpoint)
	v.SetDefault("externalSearch.types", d.ExternalSearch.Types)
	v.SetDefault("externalSearch.minChars", d.ExternalSearch.MinChars)
	v.SetDefault("externalSearch.timeoutMs", d.ExternalSearch.TimeoutMs)
	v.SetDefault("externalSearch.requestTimeoutMs", d.ExternalSearch.RequestTimeoutMs)
	v.SetDefault("recent.store", d.Recent.Store)
	v.SetDefault("recent.path", d.Recent.Path)

	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Locale:         i18n.DefaultLocale,
		MaxRecentItems: 5,
		ExternalSearch: ExternalSearch{
			MinChars:         remote.DefaultMinChars,
			TimeoutMs:        int(remote.DefaultDebounce / time.Millisecond),
			RequestTimeoutMs: int(remote.DefaultRequestTimeout / time.Millisecond),
		},
		Recent: RecentSettings{Store: StoreFile},
	}
}

// Normalize fills in derived defaults and clamps out of range values
func (c *Config) Normalize() {
	c.Locale = i18n.NormalizeLocale(c.Locale)
	if strings.TrimSpace(c.ID) == "" {
		c.ID = DefaultID
	}
	if c.MaxRecentItems < 0 {
		c.MaxRecentItems = 0
	}
	if c.ExternalSearch.MinChars < 1 {
		c.ExternalSearch.MinChars = remote.DefaultMinChars
	}
	if c.ExternalSearch.TimeoutMs < 0 {
		c.ExternalSearch.TimeoutMs = int(remote.DefaultDebounce / time.Millisecond)
	}
	if c.ExternalSearch.RequestTimeoutMs <= 0 {
		c.ExternalSearch.RequestTimeoutMs = int(remote.DefaultRequestTimeout / time.Millisecond)
	}
	switch c.Recent.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		c.Recent.Store = StoreFile
	}
}

// SearchEnabled reports whether an endpoint is configured
func (c *Config) SearchEnabled() bool {
	return strings.TrimSpace(c.ExternalSearch.Endpoint) != ""
}

// SearchConfig converts the external search settings for the remote client
func (c *Config) SearchConfig() remote.Config {
	es := c.ExternalSearch
	return remote.Config{
		Endpoint:       es.Endpoint,
		BaseURL:        c.BaseURL,
		Types:          es.Types,
		MinChars:       es.MinChars,
		Debounce:       time.Duration(es.TimeoutMs) * time.Millisecond,
		RequestTimeout: time.Duration(es.RequestTimeoutMs) * time.Millisecond,
	}
}

// CommandLookup resolves a command name to its callback
type CommandLookup func(name string) (func() error, bool)

// DomainItems converts the configured items. Items without a name and items
// naming an unknown command are skipped with a warning.
func (c *Config) DomainItems(lookup CommandLookup, logger *log.Logger) []domain.Item {
	if logger == nil {
		logger = log.Default()
	}
	items := make([]domain.Item, 0, len(c.Items))
	for _, ic := range c.Items {
		if strings.TrimSpace(ic.Name) == "" {
			logger.Warn("Skipping item without a name", "action", ic.Action, "command", ic.Command)
			continue
		}

		item := domain.Item{Icon: ic.Icon, Name: ic.Name, Subtitle: ic.Subtitle}
		switch {
		case ic.Command != "":
			fn, ok := lookup(ic.Command)
			if !ok {
				logger.Warn("Skipping item with unknown command", "name", ic.Name, "command", ic.Command)
				continue
			}
			item.Action = domain.Invoke(ic.Command, fn)
		case ic.Action != "":
			item.Action = domain.Navigate(ic.Action)
		}
		if ic.Visible != nil && !*ic.Visible {
			item.Hidden = true
		}
		items = append(items, item)
	}
	return items
}

// RecentStorePath returns where the recent store lives, defaulting to the
// user cache directory
func (c *Config) RecentStorePath() string {
	if c.Recent.Path != "" {
		return c.Recent.Path
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "cmdpalette")
	if c.Recent.Store == StoreSQLite {
		return filepath.Join(dir, "recent.db")
	}
	return dir
}

// OpenRecentStore opens the configured store. The returned close function
// is never nil.
func (c *Config) OpenRecentStore() (recent.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Recent.Store {
	case StoreMemory:
		return recent.NewMemoryStore(), noop, nil
	case StoreSQLite:
		path := c.RecentStorePath()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, noop, fmt.Errorf("failed to create store directory: %w", err)
		}
		s, err := recent.OpenSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return recent.NewFileStore(c.RecentStorePath()), noop, nil
	}
}

// Example returns the config written by --init. It carries a fresh uuid so
// palettes initialised in different directories keep separate recent lists.
func Example() *Config {
	cfg := Default()
	cfg.ID = uuid.NewString()
	cfg.LinkScraperExcludeSelectors = []string{"nav", ".cmdk-ignore"}
	cfg.ExternalSearch = ExternalSearch{
		Endpoint:         "http://localhost:8080/search",
		Types:            []string{"users", "projects", "documents"},
		MinChars:         remote.DefaultMinChars,
		TimeoutMs:        int(remote.DefaultDebounce / time.Millisecond),
		RequestTimeoutMs: int(remote.DefaultRequestTimeout / time.Millisecond),
	}
	cfg.Items = []ItemConfig{
		{Icon: "🏠", Name: "Home", Subtitle: "Go to the home page", Action: "https://example.com"},
		{Icon: "⚙️", Name: "Settings", Subtitle: "Application settings", Action: "/settings"},
		{Icon: "📧", Name: "Contact Us", Subtitle: "Send an email", Action: "mailto:contact@example.com"},
		{Icon: "📞", Name: "Call Support", Subtitle: "Call our support team", Action: "tel:+1234567890"},
		{Icon: "❓", Name: "Help", Subtitle: "Show key bindings", Command: "palette.help"},
		{Icon: "🧹", Name: "Clear recent items", Command: "palette.clear-recent"},
		{Icon: "🚪", Name: "Quit", Command: "palette.quit"},
	}
	return cfg
}
