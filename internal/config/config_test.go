package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdpalette/internal/domain"
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/logging"
	"cmdpalette/internal/recent"
)

const sample = `
id = "docs"
locale = "pt-BR"
maxRecentItems = 3
allowHtmlIcons = true
linkScraperExcludeSelectors = ["nav", "footer"]

[externalSearch]
endpoint = "/search"
types = ["users", "projects"]
minChars = 2
timeoutMs = 150

[recent]
store = "memory"

[[items]]
icon = "🏠"
name = "Home"
action = "https://example.com"

[[items]]
name = "Quit"
command = "palette.quit"

[[items]]
name = "Hidden"
action = "/hidden"
visible = false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromPath(t *testing.T) {
	cfg, err := NewConfigService().LoadFromPath(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.ID)
	assert.Equal(t, "pt", cfg.Locale)
	assert.Equal(t, 3, cfg.MaxRecentItems)
	assert.True(t, cfg.AllowHTMLIcons)
	assert.Equal(t, []string{"nav", "footer"}, cfg.LinkScraperExcludeSelectors)
	assert.True(t, cfg.SearchEnabled())
	assert.Equal(t, 2, cfg.ExternalSearch.MinChars)
	assert.Equal(t, 10000, cfg.ExternalSearch.RequestTimeoutMs, "default kept")
	assert.Equal(t, StoreMemory, cfg.Recent.Store)
	require.Len(t, cfg.Items, 3)
	assert.Equal(t, "palette.quit", cfg.Items[1].Command)
	require.NotNil(t, cfg.Items[2].Visible)
	assert.False(t, *cfg.Items[2].Visible)
}

func TestLoadFromMissingPath(t *testing.T) {
	_, err := NewConfigService().LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CMDPALETTE_LOCALE", "de-AT")
	t.Setenv("CMDPALETTE_MAXRECENTITEMS", "9")

	cfg, err := NewConfigService().LoadFromPath(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Locale)
	assert.Equal(t, 9, cfg.MaxRecentItems)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := NewConfigService().Load()
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 5, cfg.MaxRecentItems)
	assert.Equal(t, DefaultID, cfg.ID)
	assert.False(t, cfg.SearchEnabled())
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		MaxRecentItems: -1,
		ExternalSearch: ExternalSearch{MinChars: 0, TimeoutMs: -5},
		Recent:         RecentSettings{Store: "redis"},
	}
	cfg.Normalize()

	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, 0, cfg.MaxRecentItems)
	assert.Equal(t, 3, cfg.ExternalSearch.MinChars)
	assert.Equal(t, 300, cfg.ExternalSearch.TimeoutMs)
	assert.Equal(t, StoreFile, cfg.Recent.Store)
	assert.Equal(t, DefaultID, cfg.ID)
}

func TestIDIsStableAcrossLoads(t *testing.T) {
	path := writeConfig(t, `locale = "en"`)
	svc := NewConfigService()

	first, err := svc.LoadFromPath(path)
	require.NoError(t, err)
	second, err := svc.LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultID, first.ID)
	assert.Equal(t, first.ID, second.ID)
}

func TestSearchConfig(t *testing.T) {
	cfg := Default()
	cfg.BaseURL = "https://app.test"
	cfg.ExternalSearch.Endpoint = "/search"
	cfg.ExternalSearch.TimeoutMs = 150

	sc := cfg.SearchConfig()
	assert.Equal(t, "/search", sc.Endpoint)
	assert.Equal(t, "https://app.test", sc.BaseURL)
	assert.Equal(t, 150*time.Millisecond, sc.Debounce)
	assert.Equal(t, 10*time.Second, sc.RequestTimeout)
}

func TestDomainItems(t *testing.T) {
	cfg, err := NewConfigService().LoadFromPath(writeConfig(t, sample+`
[[items]]
name = "Ghost"
command = "missing"

[[items]]
action = "/nameless"
`))
	require.NoError(t, err)

	called := false
	lookup := func(name string) (func() error, bool) {
		if name == "palette.quit" {
			return func() error { called = true; return nil }, true
		}
		return nil, false
	}

	items := cfg.DomainItems(lookup, logging.Discard())
	require.Len(t, items, 3)
	assert.Equal(t, domain.Navigate("https://example.com"), items[0].Action)
	assert.Equal(t, domain.ActionInvoke, items[1].Action.Kind)
	require.NoError(t, items[1].Action.Fn())
	assert.True(t, called)
	assert.True(t, items[2].Hidden)
}

func TestSaveToPathRoundTrip(t *testing.T) {
	bus := &recordingBus{}
	svc := NewConfigServiceWithBus(bus)
	path := filepath.Join(t.TempDir(), "nested", FileName)

	example := Example()
	require.NoError(t, svc.SaveToPath(example, path))
	loaded, err := svc.LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, example.ID, loaded.ID)
	_, err = uuid.Parse(loaded.ID)
	assert.NoError(t, err)
	assert.Equal(t, Example().ExternalSearch, loaded.ExternalSearch)
	assert.Len(t, loaded.Items, len(Example().Items))
	require.Len(t, bus.events, 1)
	assert.Equal(t, eventbus.ConfigSavedEvent{Path: path}, bus.events[0])
}

func TestOpenRecentStore(t *testing.T) {
	dir := t.TempDir()
	for _, kind := range []string{StoreMemory, StoreFile, StoreSQLite} {
		t.Run(kind, func(t *testing.T) {
			cfg := Default()
			cfg.Recent.Store = kind
			cfg.Recent.Path = filepath.Join(dir, kind, "recent.db")
			if kind == StoreFile {
				cfg.Recent.Path = filepath.Join(dir, kind)
			}

			store, closeFn, err := cfg.OpenRecentStore()
			require.NoError(t, err)
			defer closeFn()

			require.NoError(t, store.Set("k", []byte("[]")))
			got, err := store.Get("k")
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))
			_, err = store.Get("other")
			assert.ErrorIs(t, err, recent.ErrNotFound)
		})
	}
}

type recordingBus struct {
	events []eventbus.DomainEvent
}

func (b *recordingBus) Publish(event eventbus.DomainEvent) {
	b.events = append(b.events, event)
}

func (b *recordingBus) Subscribe(eventbus.EventType, eventbus.EventHandler) func() {
	return func() {}
}
