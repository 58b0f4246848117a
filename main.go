package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"cmdpalette/internal/config"
	"cmdpalette/internal/domain"
	"cmdpalette/internal/eventbus"
	"cmdpalette/internal/harvest"
	"cmdpalette/internal/logging"
	"cmdpalette/internal/palette"
	"cmdpalette/internal/recent"
	"cmdpalette/internal/remote"
	"cmdpalette/internal/ui"
)

const harvestTimeout = 10 * time.Second

func main() {
	// Parse command line arguments
	configPath := pflag.StringP("config", "c", "", "Path to the config file (default: ./"+config.FileName+")")
	initConfig := pflag.Bool("init", false, "Write an example config file and exit")
	openOnStart := pflag.BoolP("open", "o", false, "Open the palette on start")
	source := pflag.StringP("source", "s", "", "HTML page to harvest links from (overrides linkScraperSource)")
	debug := pflag.BoolP("debug", "d", false, "Enable debug logging")
	pflag.Parse()

	if *initConfig {
		path := *configPath
		if path == "" {
			path = config.FileName
		}
		if err := config.NewConfigService().SaveToPath(config.Example(), path); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote example config to %s\n", path)
		return
	}

	// The TUI owns the terminal, so logs go to a file
	var logOut io.Writer = io.Discard
	logFile, err := os.OpenFile("cmdpalette.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		defer logFile.Close()
		logOut = logFile
	}

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(logOut, *debug)
	bus := eventbus.New(logger)
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus)
	cfg, err := loadConfig(configSvc, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}
	if *source != "" {
		cfg.EnableLinksScraper = true
		cfg.LinkScraperSource = *source
	}
	cfg.Normalize()

	logging.SetDebug(logger, cfg.Debug)
	logger.Info("Starting", "id", cfg.ID, "locale", cfg.Locale, "items", len(cfg.Items))

	store, closeStore, err := cfg.OpenRecentStore()
	if err != nil {
		logger.Error("Could not open recent store, falling back to memory", "err", err)
		store = recent.NewMemoryStore()
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("Closing recent store failed", "err", err)
		}
	}()

	recentCache := recent.New(cfg.ID, cfg.MaxRecentItems, store, logger, recent.WithResolver(rebindCommand))

	items := cfg.DomainItems(ui.LookupCommand, logger)
	harvested := 0
	if cfg.EnableLinksScraper && cfg.LinkScraperSource != "" {
		links, err := harvestLinks(ctx, cfg, items, logger)
		if err != nil {
			logger.Error("Link harvesting failed", "source", cfg.LinkScraperSource, "err", err)
		} else {
			harvested = len(links)
			items = append(items, links...)
		}
	}

	fwd := &ui.Forwarder{}

	pcfg := palette.Config{
		ID:       cfg.ID,
		Items:    items,
		Locale:   cfg.Locale,
		Recent:   recentCache,
		Dispatch: fwd.Dispatch,
		Bus:      bus,
		Logger:   logger,
	}
	var searchTypes []string
	if cfg.SearchEnabled() {
		client := remote.New(cfg.SearchConfig(), nil, logger)
		pcfg.Searcher = client
		searchTypes = cfg.ExternalSearch.Types
		defer client.Cancel()
	}
	ctrl := palette.New(pcfg)

	registry := palette.NewRegistry()
	if err := registry.Register(ctrl); err != nil {
		logger.Error("Registering palette failed", "err", err)
	}
	defer registry.Remove(ctrl.ID())

	var opener ui.Opener = ui.SystemOpener{}
	if os.Getenv(ui.E2EEnv) == "1" {
		opener = &ui.RecordingOpener{}
	}

	uiModel := ui.NewModel(ui.Options{
		Controller:       ctrl,
		Recent:           recentCache,
		BaseURL:          cfg.BaseURL,
		AllowMarkupIcons: cfg.AllowHTMLIcons,
		SearchTypes:      searchTypes,
		Opener:           opener,
		Logger:           logger,
		OpenOnStart:      *openOnStart,
	})

	p := tea.NewProgram(uiModel,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	uiModel.SetProgram(p)
	fwd.Attach(p)

	// Forward the events the UI reports in its status line
	forward := func(e eventbus.DomainEvent) { fwd.Send(ui.EventMsg{Event: e}) }
	for _, t := range []eventbus.EventType{
		eventbus.EventLinksHarvested,
		eventbus.EventRemoteSearchFailed,
		eventbus.EventConfigSaved,
	} {
		bus.Subscribe(t, forward)
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventPaletteOpened,
		eventbus.EventPaletteClosed,
		eventbus.EventItemSelected,
		eventbus.EventSearchModeEntered,
		eventbus.EventSearchModeExited,
	} {
		bus.Subscribe(t, func(e eventbus.DomainEvent) {
			logger.Debug("Event", "type", e.Type(), "event", fmt.Sprintf("%+v", e))
		})
	}

	if harvested > 0 {
		bus.Publish(eventbus.LinksHarvestedEvent{PaletteID: ctrl.ID(), Count: harvested})
	}

	// Run the UI
	logger.Info("Starting UI")
	if _, err := p.Run(); err != nil {
		logger.Error("Error running program", "err", err)
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("UI exited normally")
}

// loadConfig reads the config from path, or from the default locations when
// path is empty
func loadConfig(svc config.ConfigService, path string) (*config.Config, error) {
	if path == "" {
		return svc.Load()
	}
	return svc.LoadFromPath(path)
}

// rebindCommand reattaches callbacks to invoke actions restored from the
// recent store and drops commands that no longer exist
func rebindCommand(item domain.Item) (domain.Item, bool) {
	if item.Action.Kind != domain.ActionInvoke {
		return item, true
	}
	fn, ok := ui.LookupCommand(item.Action.Command)
	if !ok {
		return item, false
	}
	item.Action.Fn = fn
	return item, true
}

func harvestLinks(ctx context.Context, cfg *config.Config, existing []domain.Item, logger *log.Logger) ([]domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, harvestTimeout)
	defer cancel()

	doc, err := harvest.LoadDocument(ctx, cfg.LinkScraperSource, cfg.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	links := harvest.Scrape(doc, existing, cfg.LinkScraperExcludeSelectors, harvest.Options{
		HeadingSubtitles: cfg.LinkScraperHeadingSubtitles,
		Logger:           logger,
	})
	logger.Info("Harvested links", "source", cfg.LinkScraperSource, "count", len(links))
	return links, nil
}
