// Copyright 2025 The Nascast Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the nascast search widget as an IPC server or a CLI.

nascast-search loads the static search index produced by the catalog
generator, then answers UI events from a host front end. Typing is debounced,
matches are grouped into movies, series and episodes, and the results are
rendered as escaped markup the host can drop into its page.

# Usage

Serve a host over stdin/stdout, reading the index from ./site:

	nascast-search -base site

Fetch the index from a deployed static site and expose metrics:

	nascast-search -base https://media.example.com/ -metrics :9090

Run interactively in a terminal:

	nascast-search -c -d

# Configuration

Settings live in a TOML file created with defaults on first run:

	[index]
	path = "search-index.json"
	base_url = ""
	timeout_ms = 0

	[search]
	debounce_ms = 300
	min_query_len = 2
	limit = 20
	episode_cap = 10

	[render]
	placeholder_url = "placeholder.svg"

	[server]
	metrics_addr = ""

	[cli]
	color = true

Flags override the file for a single run.

# IPC Protocol

Frames are MessagePack maps, one per message. See package server for the
event list. Logs go to stderr in this mode since stdout carries frames.

# Command Line Flags

	-config string   config file (default [UserConfigDir]/nascast/config.toml)
	-index string    index path relative to the base
	-base string     directory or http(s) URL the index path resolves against
	-page string     host page markup to bind the widget to
	-metrics string  listen address for /metrics
	-d               debug logging
	-c               run the CLI instead of the IPC server
	-reset-config    rewrite the default config file and exit
	-version         print the version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bastiangx/nascast/internal/cli"
	"github.com/bastiangx/nascast/internal/logger"
	"github.com/bastiangx/nascast/internal/utils"
	"github.com/bastiangx/nascast/pkg/config"
	"github.com/bastiangx/nascast/pkg/controller"
	"github.com/bastiangx/nascast/pkg/loader"
	"github.com/bastiangx/nascast/pkg/metrics"
	"github.com/bastiangx/nascast/pkg/page"
	"github.com/bastiangx/nascast/pkg/playback"
	"github.com/bastiangx/nascast/pkg/render"
	"github.com/bastiangx/nascast/pkg/search"
	"github.com/bastiangx/nascast/pkg/server"
	"github.com/bastiangx/nascast/pkg/textindex"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Version = "0.4.0"
	AppName = "nascast-search"
)

// inertView stands in for the results container when the page has none.
type inertView struct{}

func (inertView) Render(search.GroupedResult, string) {}
func (inertView) Hide()                               {}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults := config.DefaultConfig()
	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to config.toml")
	indexPath := flag.String("index", defaults.Index.Path, "Index path relative to the base")
	baseURL := flag.String("base", defaults.Index.BaseURL, "Directory or http(s) URL the index path resolves against")
	pagePath := flag.String("page", "", "Host page markup to bind the widget to (built-in page when empty)")
	metricsAddr := flag.String("metrics", defaults.Server.MetricsAddr, "Listen address for /metrics (disabled when empty)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	resetConfig := flag.Bool("reset-config", false, "Rewrite the default config file with built-in defaults")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		path, _ := config.GetDefaultConfigPath()
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", path)
		return
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	if !*cliMode {
		logger.SetOutput(os.Stderr)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "index":
			cfg.Index.Path = *indexPath
		case "base":
			cfg.Index.BaseURL = *baseURL
		case "metrics":
			cfg.Server.MetricsAddr = *metricsAddr
		}
	})

	if cfg.Server.MetricsAddr != "" {
		serveMetrics(cfg.Server.MetricsAddr)
	}

	fetcher, err := newFetcher(cfg.Index)
	if err != nil {
		log.Fatalf("Failed to set up index fetch: %v", err)
	}

	adapter := textindex.NewAdapter(nil)
	ld := loader.New(fetcher, cfg.Index.Path, adapter)
	ld.Start(ctx)

	host, err := loadPage(*pagePath)
	if err != nil {
		log.Warnf("Search widget disabled: %v", err)
	}

	var view search.View = inertView{}
	var results server.View
	if host != nil {
		r, err := render.New(host.Results(), render.Options{
			PlaceholderURL: cfg.Render.PlaceholderURL,
			Locker:         host.Locker(),
		})
		if err != nil {
			log.Fatalf("Failed to set up renderer: %v", err)
		}
		view, results = r, r
	}

	svc := search.NewService(ld, adapter, view, search.Options{
		Debounce:    cfg.Search.Debounce(),
		MinQueryLen: cfg.Search.MinQueryLen,
		Limit:       cfg.Search.Limit,
		EpisodeCap:  cfg.Search.EpisodeCap,
	})
	ctrl := controller.Init(host, svc, controller.DefaultOptions())

	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(ctrl, svc, host, cli.NewPrinter(os.Stdout, cfg.CLI.Color), os.Stdin)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	srv := server.NewServer(server.Deps{
		Service:    svc,
		Controller: ctrl,
		Page:       host,
		View:       results,
		Logger:     logger.NewWithConfig("server", log.GetLevel(), *debugMode, *debugMode, log.TextFormatter),
	}, os.Stdin, os.Stdout)
	bridge := playback.NewBridge(srv.Session(), nil)
	bridge.Attach(ctx, srv.MediaURL)

	showStartupInfo(cfg)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Server error: %v", err)
	}
}

// newFetcher resolves where the index lives. Without a base, the site
// directory is searched for next to the working directory and the binary.
func newFetcher(cfg config.IndexConfig) (loader.Fetcher, error) {
	base := cfg.BaseURL
	lower := strings.ToLower(base)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		dir, err := utils.ResolveSiteDir(base, cfg.Path)
		if err != nil {
			log.Warnf("Could not locate %s: %v", cfg.Path, err)
		} else {
			base = dir
		}
	}
	log.Debugf("Index %s from base %q", cfg.Path, base)
	return loader.NewFetcher(base, cfg.Timeout())
}

func loadPage(path string) (*page.Page, error) {
	if path == "" {
		return page.ParseString(page.DefaultMarkup, page.DefaultSelectors())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer f.Close()
	return page.Parse(f, page.DefaultSelectors())
}

func serveMetrics(addr string) {
	metrics.Register(prometheus.DefaultRegisterer)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics listener stopped: %v", err)
		}
	}()
	log.Debugf("Serving metrics on %s", addr)
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ nascast ] instant search for your media library")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
}

// showStartupInfo writes a short banner to stderr.
func showStartupInfo(cfg *config.Config) {
	current := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(current)

	banner := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"}).
		Render(" " + AppName + " ")
	fmt.Fprintln(os.Stderr, banner)
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("index: ( %s )", cfg.Index.Path)
	log.Info("status: ready")
}
