// Package main is the Sakuin CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hyperjump/sakuin/internal/cli"
	"github.com/hyperjump/sakuin/internal/config"
	"github.com/hyperjump/sakuin/internal/discover"
	"github.com/hyperjump/sakuin/internal/extract"
	"github.com/hyperjump/sakuin/internal/history"
	"github.com/hyperjump/sakuin/internal/index"
	"github.com/hyperjump/sakuin/internal/metrics"
	"github.com/hyperjump/sakuin/internal/models"
	"github.com/hyperjump/sakuin/internal/search"
	"github.com/hyperjump/sakuin/internal/server"
	"github.com/hyperjump/sakuin/internal/snapshot"
	"github.com/hyperjump/sakuin/internal/watch"
	"github.com/hyperjump/sakuin/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/sakuin/config.yaml"
	defaultServerURL  = "http://127.0.0.1:8000"
)

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists it
// is used, so that "sakuin server" from the project dir picks up the project's
// config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "refresh":
		runRefresh()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("sakuin version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (discovery, extraction, refresh detail)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var hist server.HistoryStore
	if components.History != nil {
		hist = components.History
	}
	met := metrics.New(prometheus.DefaultRegisterer)
	srv := server.NewServer(
		components.Engine,
		components.Refresher,
		components.Holder,
		hist,
		met,
		cfg,
		logger,
	)

	// Build or load the index before accepting traffic.
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Minute)
	if _, err := srv.RunRefresh(startCtx); err != nil {
		startCancel()
		logger.Fatal("Initial refresh failed", zap.Error(err))
	}
	startCancel()

	if cfg.Watch.Enabled {
		w := watch.NewWatcher(
			cfg.Index.Directories,
			cfg.Index.Extensions,
			srv.HandleCorpusChange,
			watch.WithLogger(logger),
			watch.WithDebounce(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond),
		)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runRefresh() {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = refresh locally without a server)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := parseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *serverURL != "" {
		stats, err := refreshViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Refresh failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteRefreshStats(os.Stdout, stats, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	_, stats, err := components.Refresher.Refresh(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Refresh failed: %v\n", err)
		os.Exit(1)
	}
	if components.History != nil {
		if herr := components.History.RecordRefresh(ctx, stats); herr != nil {
			logger.Warn("failed to record refresh history", zap.Error(herr))
		}
	}
	if err := cli.WriteRefreshStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the
// query to the front of the slice so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument, so `sakuin search "query"
// -limit 5` would otherwise leave -limit unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseOutputFormat(s string) (cli.OutputFormat, error) {
	switch s {
	case "text":
		return cli.OutputText, nil
	case "json":
		return cli.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: sakuin search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  sakuin search quarterly report
  sakuin search "quarterly report"        # same as above
  sakuin search -limit 20 budget
  sakuin search -output json budget       # parseable output
  sakuin search -output compact budget    # one result per line
  sakuin search -server "" budget         # read the snapshot directly
`)
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the snapshot directly)")
	limit := fs.Int("limit", 0, "number of results (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}
	var format cli.OutputFormat
	switch *outputFormat {
	case "text":
		format = cli.OutputText
	case "compact":
		format = cli.OutputCompact
	case "json":
		format = cli.OutputJSON
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text, compact, or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		response, err := searchViaHTTP(*serverURL, queryStr, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct mode: serve the query from the persisted snapshot without a
	// running server.
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store := snapshot.NewStore(cfg.Storage.SnapshotPath, snapshot.WithLogger(logger))
	model := store.Load()
	if model == nil {
		fmt.Fprintf(os.Stderr, "No usable index snapshot at %s; run 'sakuin refresh' first\n", cfg.Storage.SnapshotPath)
		os.Exit(1)
	}
	engine := search.NewEngine(index.NewHolder(model), &cfg.Search, search.WithLogger(logger))

	response, err := engine.Search(&models.SearchQuery{Query: queryStr, Limit: *limit})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, query string, limit int) (*models.SearchResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	resp, err := http.Get(serverURL + "/api/v1/search?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func refreshViaHTTP(serverURL string) (*models.RefreshStats, error) {
	resp, err := http.Post(serverURL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var stats models.RefreshStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &stats, nil
}

// statusResponse is the shape of GET /api/v1/status, shared by the direct
// mode so both render identically.
type statusResponse struct {
	Documents      int        `json:"documents"`
	Terms          int        `json:"terms"`
	BuiltAt        *time.Time `json:"built_at,omitempty"`
	Directories    []string   `json:"directories,omitempty"`
	SnapshotPath   string     `json:"snapshot_path,omitempty"`
	DiskUsageBytes *int64     `json:"disk_usage_bytes,omitempty"`
	TotalSearches  *int64     `json:"total_searches,omitempty"`
	TotalRefreshes *int64     `json:"total_refreshes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the snapshot directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		model := snapshot.NewStore(cfg.Storage.SnapshotPath, snapshot.WithLogger(logger)).Load()
		status = statusResponse{
			Documents:    model.Len(),
			Terms:        model.Terms(),
			Directories:  cfg.Index.Directories,
			SnapshotPath: cfg.Storage.SnapshotPath,
		}
		if model != nil {
			builtAt := model.BuiltAt
			status.BuiltAt = &builtAt
		}
		if usage, err := utils.DiskUsageBytes(cfg.Storage.SnapshotPath, cfg.Storage.HistoryPath); err == nil {
			status.DiskUsageBytes = &usage
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:        %d\n", status.Documents)
		fmt.Printf("terms:            %d\n", status.Terms)
		if status.BuiltAt != nil {
			fmt.Printf("built_at:         %s\n", status.BuiltAt.Format(time.RFC3339))
		}
		if status.SnapshotPath != "" {
			fmt.Printf("snapshot_path:    %s\n", status.SnapshotPath)
		}
		for _, d := range status.Directories {
			fmt.Printf("directory:        %s\n", d)
		}
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d\n", *status.DiskUsageBytes)
		}
		if status.TotalSearches != nil {
			fmt.Printf("total_searches:   %d\n", *status.TotalSearches)
		}
		if status.TotalRefreshes != nil {
			fmt.Printf("total_refreshes:  %d\n", *status.TotalRefreshes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Scanner   *discover.Scanner
	Extractor *extract.Extractor
	Snapshot  *snapshot.Store
	Refresher *index.Refresher
	Holder    *index.Holder
	Engine    *search.Engine
	History   *history.Store
}

func (c *Components) Close() {
	if c.History != nil {
		_ = c.History.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store := snapshot.NewStore(cfg.Storage.SnapshotPath, snapshot.WithLogger(logger))
	scanner := discover.NewScanner(cfg.Index.Extensions, discover.WithLogger(logger))
	extractor := extract.NewExtractor()
	refresher := index.NewRefresher(
		cfg.Index.Directories,
		store,
		extractor,
		scanner,
		index.WithLogger(logger),
		index.WithWorkers(cfg.Index.ExtractWorkers),
	)
	holder := index.NewHolder(nil)
	engine := search.NewEngine(holder, &cfg.Search, search.WithLogger(logger))

	components := &Components{
		Scanner:   scanner,
		Extractor: extractor,
		Snapshot:  store,
		Refresher: refresher,
		Holder:    holder,
		Engine:    engine,
	}

	if cfg.Storage.HistoryEnabledOrDefault() {
		hist, err := history.NewStore(cfg.Storage.HistoryPath)
		if err != nil {
			// The activity log is a convenience; losing it never blocks
			// indexing or search.
			logger.Warn("history disabled", zap.Error(err))
		} else {
			components.History = hist
		}
	}

	return components, nil
}

func printUsage() {
	fmt.Println(`sakuin - Local document search engine

Usage:
  sakuin server [flags]            Start the HTTP server
  sakuin refresh [flags]           Rebuild the index from the configured directories
  sakuin search [flags] <query>    Search indexed documents
  sakuin status [flags]            Show index status
  sakuin version                   Show version
  sakuin help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/sakuin/config.yaml)
  --debug            Enable debug logging (discovery, extraction, refresh detail)

Refresh Flags:
  --config string    Config file path
  --server string    Server URL; set to ask a running server to refresh (default: refresh locally)
  --output string    Output format: text or json (default: text)

Search Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://127.0.0.1:8000). Use --server "" to read the snapshot directly.
  --limit int        Number of results (default: server default)
  --output string    Output format: text, compact, or json (default: text)

Status Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL (default: http://127.0.0.1:8000). Use --server "" to read the snapshot directly.
  --output string    Output format: text or json (default: text)

Examples:
  sakuin refresh
  sakuin server
  sakuin search quarterly report
  sakuin search -output json "quarterly report"
  sakuin search -server "" -limit 20 budget
  sakuin status -output json`)
}
