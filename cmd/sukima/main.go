// Package main is the Sukima CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/sukima/internal/analysis"
	"github.com/hyperjump/sukima/internal/bot"
	"github.com/hyperjump/sukima/internal/cli"
	"github.com/hyperjump/sukima/internal/config"
	"github.com/hyperjump/sukima/internal/extract"
	"github.com/hyperjump/sukima/internal/prompt"
	"github.com/hyperjump/sukima/internal/server"
	"github.com/hyperjump/sukima/internal/session"
	"github.com/hyperjump/sukima/pkg/utils"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/sukima/config.yaml"
	apiKeyEnv         = "SUKIMA_ANALYSIS_KEY"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "sukima server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for the reload watcher).
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
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("sukima version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// limitsFrom maps the reloadable analysis settings onto bot limits.
func limitsFrom(cfg *config.Config) bot.Limits {
	return bot.Limits{
		AnalysisTimeout:  cfg.Analysis.Timeout(),
		MaxDocumentChars: cfg.Analysis.MaxDocumentChars,
		DefaultObjective: cfg.Analysis.DefaultObjective,
	}
}

// newStore builds the session store selected by cfg.Storage.Backend.
func newStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		return session.NewSQLiteStore(cfg.Storage.DatabasePath)
	default:
		return session.NewMemoryStore(), nil
	}
}

func newAnalysisClient(cfg *config.Config, logger *zap.Logger) (*analysis.Client, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", apiKeyEnv)
	}
	return analysis.NewClient(analysis.Config{
		Endpoint:   cfg.Analysis.Endpoint,
		APIKey:     apiKey,
		Deployment: cfg.Analysis.Deployment,
		APIVersion: cfg.Analysis.APIVersion,
		Timeout:    cfg.Analysis.Timeout(),
	}, logger)
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (events, extraction, analysis calls)")
	_ = fs.Parse(os.Args[2:])

	_ = godotenv.Load()

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

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}

	client, err := newAnalysisClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create analysis client", zap.Error(err))
	}

	store, err := newStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer store.Close()

	downloader := bot.NewHTTPDownloader(cfg.Download.Timeout(), cfg.Download.MaxBytes)
	b := bot.New(store, extract.NewExtractor(), client, downloader, limitsFrom(cfg), logger)

	watchOpts := []config.WatcherOption{}
	if debugMode {
		watchOpts = append(watchOpts, config.WithLogger(logger))
	}
	watchSvc := config.NewWatcher(resolvedConfigPath, func(newCfg *config.Config) {
		b.UpdateLimits(limitsFrom(newCfg))
		logger.Info("bot limits updated",
			zap.Duration("analysis_timeout", newCfg.Analysis.Timeout()),
			zap.Int("max_document_chars", newCfg.Analysis.MaxDocumentChars))
	}, watchOpts...)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Warn("Config watcher failed to start, hot reload disabled", zap.Error(err))
	}

	srv := server.NewServer(b, store, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchSvc.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	docAPath := fs.String("a", "", "path to document A (the source: job posting, requirements)")
	docBPath := fs.String("b", "", "path to document B (the target: CV, profile)")
	objective := fs.String("objective", "", "analysis objective (empty uses the configured default)")
	format := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *docAPath == "" || *docBPath == "" {
		fmt.Println("Both -a and -b are required")
		fs.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client, err := newAnalysisClient(cfg, logger)
	if err != nil {
		fmt.Printf("Failed to create analysis client: %v\n", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor()
	docA, err := extractFile(extractor, *docAPath)
	if err != nil {
		fmt.Printf("Failed to read document A: %v\n", err)
		os.Exit(1)
	}
	docB, err := extractFile(extractor, *docBPath)
	if err != nil {
		fmt.Printf("Failed to read document B: %v\n", err)
		os.Exit(1)
	}

	builder := prompt.NewBuilder(cfg.Analysis.MaxDocumentChars, cfg.Analysis.DefaultObjective)
	payload, err := builder.Build(docA, docB, *objective)
	if err != nil {
		fmt.Printf("Failed to build prompt: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Analysis.Timeout())
	defer cancel()
	result, err := client.Analyze(ctx, payload)
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	if err := cli.WriteAnalysisResult(os.Stdout, result, cli.OutputFormat(*format)); err != nil {
		fmt.Printf("Failed to write result: %v\n", err)
		os.Exit(1)
	}
}

// extractFile reads a local file and extracts its text, inferring the format
// from the file extension.
func extractFile(extractor *extract.Extractor, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	format := extract.ParseFormat("", filepath.Base(path))
	return extractor.Extract(data, format)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	url := fmt.Sprintf("http://%s:%d/api/v1/status", cfg.Server.Host, cfg.Server.Port)
	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Failed to reach server at %s: %v\n", url, err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	fmt.Println(string(body))
}

func printUsage() {
	fmt.Println(`Sukima - conversational gap analysis service

Usage:
  sukima server [-config path] [-debug]     Run the HTTP API server
  sukima analyze -a docA -b docB [flags]    One-shot analysis of two local files
  sukima status [-config path]              Show session counts from a running server
  sukima version                            Print version
  sukima help                               Show this help

Analyze flags:
  -objective string   Analysis objective (empty uses the configured default)
  -format string      Output format: text or json (default "text")
  -config string      Config file path

The analysis API key is read from the ` + apiKeyEnv + ` environment variable
(a .env file in the working directory is loaded if present).`)
}
