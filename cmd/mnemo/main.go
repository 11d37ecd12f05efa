package main

// @title Mnemo API
// @version 1.0
// @description Memory ingestion and relevance-ranking engine
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/mnemo/mnemo

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mnemo/mnemo/config"
	"github.com/mnemo/mnemo/pkg/api"
	"github.com/mnemo/mnemo/pkg/api/handlers"
	"github.com/mnemo/mnemo/pkg/embedding"
	"github.com/mnemo/mnemo/pkg/events"
	grpcserver "github.com/mnemo/mnemo/pkg/grpc"
	"github.com/mnemo/mnemo/pkg/logger"
	"github.com/mnemo/mnemo/pkg/memory"
	"github.com/mnemo/mnemo/pkg/metrics"
	"github.com/mnemo/mnemo/pkg/synthesis"
	"github.com/mnemo/mnemo/pkg/telemetry/tracing"
	"github.com/mnemo/mnemo/pkg/version"
)

var (
	configPath  = flag.String("config", "", "Path to configuration file")
	versionFlag = flag.Bool("version", false, "Print version information")
	helpFlag    = flag.Bool("help", false, "Print help information")

	// CLI overrides
	serverPort = flag.Int("port", 0, "Override server port")
	dataPath   = flag.String("data", "", "Override memory storage path")
	logLevel   = flag.String("log-level", "", "Override log level")
	debugMode  = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *helpFlag {
		printHelp()
		os.Exit(0)
	}
	if *versionFlag {
		printVersion()
		os.Exit(0)
	}

	loader := config.NewLoader()
	cfg, err := loader.Load(*configPath, buildOverrides())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration:\n%s\n", err)
		os.Exit(1)
	}

	logCfg := &logger.Config{
		Level:     logger.ParseLevel(cfg.Log.Level),
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	}
	if *debugMode {
		logCfg.Level = logger.DebugLevel
	}
	log := logger.New(logCfg)
	logger.SetGlobal(log)

	log.Info("Starting mnemo",
		"version", version.Version,
		"buildTime", version.BuildTime,
		"gitCommit", version.GitCommit,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.App.Name, version.Version)
	if err != nil {
		log.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Storage backend.
	var store memory.Store
	switch cfg.Memory.Backend {
	case "badger":
		badgerStore, err := memory.NewBadgerStore(cfg.Memory.Path, log)
		if err != nil {
			log.Error("Failed to open badger store", "error", err, "path", cfg.Memory.Path)
			os.Exit(1)
		}
		defer badgerStore.Close()
		store = badgerStore
		log.Info("Initialized badger storage", "path", cfg.Memory.Path)
	default:
		store = memory.NewFileStore(cfg.Memory.Path, log)
		log.Info("Initialized file storage", "path", cfg.Memory.Path)
	}

	// Metrics.
	metricsCfg := metrics.DefaultConfig()
	metricsCfg.Enabled = cfg.Metrics.Enabled
	metricsCfg.Path = cfg.Metrics.Path
	metricsManager := metrics.NewManager(metricsCfg)

	// Embeddings are optional; without them search falls back to
	// lexical scoring.
	var embedder memory.Embedder
	if cfg.Embedding.Enabled {
		client := embedding.NewClient(embedding.ClientConfig{
			BaseURL:   cfg.Embedding.BaseURL,
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			ChunkSize: cfg.Embedding.ChunkSize,
			RPS:       cfg.Embedding.RPS,
			Burst:     cfg.Embedding.Burst,
		})

		cacheCfg := embedding.CacheConfig{
			MaxEntries: cfg.Embedding.Cache.MaxEntries,
			Logger:     log,
		}
		if cfg.Embedding.Cache.Redis.Enabled {
			cacheCfg.Redis = redis.NewClient(&redis.Options{
				Addr:     cfg.Embedding.Cache.Redis.Addr,
				Password: cfg.Embedding.Cache.Redis.Password,
				DB:       cfg.Embedding.Cache.Redis.DB,
			})
			cacheCfg.TTL = cfg.Embedding.Cache.Redis.TTL
		}
		cache, err := embedding.NewCache(cacheCfg)
		if err != nil {
			log.Error("Failed to create embedding cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()

		embedder = embedding.NewGateway(client, cache, log)
		log.Info("Initialized embeddings",
			"base_url", cfg.Embedding.BaseURL,
			"model", cfg.Embedding.Model,
			"redis", cfg.Embedding.Cache.Redis.Enabled,
		)
	}

	broadcaster := events.NewBroadcaster()
	defer broadcaster.Close()

	engineOpts := &memory.Options{
		Events:  broadcaster,
		Metrics: metricsManager,
	}
	if cfg.Synthesis.Enabled {
		engineOpts.Completer = synthesis.NewClaudeCompleter(cfg.Synthesis.Model, cfg.Synthesis.MaxTokens)
		log.Info("Initialized cluster synthesis", "model", cfg.Synthesis.Model)
	}

	engine := memory.NewEngine(&cfg.Memory, store, embedder, log, engineOpts)

	// HTTP surface.
	wsHandler := handlers.NewWebSocketHandler(log, broadcaster, handlers.WebSocketConfig{
		AllowedOrigins: cfg.Server.CORS.AllowedOrigins,
	})
	go wsHandler.Run(ctx)

	apiHandlers := &api.Handlers{
		Memory:    handlers.NewMemoryHandler(engine, log),
		Health:    handlers.NewHealthHandler(engine, version.Version),
		WebSocket: wsHandler,
	}
	if metricsManager.Enabled() {
		apiHandlers.Metrics = metricsManager
		apiHandlers.MetricsHandler = metricsManager.Handler()
	}

	httpServer := api.NewHTTPServer(cfg, log, apiHandlers)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", cfg.Server.Addr())
		if err := httpServer.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Health-only gRPC endpoint for orchestrator probes.
	var grpcSrv *grpcserver.Server
	if grpcAddr := cfg.Server.GRPCAddr(); grpcAddr != "" {
		grpcSrv, err = grpcserver.New(&grpcserver.Config{Address: grpcAddr}, log)
		if err != nil {
			log.Error("Failed to create gRPC server", "error", err)
			os.Exit(1)
		}
		if err := grpcSrv.Start(); err != nil {
			log.Error("Failed to start gRPC server", "error", err)
			os.Exit(1)
		}
		log.Info("Starting gRPC health server", "address", grpcAddr)
	}

	// Reload log level on config file changes.
	watcher := startConfigWatcher(ctx, *configPath, loader, log)

	log.Info("Mnemo is running",
		"http_addr", cfg.Server.Addr(),
		"grpc_addr", cfg.Server.GRPCAddr(),
		"backend", cfg.Memory.Backend,
	)

	select {
	case sig := <-sigChan:
		log.Info("Received shutdown signal", "signal", sig.String())
	case err := <-serverErrChan:
		log.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if watcher != nil {
		watcher.Stop()
	}

	log.Info("Shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down HTTP server", "error", err)
	}

	if grpcSrv != nil {
		log.Info("Shutting down gRPC server")
		if err := grpcSrv.Stop(shutdownCtx); err != nil {
			log.Error("Error shutting down gRPC server", "error", err)
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Error shutting down tracing", "error", err)
	}

	log.Info("Mnemo stopped gracefully")
}

func startConfigWatcher(ctx context.Context, configPath string, loader *config.Loader, log logger.Logger) *config.Watcher {
	if configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(configPath, loader)
	if err != nil {
		log.Warn("Config watcher unavailable", "error", err)
		return nil
	}
	watcher.OnChange(func(cfg *config.Config) {
		logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
		log.Info("Configuration reloaded", "log_level", cfg.Log.Level)
	})
	go func() {
		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("Config watcher stopped", "error", err)
		}
	}()
	return watcher
}

func buildOverrides() map[string]interface{} {
	overrides := make(map[string]interface{})

	if *serverPort != 0 {
		overrides["server.port"] = *serverPort
	}
	if *dataPath != "" {
		overrides["memory.path"] = *dataPath
	}
	if *logLevel != "" {
		overrides["log.level"] = *logLevel
	}

	return overrides
}

func printVersion() {
	fmt.Printf("Mnemo - Memory ingestion and relevance-ranking engine\n")
	fmt.Printf("Version:    %s\n", version.Version)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Printf("Git Commit: %s\n", version.GitCommit)
	fmt.Printf("Go Version: %s\n", version.GoVersion)
}

func printHelp() {
	fmt.Printf("Mnemo - Memory ingestion and relevance-ranking engine\n\n")
	fmt.Printf("Usage: mnemo [options]\n\n")
	fmt.Printf("Options:\n")
	flag.PrintDefaults()
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  mnemo                                  # Run with default config\n")
	fmt.Printf("  mnemo -config config.yaml              # Use specific config file\n")
	fmt.Printf("  mnemo -port 9000 -log-level debug      # Override specific options\n")
	fmt.Printf("  mnemo -version                         # Print version info\n")
}
