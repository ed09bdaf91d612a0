package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"netseg/internal/clock"
	"netseg/internal/config"
	"netseg/internal/domain"
	"netseg/internal/handler"
	"netseg/internal/hub"
	"netseg/internal/metrics"
	"netseg/internal/monitor"
	"netseg/internal/prefs"
	"netseg/internal/repository/sqlite"
	"netseg/internal/service"
	"netseg/internal/topology"
	"netseg/internal/watcher"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, path, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = level
	return zcfg.Build()
}

func run(cfg *config.Config, configPath string, logger *zap.Logger) error {
	logger.Info("starting netseg server",
		zap.String("config", configPath),
		zap.String("summary", cfg.Summary()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", zap.String("path", cfg.Database.Path))

	eventBus := service.NewEventBus()
	reg := metrics.NewRegistry()
	clk := clock.Real()
	forms := service.NewFormValidator()
	preferences := prefs.New(repo.Preferences())

	session, err := newSession(cfg)
	if err != nil {
		return err
	}
	session.Seed()

	delays := cfg.EffectiveDelays()
	designerSvc := service.NewDesignerService(session, repo, forms, eventBus, clk, reg,
		logger.Named("designer"), designerConfig(delays))
	departmentSvc := service.NewDepartmentService(repo, preferences, forms, eventBus, clk,
		logger.Named("departments"), delays.DepartmentSave)
	hostSvc := service.NewHostService(repo, forms, eventBus, clk, reg,
		logger.Named("hosts"), hostConfig(delays))
	defer hostSvc.Close()

	seed := cfg.Monitor.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	testingSvc := service.NewTestingService(repo, rand.New(rand.NewSource(seed)), forms, eventBus, clk, reg,
		logger.Named("testing"), testingConfig(delays))

	if err := departmentSvc.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed departments: %w", err)
	}
	if err := hostSvc.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed hosts: %w", err)
	}
	if err := testingSvc.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed test history: %w", err)
	}

	simulator := monitor.New(rand.New(rand.NewSource(seed+1)), clk, eventBus, reg,
		logger.Named("monitor"), monitor.Config{
			RefreshInterval: cfg.Monitor.RefreshInterval.Duration(),
			StatusInterval:  cfg.Monitor.StatusInterval.Duration(),
		})
	go simulator.Run(ctx)

	// SSE hub fed by the event bus
	sseHub := hub.New(logger.Named("hub"))
	go sseHub.Run(ctx)
	sseHub.Forward(ctx, eventBus)

	if configPath != "" {
		reloader := watcher.NewReloader(configPath, func(next *config.Config) {
			applyConfig(next, designerSvc, departmentSvc, hostSvc, testingSvc, simulator, logger)
			eventBus.Publish(service.Event{
				Type:    service.EventConfigReloaded,
				Payload: map[string]string{"path": configPath},
			})
		}, logger.Named("config"))
		go func() {
			if err := reloader.Watcher().Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	router := &handler.Router{
		Designer:    handler.NewDesignerHandler(designerSvc, logger),
		Departments: handler.NewDepartmentHandler(departmentSvc, logger),
		Hosts:       handler.NewHostHandler(hostSvc, logger),
		Tests:       handler.NewTestHandler(testingSvc, logger),
		Monitor:     handler.NewMonitorHandler(simulator, logger),
		Prefs:       handler.NewPrefsHandler(preferences, departmentSvc, logger),
		Events:      sseHub,
		Metrics:     reg,
		Logger:      logger.Named("http"),
		Origins:     cfg.Server.CORSOrigins,
	}

	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router.Handler(),
		ReadTimeout: 10 * time.Second,
		// No write timeout: the event stream stays open
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}

func newSession(cfg *config.Config) (*topology.Session, error) {
	mode, err := topology.ParseConflictMode(cfg.Designer.IPConflictMode)
	if err != nil {
		return nil, err
	}
	return topology.NewSession(topology.SessionConfig{
		GridUnit:          cfg.Designer.GridUnit,
		Snap:              cfg.SnapToGrid(),
		HistoryLimit:      cfg.Designer.HistoryLimit,
		ConflictMode:      mode,
		DefaultDepartment: domain.Department(cfg.Designer.DefaultDepartment),
	}), nil
}

func designerConfig(d config.DelayProfile) service.DesignerConfig {
	return service.DesignerConfig{
		SaveDelay:     d.DesignSave,
		DeployDelay:   d.Deploy,
		DeployTimeout: d.DeployTimeout,
	}
}

func hostConfig(d config.DelayProfile) service.HostConfig {
	return service.HostConfig{
		CreateDelay:  d.HostCreate,
		StartDelay:   d.HostStart,
		RestartDelay: d.HostRestart,
	}
}

func testingConfig(d config.DelayProfile) service.TestingConfig {
	return service.TestingConfig{
		RunDelay:   d.TestRun,
		BatchDelay: d.TestBatch,
	}
}

// applyConfig pushes reloadable settings into the running services. The
// listen address, database and log settings need a restart.
func applyConfig(
	cfg *config.Config,
	designerSvc *service.DesignerService,
	departmentSvc *service.DepartmentService,
	hostSvc *service.HostService,
	testingSvc *service.TestingService,
	simulator *monitor.Simulator,
	logger *zap.Logger,
) {
	delays := cfg.EffectiveDelays()
	designerSvc.SetConfig(designerConfig(delays))
	departmentSvc.SetSaveDelay(delays.DepartmentSave)
	hostSvc.SetConfig(hostConfig(delays))
	testingSvc.SetConfig(testingConfig(delays))

	unit := cfg.Designer.GridUnit
	snap := cfg.SnapToGrid()
	mode := cfg.Designer.IPConflictMode
	dept := domain.Department(cfg.Designer.DefaultDepartment)
	if _, err := designerSvc.SetOptions(service.OptionsRequest{
		GridUnit:          &unit,
		Snap:              &snap,
		ConflictMode:      &mode,
		DefaultDepartment: &dept,
	}); err != nil {
		logger.Warn("designer options not applied", zap.Error(err))
	}

	simulator.SetRefreshInterval(cfg.Monitor.RefreshInterval.Duration())
}
