package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nfl-projections-go/config"
	"nfl-projections-go/database"
	"nfl-projections-go/handlers"
	"nfl-projections-go/logging"
	"nfl-projections-go/middleware"
	"nfl-projections-go/modeling"
	"nfl-projections-go/services"
	"nfl-projections-go/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Configure(cfg.ToLoggingConfig())
	cfg.LogConfiguration()

	scoring, err := cfg.ScoringWeights()
	if err != nil {
		logging.Fatalf("Failed to load scoring weights: %v", err)
	}

	// MongoDB is optional; without it projections live in the CSV file only.
	var (
		db    *database.MongoDB
		store services.ProjectionStore
	)
	if cfg.Database.Enabled {
		conn, err := database.NewMongoConnection(cfg.ToDatabaseConfig())
		if err != nil {
			logging.Warnf("Database connection failed: %v", err)
			logging.Warn("Continuing without database connection...")
		} else {
			db = conn
			defer db.Close()
			if err := db.TestConnection(); err != nil {
				logging.Warnf("Database test failed: %v", err)
			}
			store = database.NewMongoProjectionRepository(db)
		}
	}

	nflverse := services.NewNflverse(services.NflverseConfig{
		CacheDir: cfg.Sources.NflverseCacheDir,
		Client:   &http.Client{Timeout: cfg.Sources.HTTPTimeout},
	})
	projectionService := services.NewProjectionService(services.ProjectionServiceConfig{
		CSVPath:       cfg.Pipeline.CombinedDataFramePath,
		Seasons:       services.NormalizeYears(cfg.Pipeline.DashboardSeasons...),
		RollingPeriod: cfg.Pipeline.RollingPeriod,
		Scoring:       scoring,
	}, nflverse, modeling.NewFileWeightsStore(cfg.Pipeline.SavedWeightsPath), store)

	sseHandler := handlers.NewSSEHandler(30 * time.Second)
	defer sseHandler.Stop()
	projectionService.OnRefresh(sseHandler.BroadcastRefresh)

	// Warm the table so the first page load does not pay for it.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), cfg.Sources.HTTPTimeout)
	if rows, err := projectionService.Load(startupCtx); err != nil {
		logging.Warnf("No projections available yet: %v", err)
	} else {
		source, _, _ := projectionService.Status()
		logging.Infof("Loaded %d projections from %s", len(rows), source)
	}
	cancelStartup()

	watchCtx, stopWatching := context.WithCancel(context.Background())
	defer stopWatching()
	if db != nil && cfg.Database.WatchChanges {
		watcher := services.NewProjectionChangeWatcher(db, func(ctx context.Context) {
			if err := projectionService.ReloadFromStore(ctx); err != nil {
				logging.Errorf("Reloading projections: %v", err)
			}
		})
		go watcher.Watch(watchCtx)
	}

	if cfg.Pipeline.RefreshSchedule != "" {
		refresh := services.RefreshFunc(func(ctx context.Context) error {
			_, err := projectionService.Refresh(ctx)
			return err
		})
		updater, err := services.NewBackgroundUpdater(cfg.Pipeline.RefreshSchedule, refresh, 0)
		if err != nil {
			logging.Fatalf("Failed to schedule refreshes: %v", err)
		}
		updater.Start()
		defer updater.Stop()
	}

	tmpl, err := templates.Parse("templates")
	if err != nil {
		logging.Fatalf("Error parsing templates: %v", err)
	}

	authService := services.NewAuthService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	apiHandler := handlers.NewAPIHandler(projectionService, 0)
	router := handlers.NewRouter(handlers.RouterDeps{
		Dashboard: handlers.NewDashboardHandler(tmpl, projectionService),
		API:       apiHandler,
		Auth:      handlers.NewAuthHandler(authService, cfg.Server.UseTLS),
		SSE:       sseHandler,
		AuthMW:    middleware.NewAuthMiddleware(authService),
	})

	server := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Infof("Server starting on %s", server.Addr)
		var err error
		if cfg.Server.UseTLS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info("Shutting down server...")

	// SSE streams never finish on their own.
	sseHandler.Stop()
	stopWatching()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("Server forced to shutdown: %v", err)
	}
	apiHandler.Wait()
	logging.Info("Server exited")
}
