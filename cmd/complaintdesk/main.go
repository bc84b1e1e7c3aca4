package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/supportline/complaintdesk/internal/complaints"
	"github.com/supportline/complaintdesk/internal/config"
	"github.com/supportline/complaintdesk/internal/dashboard"
	"github.com/supportline/complaintdesk/internal/database"
	"github.com/supportline/complaintdesk/internal/logging"
	"github.com/supportline/complaintdesk/internal/server"
	"go.uber.org/zap"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "complaintdesk",
		Short: "Customer complaint tracking service and dashboard",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the complaint update service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Poll the update service and log dashboard snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatcher(cmd.Context())
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("api-base-url", defaults.GetString("api.base_url"), "Update service base URL for the watcher")
	cmd.PersistentFlags().Int("poll-interval-seconds", defaults.GetInt("poll.interval_seconds"), "Refresh interval in seconds")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "api.base_url", "api-base-url")
	bindFlag(cmd, "poll.interval_seconds", "poll-interval-seconds")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	complaintsService, err := complaints.NewService(complaints.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: complaints.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		ComplaintsService: complaintsService,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runWatcher(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client, err := dashboard.NewClient(dashboard.ClientConfig{
		BaseURL: appConfig.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	controller, err := dashboard.NewSyncController(dashboard.SyncControllerConfig{
		Client:   client,
		Interval: appConfig.PollInterval,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer controller.Close()

	logger.Info("watcher starting",
		zap.String("base_url", appConfig.APIBaseURL),
		zap.Duration("interval", appConfig.PollInterval))
	controller.Start()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(appConfig.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-signalCtx.Done():
			logger.Info("watcher stopping")
			return nil
		case <-ticker.C:
			logSnapshot(logger, controller.Snapshot())
		}
	}
}

func logSnapshot(logger *zap.Logger, snapshot dashboard.ViewState) {
	if snapshot.Loading {
		logger.Info("dashboard loading")
		return
	}
	if snapshot.ErrorMessage != "" {
		logger.Warn("dashboard refresh error", zap.String("message", snapshot.ErrorMessage))
	}

	pending := 0
	completed := 0
	for _, record := range snapshot.Records {
		switch record.Status {
		case complaints.StatusPending:
			pending++
		case complaints.StatusCompleted:
			completed++
		}
	}
	logger.Info("dashboard snapshot",
		zap.Int("total", len(snapshot.Records)),
		zap.Int("pending", pending),
		zap.Int("completed", completed))
}
