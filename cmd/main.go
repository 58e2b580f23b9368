// @title        windguard API
// @version      1.0
// @description  Wind-driven camera mode switching: crossing history, poller status and manual polls.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in           header
// @name         Authorization
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "windguard/docs"
	"windguard/internal/config"
	"windguard/internal/handlers"
	"windguard/internal/logger"
	"windguard/internal/repository"
	"windguard/internal/repository/db"
	"windguard/internal/server"
	"windguard/internal/service"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	v := viper.New()
	flags, err := config.BindFlags(pflag.CommandLine, v)
	if err != nil {
		logger.Get(logger.Options{Level: logger.InfoLevel}).Fatalw("flags_bind_failed", "err", err)
	}
	pflag.Parse()

	cfg, err := config.Load(v, flags.ConfigFile)
	if err != nil {
		logger.Get(logger.Options{Level: logger.InfoLevel}).Fatalw("config_load_failed", "err", err)
	}

	log := logger.Get(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = log.Sync() }()

	sqlDB, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("sqlite_init_failed", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, cfg, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// a failed seed stops the process before any scheduled polling starts
	if err := services.SetUp(ctx); err != nil {
		log.Errorw("setup_failed", "err", err)
		exit(log, sqlDB, 1)
	}

	switch {
	case flags.SetupOnly:
		log.Infow("setup_complete")
		return
	case flags.Once:
		res, err := services.Poll(ctx)
		if err != nil {
			log.Errorw("poll_failed", "err", err)
			exit(log, sqlDB, 1)
		}
		log.Infow("poll_complete", "result", res.Result, "mode", res.ModeLabel)
		return
	}

	if cfg.Auth.SigningKey == "" {
		log.Warnw("auth_signing_key_random", "reason", "auth.signing_key not set; tokens will not survive a restart")
	}

	go services.Run(ctx, cfg.Poll.Interval)
	log.Infow("poller_started", "interval", cfg.Poll.Interval, "threshold_mph", cfg.Poll.WindThresholdMph)

	apiHandler := handlers.NewHandler(services, log)
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	<-ctx.Done()
	shutdown(srv, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	log.Infow("sqlite_open", "path", cfg.DBPath)
	return db.InitDB(cfg.DBPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("http_server_failed", "err", err)
		}
	}()
	log.Infow("http_listening", "port", port)
}

// shutdown lets in-flight requests complete.
func shutdown(srv *server.Server, log *logger.Logger) {
	log.Infow("http_shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("http_forced_shutdown", "err", err)
	}
}

// exit closes the database before leaving, since os.Exit skips deferred calls.
func exit(log *logger.Logger, sqlDB *sql.DB, code int) {
	_ = sqlDB.Close()
	_ = log.Sync()
	os.Exit(code)
}
