package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollbooth/analytics"
	"github.com/danielhkuo/pollbooth/audit"
	"github.com/danielhkuo/pollbooth/cliparse"
	"github.com/danielhkuo/pollbooth/db"
	"github.com/danielhkuo/pollbooth/middleware"
	"github.com/danielhkuo/pollbooth/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database (Postgres in production, SQLite for dev)
	dbConn, err := sql.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Audit trail: synchronous writes, daily retention sweep
	auditStore := audit.NewSQLStore(dbConn)
	auditLog := audit.NewLogger(auditStore)

	sweeper := audit.NewSweeper(auditStore, cfg.AuditRetentionDays)
	if err := sweeper.Start(); err != nil {
		slog.Error("audit retention setup failed", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// Analytics counters; nil recorder when no Redis is configured
	recorder := analytics.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer recorder.Close()

	// Rate limiters with their background sweeps
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiters := router.NewLimiters(cfg, auditLog)
	limiters.StartCleanup(ctx)

	// Create router
	mux := router.NewRouter(dbConn, cfg, limiters, auditLog, recorder)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
