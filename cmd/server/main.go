package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/ijsbol/anonymous-discord-polls/internal/adapters/handler/http"
	"github.com/ijsbol/anonymous-discord-polls/internal/adapters/notifier/discord"
	"github.com/ijsbol/anonymous-discord-polls/internal/adapters/repository/postgres"
	"github.com/ijsbol/anonymous-discord-polls/internal/core/services"
	"github.com/ijsbol/anonymous-discord-polls/internal/duration"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	logger := slog.Default()

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Ping doubles as the readiness signal: the sweeper must not start
	// issuing renders before connectivity is confirmed.
	if err := db.Ping(); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	pollRepo := postgres.NewPollRepository(db)
	notifier := discord.New(os.Getenv("DISCORD_BOT_TOKEN"), os.Getenv("PROXY_URL"))

	pollSvc := services.NewPollService(pollRepo)
	voteSvc := services.NewVoteService(pollRepo, notifier, logger)
	sweeper := services.NewSweeper(pollRepo, notifier, sweepInterval(), logger)

	pollHandler := http.NewPollHandler(pollSvc)
	voteHandler := http.NewVoteHandler(voteSvc)
	handler := http.NewHandler(pollHandler, voteHandler)

	addr := "0.0.0.0:" + envOr("PORT", "8080")
	server := &stdhttp.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper.Start(ctx)

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	// Let an in-flight sweep finish so no poll is left half-handled.
	sweeper.Stop()
}

func sweepInterval() time.Duration {
	raw := os.Getenv("SWEEP_INTERVAL")
	if raw == "" {
		return services.DefaultSweepInterval
	}
	if seconds := duration.Parse(raw); seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return services.DefaultSweepInterval
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dbConnString() string {
	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	host := os.Getenv("POSTGRES_HOST")
	port := os.Getenv("POSTGRES_PORT")
	dbName := os.Getenv("POSTGRES_DB")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}
