package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/quickdraw/internal/adapters/discord"
	"github.com/okian/quickdraw/internal/adapters/http/api"
	"github.com/okian/quickdraw/internal/adapters/repository"
	service "github.com/okian/quickdraw/internal/app"
	"github.com/okian/quickdraw/internal/config"
	"github.com/okian/quickdraw/internal/domain/board"
	"github.com/okian/quickdraw/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Score ledger and board-handle store.
	var store repository.Store
	if cfg.DBPath != "" {
		s, err := repository.Open(cfg.DBPath)
		if err != nil {
			log.Error(ctx, "failed to open store", logger.String("path", cfg.DBPath), logger.Error(err))
			return
		}
		store = s
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.DBPath))
	} else {
		store = repository.NewMemoryStore()
		log.Warn(ctx, "db_path empty, scores will not survive restarts")
	}

	// Chat transport; the HTTP API works without it.
	var msgr board.Messenger = board.NopMessenger{}
	var session *discord.Session
	if cfg.DiscordToken != "" {
		session, err = discord.Dial(cfg.DiscordToken)
		if err != nil {
			log.Error(ctx, "failed to connect to discord", logger.Error(err))
			return
		}
		defer func() {
			_ = session.Close()
		}()
		msgr = session
		log.Info(ctx, "discord gateway connected")
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithStore(store),
		service.WithMessenger(msgr),
		service.WithTokenTTL(cfg.TokenTTL),
		service.WithSweepInterval(cfg.SweepInterval),
		service.WithRequiredRuns(cfg.RequiredRuns),
		service.WithBoardSize(cfg.BoardSize),
		service.WithPublicBaseURL(cfg.PublicBaseURL),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Chat commands: issuance and board refresh triggers.
	if session != nil {
		handler := discord.NewCommandHandler(svc, discord.WithPrefix(cfg.CommandPrefix))
		handler.Attach(session)
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc,
		api.WithDefaultLimit(cfg.BoardSize),
		api.WithMaxLimit(cfg.MaxBoardLimit),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
