// Command server serves game package downloads.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/mmlnetwork/mmlpack/internal/amqputil"
	"github.com/mmlnetwork/mmlpack/internal/auth"
	"github.com/mmlnetwork/mmlpack/internal/game/gamepg"
	"github.com/mmlnetwork/mmlpack/internal/pack"
	"github.com/mmlnetwork/mmlpack/internal/postgresutil"
	"github.com/mmlnetwork/mmlpack/internal/rojo"
	"github.com/mmlnetwork/mmlpack/internal/s3util"
	"github.com/mmlnetwork/mmlpack/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := parseConfig(os.Environ())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = serve(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func newLogger(cfg *config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.Development {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func serve(ctx context.Context, cfg *config, log *slog.Logger) error {
	if cfg.Postgres.Migrate {
		if err := postgresutil.Setup(cfg.Postgres.DSN); err != nil {
			return err
		}
	}
	db, err := postgresutil.NewPool(ctx, cfg.Postgres.DSN, postgresutil.WithMaxConns(cfg.Postgres.MaxConns))
	if err != nil {
		return err
	}
	defer db.Close()

	runner, err := newRunner(&cfg.Pack, log)
	if err != nil {
		return err
	}
	packager := pack.NewPackager(&cfg.Pack, runner, log)

	if cfg.S3ConnectionString != "" {
		s3Client, err := s3util.NewClient(cfg.S3ConnectionString)
		if err != nil {
			return err
		}
		if err = s3util.SetupBucket(ctx, s3Client); err != nil {
			return err
		}
		packager.Archive = s3util.NewArchive(s3Client)
	}
	if cfg.AMQPConnectionString != "" {
		packager.Events = amqputil.NewClient(cfg.AMQPConnectionString, amqputil.EventsQueue)
	}

	srv := server.New(&cfg.Server, log, &server.Deps{
		Database:    gamepg.NewDatabase(db),
		Packager:    packager,
		Tokens:      auth.New(&cfg.Auth),
		Development: cfg.Development,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", srv.Addr, "runner", cfg.Pack.Runner)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeoutOrDefault())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRunner(cfg *pack.Config, log *slog.Logger) (rojo.Runner, error) {
	switch cfg.Runner {
	case pack.RunnerProcess, "":
		return &rojo.ProcessRunner{Tool: cfg.Tool}, nil
	case pack.RunnerDocker:
		return rojo.NewDockerRunner(cfg.DockerImage, log.With("component", "docker"))
	default:
		return nil, fmt.Errorf("unknown runner %q", cfg.Runner)
	}
}
