// Command flowrunner is a thin HTTP demonstration of the engine: POST a
// workflow definition to /executions and get back its ExecutionResult,
// optionally watching block-level events live over /ws. It plays the role
// the teacher's cmd/workflow-runner and cmd/fanout play together, collapsed
// into one process since this engine's core is in-process by design
// (spec.md's Non-goals exclude distributed execution).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/flowforge/workflowengine/cmd/flowrunner/config"
	"github.com/flowforge/workflowengine/cmd/flowrunner/stream"
	"github.com/flowforge/workflowengine/collaborators/pglog"
	"github.com/flowforge/workflowengine/collaborators/toolregistry"
	"github.com/flowforge/workflowengine/internal/obslog"
	"github.com/flowforge/workflowengine/internal/types"
)

func main() {
	cfg := config.Load()
	log := obslog.New(cfg.Service.LogLevel, cfg.Service.LogFormat)

	tp, err := obslog.NewTracerProvider(os.Stdout, "flowrunner")
	if err != nil {
		log.Error("failed to start tracer provider", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	deps := newDemoDependencies()

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		registry := toolregistry.New(redisClient)
		deps.GetTool = registry.GetTool
		log.Info("tool registry backed by redis", "addr", cfg.Redis.Addr)
	}

	hub := stream.NewHub()
	go hub.Run()

	sinks := []types.LogConsoleFunc{hub.Publish}
	if cfg.Postgres.Enabled {
		pool, err := pgxpool.New(context.Background(), cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		sink, err := pglog.New(context.Background(), pool)
		if err != nil {
			log.Error("failed to initialize block log sink", "error", err)
			os.Exit(1)
		}
		sinks = append(sinks, sink.Emit)
		log.Info("block log audit sink backed by postgres")
	}

	server := NewServer(deps, hub, fanOut(sinks))

	e := echo.New()
	e.HideBanner = true
	e.POST("/executions", server.HandleExecute)
	e.GET("/ws", server.HandleStream)
	e.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	go func() {
		log.Info("flowrunner listening", "port", cfg.Service.Port)
		if err := e.Start(":" + strconv.Itoa(cfg.Service.Port)); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down flowrunner")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = e.Shutdown(ctx)
}

// fanOut combines multiple log sinks into the single types.LogConsoleFunc
// the executor accepts.
func fanOut(sinks []types.LogConsoleFunc) types.LogConsoleFunc {
	return func(event types.ConsoleEvent) {
		for _, sink := range sinks {
			sink(event)
		}
	}
}
