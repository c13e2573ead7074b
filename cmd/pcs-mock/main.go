// Command pcs-mock serves a stand-in police case backend with seeded demo
// accounts, for local development of the portal client.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-case-portal/internal/config"
	"github.com/jrsteele09/go-case-portal/internal/logging"
	"github.com/jrsteele09/go-case-portal/server"
	"github.com/jrsteele09/go-case-portal/token"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

type flags struct {
	configPath    string
	rotateRefresh bool
	redisRevoked  bool
}

func main() {
	var f flags
	pflag.StringVar(&f.configPath, "config", os.Getenv("PCS_CONFIG"), "path to a YAML config file")
	pflag.BoolVar(&f.rotateRefresh, "rotate-refresh", false, "issue a new refresh token on every refresh")
	pflag.BoolVar(&f.redisRevoked, "redis-revocation", false, "keep revoked access tokens in redis")
	pflag.Parse()

	logger := logging.New(os.Stderr, "info", "DEV")
	if err := run(f); err != nil {
		logger.Fatal().Err(err).Msg("error running server")
	}
	logger.Info().Msg("server stopped")
}

func run(f flags) (returnError error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.GetLogLevel(), cfg.GetEnv())

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(cfg.GetAppName() + " mock")

	options := []server.Option{
		server.WithLogger(logger),
		server.WithRefreshRotation(f.rotateRefresh),
	}
	if f.redisRevoked {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.GetRedisAddr()})
		defer rdb.Close()
		options = append(options, server.WithRevokedTokenCache(token.NewRedisRevokedTokenCache(rdb, cfg.GetRedisPrefix())))
	}

	handler, err := server.New(cfg, options...)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: handler}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer, logger) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
