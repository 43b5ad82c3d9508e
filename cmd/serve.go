package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBosman/zeeder-sub000/internal/middleware"
	"github.com/IBosman/zeeder-sub000/internal/service"
	"github.com/IBosman/zeeder-sub000/pkg/logger"
	"github.com/IBosman/zeeder-sub000/prometheus"
	"github.com/go-extras/cobraflags"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	portFlag = "port"
)

var serveFlags = map[string]cobraflags.Flag{
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Port to listen on (overrides SERVER_PORT)",
	},
}

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Outside demo mode the database schema is migrated on startup and a default
admin account is created from DEFAULT_ADMIN_* when it does not exist yet.`,
		RunE: serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	if !cfg.DemoMode {
		if err := ensureDefaultAdmin(ctx, a, log, os.Stderr); err != nil {
			return err
		}
	}

	prometheus.SetInfo(version, cfg.DemoMode)

	e := echo.New()
	e.HideBanner = true

	// order matters: request ID before logging so every line carries it
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	if cfg.Metrics.Enabled {
		e.Use(prometheus.MetricsMiddleware())
		e.GET("/metrics", prometheus.MetricsHandler)
	}

	a.handler().RegisterRoutes(e, a.provider)

	port := serveFlags[portFlag].GetString()
	if port == "" {
		port = cfg.Server.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", port), zap.Bool("demo_mode", cfg.DemoMode))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func ensureDefaultAdmin(ctx context.Context, a *app, log *zap.Logger, out io.Writer) error {
	in := service.AdminInput{
		Username: a.cfg.Admin.Username,
		Email:    a.cfg.Admin.Email,
		Password: a.cfg.Admin.Password,
	}
	generated := in.Password == ""
	if generated {
		in.Password = uuid.NewString()
	}

	created, err := a.directory.EnsureDefaultAdmin(ctx, in)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	log.Warn("Default admin account created",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
		zap.Bool("generated_password", generated))
	if generated {
		// printed once on the terminal, never through the structured log
		fmt.Fprintf(out, "Generated password for admin %q: %s\nChange it after the first login.\n",
			in.Username, in.Password)
	}
	return nil
}
