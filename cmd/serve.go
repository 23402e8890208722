package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/explore/pkg/api"
	"github.com/rubiojr/explore/pkg/config"
	"github.com/rubiojr/explore/pkg/log"
	"github.com/rubiojr/explore/pkg/storage"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the explore web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind to (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides server.port)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, c.String("config"), c.String("host"), int(c.Int("port")))
		},
	}
}

// serve runs the explore endpoint until interrupted. Category options and the
// display time zone follow edits to the config file.
func serve(ctx context.Context, configPath, host string, port int) error {
	l := log.ForService("serve")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	store, err := storage.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Warnf("failed to close store: %v", err)
		}
	}()
	store.SetCategoryLabels(cfg.CategoryLabels())

	apiServer, err := api.NewServer(store, api.Options{
		Endpoint:   cfg.Server.Endpoint,
		Categories: cfg.CategoryOptions(),
		Location:   loc,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(configPath); err == nil {
		go func() {
			err := config.Watch(ctx, configPath, func(next *config.Config) {
				loc, err := next.Location()
				if err != nil {
					l.Errorf("ignoring reloaded config: %v", err)
					return
				}
				store.SetCategoryLabels(next.CategoryLabels())
				if err := apiServer.Reconfigure(next.CategoryOptions(), loc); err != nil {
					l.Errorf("applying reloaded config: %v", err)
					return
				}
				l.Infof("configuration reloaded successfully")
			})
			if err != nil {
				l.Warnf("config reload disabled: %v", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Infof("starting explore server on http://%s%s", cfg.ListenAddr(), cfg.Server.Endpoint)
		l.Infof("  GET  %s - explore page", cfg.Server.Endpoint)
		l.Infof("  POST %s - dataset search", cfg.Server.Endpoint)
		l.Infof("  GET  /health - health check")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	l.Infof("shutting down explore server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
