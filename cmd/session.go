package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/explore/pkg/client"
	"github.com/rubiojr/explore/pkg/config"
	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/page"
	"github.com/rubiojr/explore/pkg/storage"
)

// sessionFlags select where searches go. They are shared by search and explore.
func sessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "server",
			Usage: "Explore server base URL (overrides client.base_url)",
		},
		&cli.BoolFlag{
			Name:  "local",
			Usage: "Search the local database instead of a server",
		},
	}
}

// session is a controller wired to either a remote explore page or the local
// store.
type session struct {
	ctrl  *controller.Controller
	close func()
}

func openSession(ctx context.Context, cfg *config.Config, serverURL string, local bool) (*session, error) {
	if local {
		store, err := storage.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		store.SetCategoryLabels(cfg.CategoryLabels())
		ctrl := controller.New(page.NewFilters(cfg.CategoryOptions()), page.NewView(), store)
		return &session{ctrl: ctrl, close: func() { _ = store.Close() }}, nil
	}

	if serverURL == "" {
		serverURL = cfg.Client.BaseURL
	}
	c, err := client.New(serverURL,
		client.WithEndpoint(cfg.Server.Endpoint),
		client.WithTimeout(cfg.Client.Timeout.Duration))
	if err != nil {
		return nil, err
	}
	info, err := c.LoadPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading explore page from %s: %w", serverURL, err)
	}
	ctrl := controller.New(info.Filters(), page.NewView(), c)
	return &session{ctrl: ctrl, close: func() {}}, nil
}
