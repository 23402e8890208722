package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/rubiojr/explore/pkg/config"
	"github.com/rubiojr/explore/pkg/tui"
)

// ExploreCommand creates the interactive explore command
func ExploreCommand() *cli.Command {
	return &cli.Command{
		Name:      "explore",
		Usage:     "Browse datasets in an interactive terminal UI",
		ArgsUsage: "[query]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "plain",
				Usage: "Read commands line by line from stdin instead of the full screen UI",
			},
			&cli.IntFlag{Name: "width", Usage: "Card width in plain mode", Value: 80},
		}, sessionFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			return exploreDatasets(ctx, c)
		},
	}
}

func exploreDatasets(ctx context.Context, c *cli.Command) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	s, err := openSession(ctx, cfg, c.String("server"), c.Bool("local"))
	if err != nil {
		return err
	}
	defer s.close()

	params := url.Values{}
	if q := c.Args().First(); q != "" {
		params.Set("query", q)
	}

	if c.Bool("plain") {
		out := c.Root().Writer
		if out == nil {
			out = os.Stdout
		}
		return runPlain(ctx, s.ctrl, params, os.Stdin, out, int(c.Int("width")), loc)
	}

	m := tui.NewExplorerModel(ctx, s.ctrl, params, loc)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
