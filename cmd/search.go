package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/explore/pkg/config"
	"github.com/rubiojr/explore/pkg/controller"
	"github.com/rubiojr/explore/pkg/explore"
	"github.com/rubiojr/explore/pkg/render"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search datasets once and print the results",
		ArgsUsage: "[query]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "author", Usage: "Filter by author name, affiliation or ORCID"},
			&cli.StringFlag{Name: "description", Usage: "Filter by description words"},
			&cli.StringFlag{Name: "tags", Usage: "Comma separated tags that must all match"},
			&cli.StringFlag{Name: "category", Usage: "Category value, e.g. master"},
			&cli.StringFlag{Name: "category-text", Usage: "Category display text, e.g. Master"},
			&cli.StringFlag{Name: "sort", Usage: "newest or oldest", Value: string(explore.DefaultSort)},
			&cli.BoolFlag{Name: "json", Usage: "Print results as JSON"},
			&cli.IntFlag{Name: "width", Usage: "Card width", Value: 80},
		}, sessionFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			return searchDatasets(ctx, c)
		},
	}
}

// searchActions turns the command flags into page actions, in the order a
// user would apply them.
func searchActions(c *cli.Command) []controller.Action {
	var actions []controller.Action
	inputs := []struct {
		flag  string
		field controller.Field
	}{
		{"author", controller.FieldAuthor},
		{"description", controller.FieldDescription},
		{"tags", controller.FieldTags},
		{"category", controller.FieldCategory},
		{"sort", controller.FieldSort},
	}
	for _, in := range inputs {
		if c.IsSet(in.flag) {
			actions = append(actions, controller.Input(in.field, c.String(in.flag)))
		}
	}
	if c.IsSet("category-text") {
		actions = append(actions, controller.SelectCategory(c.String("category-text")))
	}
	return actions
}

func searchDatasets(ctx context.Context, c *cli.Command) error {
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
	s.ctrl.Load(ctx, params)
	for _, a := range searchActions(c) {
		if _, err := s.ctrl.Dispatch(ctx, a); err != nil {
			return fmt.Errorf("%s: %w", a.Kind, err)
		}
	}

	out := c.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	searchErr := s.ctrl.Search(ctx)
	snap := s.ctrl.View().Snapshot()
	if c.Bool("json") {
		if searchErr != nil {
			return searchErr
		}
		return printJSON(out, snap.Items)
	}

	printResults(out, snap.Counter, snap.Items, int(c.Int("width")), loc)
	return searchErr
}

func printJSON(w io.Writer, items []explore.Item) error {
	if items == nil {
		items = []explore.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func printResults(w io.Writer, counter string, items []explore.Item, width int, loc *time.Location) {
	fmt.Fprintln(w, counter)
	for _, item := range items {
		fmt.Fprintln(w, render.TerminalCard(item, width, loc, false))
	}
}
