package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/rubiojr/explore/pkg/config"
	"github.com/rubiojr/explore/pkg/log"
	"github.com/rubiojr/explore/pkg/seed"
	"github.com/rubiojr/explore/pkg/storage"
)

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import datasets from YAML or TOML seed files",
		ArgsUsage: "FILE...",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() == 0 {
				return fmt.Errorf("at least one seed file is required")
			}
			return importSeeds(ctx, c.String("config"), c.Args().Slice())
		},
	}
}

// importSeeds loads every file before writing so a bad file imports nothing.
func importSeeds(ctx context.Context, configPath string, paths []string) error {
	l := log.ForService("import")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var all []storage.Dataset
	for _, p := range paths {
		list, err := seed.LoadFile(p)
		if err != nil {
			return err
		}
		l.Debugf("%s: %d datasets", p, len(list))
		all = append(all, list...)
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

	for _, ds := range all {
		if err := store.Insert(ctx, ds); err != nil {
			return err
		}
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d datasets (%d total)\n", len(all), total)
	return nil
}
