package main

import (
	"fmt"
	"os"

	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/service"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Cards []service.SeedCard `yaml:"cards"`
}

func newSeedCmd(opts *cliOptions, cfg config.AppConfig) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert initial cards, skipping titles that already exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cards := service.DefaultSeedCards()
			if file != "" {
				loaded, err := loadSeedFile(file)
				if err != nil {
					return err
				}
				cards = loaded
			}

			svc, closeFn, err := openCards(opts, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := svc.Seed(cmd.Context(), cards)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d of %d cards\n", created, len(cards))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with a top-level cards list")
	return cmd
}

func loadSeedFile(path string) ([]service.SeedCard, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var parsed seedFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(parsed.Cards) == 0 {
		return nil, fmt.Errorf("seed file %s has no cards", path)
	}
	return parsed.Cards, nil
}
