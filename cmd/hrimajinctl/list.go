package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/hrimajin/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd(opts *cliOptions, cfg config.AppConfig) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cards in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := openCards(opts, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			cards, err := svc.List(cmd.Context(), all)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tLINK\tDIRECT\tHIDDEN")
			for _, card := range cards {
				direct := "-"
				if card.DirectLinkEnabled {
					direct = "/" + card.DirectPathValue()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", card.ID, card.Title, card.Link, direct, card.Hidden)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include hidden cards")
	return cmd
}
