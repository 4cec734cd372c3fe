package main

import (
	"fmt"

	"github.com/hrimajin/internal/config"
	"github.com/hrimajin/internal/directpath"
	"github.com/spf13/cobra"
)

func newCheckPathCmd(opts *cliOptions, cfg config.AppConfig) *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "check-path <slug>",
		Short: "Check whether a direct path is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openCards(opts, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			result, err := svc.CheckDirectPath(cmd.Context(), args[0], exclude)
			if err != nil {
				if result.Reason == directpath.ReasonError {
					return err
				}
				fmt.Fprintf(out, "%s: unavailable (%s) %s\n", result.Slug, result.Reason, directpath.Message(err))
				return nil
			}
			if result.Available {
				fmt.Fprintf(out, "%s: available\n", result.Slug)
				return nil
			}
			fmt.Fprintf(out, "%s: unavailable (%s)\n", result.Slug, result.Reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "card id allowed to own the path")
	return cmd
}
