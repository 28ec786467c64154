package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joshp123/acwatch/internal/units"
	"github.com/joshp123/acwatch/internal/unitsapi"
	"github.com/joshp123/acwatch/internal/view"
)

func newUnitsCmd(flags *globalFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "units",
		Short: "Fetch the unit list once and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := unitsapi.NewClient(flags.url)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			snaps, err := client.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("fetch units: %w", err)
			}
			out := outputMode{out: cmd.OutOrStdout(), json: flags.json}
			if plain && !flags.json {
				return view.WriteText(out.out, view.Project(units.Loaded(snaps)))
			}
			return printUnits(out, snaps)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print each unit as a heading with its attributes")
	return cmd
}

func printUnits(o outputMode, snaps []units.Snapshot) error {
	if o.json {
		data, err := units.Encode(snaps)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(o.out, string(data))
		return err
	}
	return o.table(view.Table(view.Project(units.Loaded(snaps))))
}
