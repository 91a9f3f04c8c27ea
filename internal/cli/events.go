package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"curator/internal/core/eventlog"
	perr "curator/internal/platform/errors"

	"github.com/spf13/cobra"
)

func newEventsCommand(g *Globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events ID|ACCESSION",
		Short: "Print the event history of one entity, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			cat := a.catalog.Catalog()
			var id int64
			if n, err := strconv.ParseInt(args[0], 10, 64); err == nil {
				e, err := cat.Get(ctx, n)
				if err != nil {
					return err
				}
				id = e.ID
			} else {
				e, err := cat.FindByAccession(ctx, args[0])
				if err != nil {
					return err
				}
				id = e.ID
			}

			evs, err := cat.EventsOf(ctx, id)
			if err != nil {
				return err
			}
			evs = eventlog.FromEvents(evs).Events()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(evs); err != nil {
					return perr.Wrap(err, perr.ErrorCodeJSON, "encode events")
				}
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tTYPE\tNOTE")
			for _, e := range evs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.At.UTC().Format(time.RFC3339), e.Type.Name(), e.Note)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print json instead of a table")
	return cmd
}
