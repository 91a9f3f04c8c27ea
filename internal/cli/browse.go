package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"curator/internal/core/paginate"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
	browsemod "curator/internal/services/browse/module"
	"curator/internal/services/browse/service"

	"github.com/spf13/cobra"
)

type browseFlags struct {
	baseURL        string
	start          int
	landmark       string
	landmarkBefore string
	limit          string
	limitBefore    string
	blocklist      string
	maxNew         int
	output         string
}

func newBrowseCommand(g *Globals) *cobra.Command {
	f := &browseFlags{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List remote records that are not in the catalog yet",
		Long: `Browse scans the remote listing newest first and writes one tab separated row per
record that is neither in the catalog nor in the blocklist.

Detailed fetching starts at the landmark; the scan stops at the limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			m, err := browsemod.New(a.deps, a.catalog.Catalog(), f.baseURL)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if f.output != "" {
				out, err := os.Create(f.output)
				if err != nil {
					return perr.Wrapf(err, perr.ErrorCodeFatalConfig, "create %s", f.output)
				}
				defer out.Close()
				w = out
			}

			rep, err := m.Service().Run(ctx, req, w)
			logger.C(ctx).Info().
				Int("scanned", rep.Scanned).
				Int("new", rep.New).
				Int("known", rep.Known).
				Int("blocked", rep.Blocked).
				Int("duplicate", rep.Duplicate).
				Int("next_offset", rep.NextOffset).
				Msg("browse finished")
			if err != nil {
				return fmt.Errorf("browse stopped, rerun with --start %d: %w", rep.NextOffset, err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.baseURL, "base-url", "", "remote listing url (default $CURATOR_REMOTE_BASE_URL)")
	fl.IntVar(&f.start, "start", 0, "listing offset to start at")
	fl.StringVar(&f.landmark, "landmark", "", "accession where detailed fetching starts")
	fl.StringVar(&f.landmarkBefore, "landmark-before", "", "start detailed fetching at the first record released before this date")
	fl.StringVar(&f.limit, "limit", "", "accession where the scan stops")
	fl.StringVar(&f.limitBefore, "limit-before", "", "stop at the first record released before this date")
	fl.StringVar(&f.blocklist, "blocklist", "", "file of accessions to ignore")
	fl.IntVar(&f.maxNew, "max-new", 0, "stop after this many new records (0 = no limit)")
	fl.StringVarP(&f.output, "output", "o", "", "write rows to this file instead of stdout")
	return cmd
}

func (f *browseFlags) request() (service.Request, error) {
	if f.start < 0 || f.maxNew < 0 {
		return service.Request{}, perr.FatalConfigf("--start and --max-new must not be negative")
	}
	lmBefore, err := parseDate("landmark-before", f.landmarkBefore)
	if err != nil {
		return service.Request{}, err
	}
	limBefore, err := parseDate("limit-before", f.limitBefore)
	if err != nil {
		return service.Request{}, err
	}
	return service.Request{
		Start:     f.start,
		Landmark:  paginate.Landmark{Accession: f.landmark, Before: lmBefore},
		Limit:     paginate.Limit{Accession: f.limit, Before: limBefore},
		Blocklist: f.blocklist,
		MaxNew:    f.maxNew,
	}, nil
}

func parseDate(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.UTC)
	if err != nil {
		return time.Time{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeFatalConfig, "bad --%s", flag), flag)
	}
	return t, nil
}
