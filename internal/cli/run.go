package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"curator/internal/adapters/processor/exec"
	"curator/internal/adapters/processor/mark"
	"curator/internal/core/batch"
	"curator/internal/core/staleness"
	perr "curator/internal/platform/errors"
	"curator/internal/services/maintenance/domain"

	"github.com/spf13/cobra"
)

type runFlags struct {
	mark bool
	note string
	dir  string

	ids         []int64
	idFile      string
	kinds       []string
	all         bool
	excludeFile string
	limit       int

	force       bool
	auto        bool
	cutoff      string
	concurrency int
	unitTimeout time.Duration

	summary       string
	metrics       []string
	resume        bool
	retry         bool
	retryStatuses []string
}

func newRunCommand(g *Globals) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run OPERATION [-- COMMAND [ARG...]]",
		Short: "Run a maintenance operation over the selected entities",
		Long: `Run applies OPERATION to every selected entity whose history says it is due.

The command after -- is run once per entity; {id} and {accession} are replaced in
its arguments. With --mark no command runs and only the event is recorded.

Operations: ` + strings.Join(domain.OperationNames(), ", ") + `

Example:
  curator run gene-mapping --kinds MICROARRAY --auto -- ./map.sh {accession}
  curator run processed-vectors --ids 12,13 --force --mark`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := f.processor(args[1:])
			if err != nil {
				return err
			}
			req, err := f.request(args[0], time.Now().UTC())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, g)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			m, err := a.maintenance(ctx, proc)
			if err != nil {
				return err
			}
			rep, err := m.Run(ctx, req)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), rep)
			if n := rep.Counts[batch.Failed]; n > 0 {
				return perr.Processingf("%d of %d entities failed", n, total(rep.Counts))
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&f.mark, "mark", false, "record the event without running a command")
	fl.StringVar(&f.note, "note", "", "note stored on events recorded by --mark")
	fl.StringVar(&f.dir, "dir", "", "working directory for the command")

	fl.Int64SliceVar(&f.ids, "ids", nil, "entity ids to consider")
	fl.StringVar(&f.idFile, "id-file", "", "file of entity ids, one per line")
	fl.StringSliceVar(&f.kinds, "kinds", nil, "consider every entity of these kinds")
	fl.BoolVar(&f.all, "all", false, "consider every entity")
	fl.StringVar(&f.excludeFile, "exclude-file", "", "file of entity ids to leave out")
	fl.IntVar(&f.limit, "limit", 0, "stop after this many candidates (0 = no limit)")

	fl.BoolVar(&f.force, "force", false, "run regardless of history")
	fl.BoolVar(&f.auto, "auto", false, "run only where the history changed since the last run")
	fl.StringVar(&f.cutoff, "cutoff", "", "run where the last run is older than this (YYYY-MM-DD, RFC3339 or 30d)")
	fl.IntVar(&f.concurrency, "concurrency", 0, "entities processed at once (default $CURATOR_RUN_CONCURRENCY or 4)")
	fl.DurationVar(&f.unitTimeout, "unit-timeout", 0, "per entity time limit (0 = none)")

	fl.StringVar(&f.summary, "summary", "", "write a tab separated summary to this file")
	fl.StringSliceVar(&f.metrics, "metrics", nil, "metric column names for the summary")
	fl.BoolVar(&f.resume, "resume", false, "skip entities already listed in the summary")
	fl.BoolVar(&f.retry, "retry", false, "with --resume, rerun entities listed with a retry status")
	fl.StringSliceVar(&f.retryStatuses, "retry-statuses", nil, "statuses --retry reruns (default FAILED,UNKNOWN,UNSUPPORTED)")
	return cmd
}

// processor picks mark or exec; exactly one must be asked for
func (f *runFlags) processor(command []string) (domain.Processor, error) {
	switch {
	case f.mark && len(command) > 0:
		return nil, perr.FatalConfigf("--mark and a command are mutually exclusive")
	case f.mark:
		return mark.New(f.note), nil
	case len(command) == 0:
		return nil, perr.FatalConfigf("give a command after -- or use --mark")
	}
	p, err := exec.New(exec.Config{Command: command, Dir: f.dir})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (f *runFlags) request(operation string, now time.Time) (domain.Request, error) {
	cutoff, err := staleness.ParseCutoff(now, f.cutoff)
	if err != nil {
		return domain.Request{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeFatalConfig, "bad --cutoff"), "cutoff")
	}
	var retry []batch.Status
	for _, s := range f.retryStatuses {
		st, ok := batch.ParseStatus(strings.ToUpper(strings.TrimSpace(s)))
		if !ok {
			return domain.Request{}, perr.FatalConfigf("unknown retry status %q", s)
		}
		retry = append(retry, st)
	}
	return domain.Request{
		Operation: operation,
		Select: domain.Selection{
			IDs:         f.ids,
			IDFile:      f.idFile,
			Kinds:       f.kinds,
			All:         f.all,
			ExcludeFile: f.excludeFile,
			Limit:       f.limit,
		},
		Summary: domain.SummaryOptions{
			Path:          f.summary,
			Metrics:       f.metrics,
			Resume:        f.resume,
			Retry:         f.retry,
			RetryStatuses: retry,
		},
		Staleness: staleness.Options{
			Force:       f.force,
			AutoSeek:    f.auto,
			Cutoff:      cutoff,
			Concurrency: f.concurrency,
		},
		UnitTimeout: f.unitTimeout,
	}, nil
}

func total(counts map[batch.Status]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

// printReport writes the end-of-run counts and the listed failures.
// UNKNOWN outcomes are counted with the unsupported ones.
func printReport(w io.Writer, rep domain.Report) {
	fmt.Fprintf(w, "run %s %s: %d succeeded, %d skipped, %d failed, %d unsupported in %s\n",
		rep.RunID, rep.Operation,
		rep.Counts[batch.Success], rep.Counts[batch.Skipped], rep.Counts[batch.Failed],
		rep.Counts[batch.Unsupported]+rep.Counts[batch.Unknown],
		rep.Duration.Round(time.Millisecond))
	for _, o := range rep.Failures {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", o.EntityID, o.Label, o.Detail)
	}
}
