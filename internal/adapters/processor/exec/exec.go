// Package exec runs an external command per entity and reads its verdict from the last stdout line
package exec

import (
	"bytes"
	"context"
	"errors"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"

	"curator/internal/core/batch"
	"curator/internal/core/staleness"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// Config for the processor. Command is an argv template; {id}, {accession}, {kind} and
// {operation} are replaced in every element.
type Config struct {
	Command []string
	Dir     string
	Env     []string
	// TailBytes caps how much stderr is kept for failure details
	TailBytes int
}

// Processor implements domain.Processor by running Command
type Processor struct {
	cfg Config
}

// New validates cfg
func New(cfg Config) (*Processor, error) {
	if len(cfg.Command) == 0 || strings.TrimSpace(cfg.Command[0]) == "" {
		return nil, perr.FatalConfigf("exec processor needs a command")
	}
	if cfg.TailBytes <= 0 {
		cfg.TailBytes = 2048
	}
	return &Processor{cfg: cfg}, nil
}

// Argv is the command line for e
func (p *Processor) Argv(e catalog.Entity, op staleness.Operation) []string {
	r := strings.NewReplacer(
		"{id}", strconv.FormatInt(e.ID, 10),
		"{accession}", e.Accession,
		"{kind}", e.Kind,
		"{operation}", op.Name,
	)
	out := make([]string, len(p.cfg.Command))
	for i, a := range p.cfg.Command {
		out[i] = r.Replace(a)
	}
	return out
}

func (p *Processor) env(e catalog.Entity, op staleness.Operation) []string {
	env := make([]string, 0, len(os.Environ())+len(p.cfg.Env)+4)
	env = append(env, os.Environ()...)
	env = append(env, p.cfg.Env...)
	return append(env,
		"CURATOR_ENTITY_ID="+strconv.FormatInt(e.ID, 10),
		"CURATOR_ACCESSION="+e.Accession,
		"CURATOR_KIND="+e.Kind,
		"CURATOR_OPERATION="+op.Name,
	)
}

// Process implements domain.Processor. A non-zero exit is an error carrying the stderr tail.
func (p *Processor) Process(ctx context.Context, e catalog.Entity, op staleness.Operation) (domain.Result, error) {
	argv := p.Argv(e, op)
	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = p.cfg.Dir
	cmd.Env = p.env(e, op)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := logger.C(ctx).With().Int64("entity_id", e.ID).Str("cmd", argv[0]).Logger()
	log.Debug().Strs("argv", argv).Msg("exec")

	if err := cmd.Run(); err != nil {
		tail := tailOf(stderr.Bytes(), p.cfg.TailBytes)
		if ctx.Err() != nil {
			return domain.Result{Detail: tail}, perr.Wrapf(ctx.Err(), perr.ErrorCodeProcessing, "%s interrupted", argv[0])
		}
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			msg := argv[0] + " exited " + strconv.Itoa(exitErr.ExitCode())
			if tail != "" {
				msg += ": " + tail
			}
			return domain.Result{}, perr.New(perr.ErrorCodeProcessing, msg)
		}
		return domain.Result{}, perr.Wrapf(err, perr.ErrorCodeProcessing, "start %s", argv[0])
	}
	return ParseVerdict(stdout.String()), nil
}

// ParseVerdict reads the last non-blank line of out. When it starts with a status
// (STATUS\tfield...) numeric fields become metrics and the rest form the label.
// Anything else is a plain success.
func ParseVerdict(out string) domain.Result {
	lines := strings.Split(strings.TrimRight(out, "\r\n\t "), "\n")
	last := strings.TrimRight(lines[len(lines)-1], "\r")
	fields := strings.Split(last, "\t")
	st, ok := batch.ParseStatus(strings.ToUpper(strings.TrimSpace(fields[0])))
	if !ok {
		return domain.Result{}
	}

	res := domain.Result{Status: st}
	var label []string
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			res.Metrics = append(res.Metrics, v)
			continue
		}
		label = append(label, f)
	}
	res.Label = strings.Join(label, " ")
	res.Note = res.Label
	return res
}

func tailOf(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
