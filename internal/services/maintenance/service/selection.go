package service

import (
	"bufio"
	"cmp"
	"context"
	"os"
	"slices"
	"strconv"
	"strings"

	perr "curator/internal/platform/errors"
	catalog "curator/internal/services/catalog/domain"
	"curator/internal/services/maintenance/domain"
)

// ReadIDFile reads entity ids, one per line or separated by commas, tabs or spaces.
// Blank lines and lines starting with # are ignored.
func ReadIDFile(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "read id file %s", path)
	}
	defer f.Close()

	var ids []int64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		for _, tok := range strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			id, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, perr.FatalConfigf("%s:%d: bad id %q", path, line, tok)
			}
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFatalConfig, "read id file %s", path)
	}
	return ids, nil
}

// selectCandidates resolves a Selection into entities sorted by id.
// Limit is left to the caller, which applies it after dropping resumed ids.
func selectCandidates(ctx context.Context, repo catalog.EntityRepo, sel domain.Selection) ([]catalog.Entity, error) {
	ids := slices.Clone(sel.IDs)
	if sel.IDFile != "" {
		more, err := ReadIDFile(sel.IDFile)
		if err != nil {
			return nil, err
		}
		ids = append(ids, more...)
	}
	if !sel.All && len(ids) == 0 && len(sel.Kinds) == 0 {
		return nil, perr.FatalConfigf("no candidates: give ids, an id file, kinds or all")
	}

	var (
		out []catalog.Entity
		err error
	)
	switch {
	case sel.All:
		out, err = repo.Select(ctx, catalog.Filter{Kinds: sel.Kinds})
	case len(ids) > 0:
		slices.Sort(ids)
		ids = slices.Compact(ids)
		out, err = repo.Select(ctx, catalog.Filter{IDs: ids})
		if err == nil && len(sel.Kinds) > 0 {
			byKind, kerr := repo.Select(ctx, catalog.Filter{Kinds: sel.Kinds})
			if kerr != nil {
				return nil, kerr
			}
			out = union(out, byKind)
		}
		if err == nil && len(out) < len(ids) {
			if missing := missingIDs(ids, out); len(missing) > 0 {
				return nil, perr.NotFoundf("entities not in catalog: %v", missing)
			}
		}
	default:
		out, err = repo.Select(ctx, catalog.Filter{Kinds: sel.Kinds})
	}
	if err != nil {
		return nil, err
	}

	if sel.ExcludeFile != "" {
		skip, err := ReadIDFile(sel.ExcludeFile)
		if err != nil {
			return nil, err
		}
		out = slices.DeleteFunc(out, func(e catalog.Entity) bool { return slices.Contains(skip, e.ID) })
	}
	return out, nil
}

func union(a, b []catalog.Entity) []catalog.Entity {
	seen := make(map[int64]bool, len(a))
	for _, e := range a {
		seen[e.ID] = true
	}
	for _, e := range b {
		if !seen[e.ID] {
			a = append(a, e)
			seen[e.ID] = true
		}
	}
	slices.SortFunc(a, func(x, y catalog.Entity) int { return cmp.Compare(x.ID, y.ID) })
	return a
}

func missingIDs(want []int64, got []catalog.Entity) []int64 {
	have := make(map[int64]bool, len(got))
	for _, e := range got {
		have[e.ID] = true
	}
	var out []int64
	for _, id := range want {
		if !have[id] {
			out = append(out, id)
		}
	}
	return out
}
