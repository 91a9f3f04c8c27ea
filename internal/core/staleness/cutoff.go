package staleness

import (
	"strconv"
	"strings"
	"time"

	perr "curator/internal/platform/errors"
)

// ParseCutoff reads a limiting date. Accepted forms: 2006-01-02, RFC3339, or a relative
// age such as 30d, -12h or 2w, which counts back from now. Empty input means no cutoff.
func ParseCutoff(now time.Time, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return &t, nil
	}

	rel := strings.TrimPrefix(s, "-")
	if len(rel) < 2 {
		return nil, perr.InvalidArgf("cutoff %q: want YYYY-MM-DD, RFC3339 or an age like 30d", s)
	}
	n, err := strconv.Atoi(rel[:len(rel)-1])
	if err != nil || n < 0 {
		return nil, perr.InvalidArgf("cutoff %q: bad amount", s)
	}
	var t time.Time
	switch rel[len(rel)-1] {
	case 'h':
		t = now.Add(-time.Duration(n) * time.Hour)
	case 'd':
		t = now.AddDate(0, 0, -n)
	case 'w':
		t = now.AddDate(0, 0, -7*n)
	case 'm':
		t = now.AddDate(0, -n, 0)
	default:
		return nil, perr.InvalidArgf("cutoff %q: unit must be one of h, d, w, m", s)
	}
	return &t, nil
}
