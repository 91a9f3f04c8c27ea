// Package catalogapi reads the remote series listing over http as a paginate.Source
package catalogapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"curator/internal/core/paginate"
	perr "curator/internal/platform/errors"
	"curator/internal/platform/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "curator-browse"
	listPath       = "/v1/series"
	maxBody        = 8 << 20
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Token is sent as a bearer token when set
	Token string
}

// Client fetches one page per call. It does not retry: 5xx, 429 and transport failures
// come back as Unavailable / TooManyRequests so paginate's retry policy can decide.
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

var _ paginate.Source = (*Client)(nil)

// NewClient creates a new Client with defaults filled in
func NewClient(o Options) (*Client, error) {
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if u, err := url.Parse(o.BaseURL); err != nil || !u.IsAbs() {
		return nil, perr.FatalConfigf("remote base url %q is not absolute", o.BaseURL)
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("catalogapi"),
		now:  time.Now,
	}, nil
}

type listResponse struct {
	Offset  int               `json:"offset"`
	Records []paginate.Record `json:"records"`
}

// Fetch implements paginate.Source
func (c *Client) Fetch(ctx context.Context, offset, count int, detailed bool) (paginate.Page, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("count", strconv.Itoa(count))
	if detailed {
		q.Set("detail", "full")
	}
	path := listPath + "?" + q.Encode()

	resp, err := c.do(ctx, path)
	if err != nil {
		return paginate.Page{}, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("path", path).Msg("catalogapi close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return paginate.Page{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "catalogapi read body")
	}
	var out listResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return paginate.Page{}, perr.Wrap(err, perr.ErrorCodeProcessing, "catalogapi decode listing")
	}
	return paginate.Page{Offset: offset, Records: out.Records}, nil
}

func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "catalogapi new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	if c.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "catalogapi do failed")
	}

	retryAfter := atoi(resp.Header.Get("Retry-After"))
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int("retry_after_s", retryAfter).
		Msg("catalogapi http response")

	switch code := resp.StatusCode; {
	case code == http.StatusOK:
		return resp, nil
	case code == http.StatusTooManyRequests:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "catalogapi rate limited (retry after %ds)", retryAfter)
	case code >= 500:
		_ = drainAndClose(resp.Body)
		return nil, perr.Newf(perr.ErrorCodeUnavailable, "catalogapi transient server error %d", code)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		_ = resp.Body.Close()
		return nil, perr.Newf(perr.ErrorCodeProcessing, "catalogapi unexpected status %d body %s", code, strings.TrimSpace(string(body)))
	}
}

func atoi(s string) int {
	i, _ := strconv.Atoi(strings.TrimSpace(s))
	return i
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
