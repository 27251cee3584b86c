package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/walterschell/betza-board/board"
)

var (
	// ErrRejected is returned when the backend answers with a 4xx status.
	ErrRejected = errors.New("backend rejected request")
	// ErrMalformedResponse is returned for bodies that do not decode to the expected shape.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// IndexConvention selects which square number goes into request paths.
type IndexConvention int

const (
	// BackendIndices sends board.Index values unchanged.
	BackendIndices IndexConvention = iota
	// DisplayIndices sends the white-bottom display slot, for servers that
	// invert the number on their side.
	DisplayIndices
)

func ParseIndexConvention(s string) (IndexConvention, error) {
	switch s {
	case "", "backend":
		return BackendIndices, nil
	case "display":
		return DisplayIndices, nil
	default:
		return BackendIndices, fmt.Errorf("unknown index convention %q", s)
	}
}

type Client struct {
	baseURL    string
	http       *fasthttp.Client
	convention IndexConvention
	log        *zap.Logger

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

// WithRetry sets the number of attempts for GET requests. Commits are never retried.
func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func WithIndexConvention(ic IndexConvention) Option {
	return func(c *Client) { c.convention = ic }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		log:            zap.NewNop(),
		defaultTimeout: 10 * time.Second,
		retryMax:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("backend")
	return c
}

func (c *Client) SquaresForNotation(ctx context.Context, notation string) ([]board.Index, error) {
	var raw []int
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/get_betza/"+url.PathEscape(notation), &raw, true); err != nil {
		return nil, err
	}
	return toIndices(raw)
}

func (c *Client) LegalDestinations(ctx context.Context, from board.Index) ([]board.Index, error) {
	var raw []int
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/legal_moves/"+c.pathIndex(from), &raw, true); err != nil {
		return nil, err
	}
	return toIndices(raw)
}

// CommitMove asks the backend to play m and returns the resulting position string.
// The origin travels as a hint only; a backend may rely on its own record of the
// last queried square instead.
func (c *Client) CommitMove(ctx context.Context, m board.Move) (string, error) {
	path := "/make_move/" + c.pathIndex(m.To)
	if m.From.Valid() {
		path += "?from=" + c.pathIndex(m.From)
	}
	var fen string
	if err := c.doJSON(ctx, fasthttp.MethodPost, path, &fen, false); err != nil {
		return "", err
	}
	return fen, nil
}

func (c *Client) CurrentPosition(ctx context.Context) (string, error) {
	var fen string
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/position", &fen, true); err != nil {
		return "", err
	}
	return fen, nil
}

func (c *Client) pathIndex(i board.Index) string {
	n := int(i)
	if c.convention == DisplayIndices && i.Valid() {
		n = int(board.ToDisplay(i))
	}
	return strconv.Itoa(n)
}

func toIndices(raw []int) ([]board.Index, error) {
	out := make([]board.Index, 0, len(raw))
	for _, n := range raw {
		i := board.Index(n)
		if !i.Valid() {
			return nil, fmt.Errorf("%w: square %d out of range", ErrMalformedResponse, n)
		}
		out = append(out, i)
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("Accept", "application/json")

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.log.Debug("request", zap.String("method", method), zap.String("path", path), zap.Int("attempt", attempt))

		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("%s %s: %w", method, path, err)
			if attempt == attempts {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		switch {
		case status >= 400 && status < 500:
			return fmt.Errorf("%w: %s %s: status=%d body=%s", ErrRejected, method, path, status, truncate(string(resp.Body()), 256))
		case status < 200 || status >= 300:
			lastErr = fmt.Errorf("%s %s: status=%d body=%s", method, path, status, truncate(string(resp.Body()), 256))
			if attempt == attempts || !shouldRetryStatus(status) {
				return lastErr
			}
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
		}
		return nil
	}
	return lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
