// Package notehub talks to the NoteHub REST API.
package notehub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/idilsaglam/notehub/internal/model"
)

const (
	DefaultBaseURL = "https://notehub-public.goit.study/api"
	DefaultPerPage = 12

	defaultTimeout = 15 * time.Second
	maxErrorBody   = 4 << 10
)

// Notes is the remote surface the rest of the app depends on.
type Notes interface {
	ListNotes(ctx context.Context, params ListParams) (*model.NotesPage, error)
	CreateNote(ctx context.Context, params model.CreateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, id int) (*model.Note, error)
}

// ListParams selects one page. Zero Page and PerPage mean 1 and DefaultPerPage.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
}

// Client is an HTTP implementation of Notes.
type Client struct {
	baseURL   *url.URL
	token     string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

var _ Notes = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient builds a client for baseURL (DefaultBaseURL when empty).
// An empty token is allowed; the server will answer 401.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:   u,
		userAgent: "notehub-cli",
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListNotes fetches one page. The search parameter is left out when empty.
func (c *Client) ListNotes(ctx context.Context, params ListParams) (*model.NotesPage, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = DefaultPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("perPage", strconv.Itoa(params.PerPage))
	if params.Search != "" {
		q.Set("search", params.Search)
	}

	var page model.NotesPage
	if err := c.do(ctx, "list notes", http.MethodGet, "/notes", q, nil, &page); err != nil {
		return nil, err
	}
	if page.Notes == nil {
		page.Notes = []model.Note{}
	}
	return &page, nil
}

// CreateNote posts params as-is; validation is the caller's job.
func (c *Client) CreateNote(ctx context.Context, params model.CreateNoteParams) (*model.Note, error) {
	var note model.Note
	if err := c.do(ctx, "create note", http.MethodPost, "/notes", nil, params, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note and returns the record the server confirmed.
func (c *Client) DeleteNote(ctx context.Context, id int) (*model.Note, error) {
	var note model.Note
	path := "/notes/" + strconv.Itoa(id)
	if err := c.do(ctx, "delete note", http.MethodDelete, path, nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, in, out any) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("notehub request failed",
			slog.String("op", op),
			slog.String("url", u.String()),
			slog.String("error", err.Error()))
		return &RequestError{Op: op, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("notehub request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("url", u.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

// errorMessage prefers the server's own text over the status line.
func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message  string `json:"message"`
		Error    string `json:"error"`
		Response struct {
			Message string `json:"message"`
		} `json:"response"`
	}
	if json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.Message, body.Error, body.Response.Message} {
			if m = strings.TrimSpace(m); m != "" {
				return m
			}
		}
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status code %d", resp.StatusCode)
}

func transportMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return "network error: " + uerr.Err.Error()
	}
	return "network error: " + err.Error()
}
