package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	apperrors "github.com/kbukum/heroes/errors"
	"github.com/kbukum/heroes/hero"
	"github.com/kbukum/heroes/pipeline"
	"github.com/kbukum/heroes/search"
)

const (
	heroesPath    = "/api/heroes"
	dashboardPath = "/api/dashboard"
	messagesPath  = "/api/messages"
	searchPath    = "/api/search"
)

// HeroClient is the typed client of the hero API.
type HeroClient struct {
	c *Client
}

var _ search.Lookup = (*HeroClient)(nil)

// NewHeroClient creates a HeroClient with its own Client.
func NewHeroClient(cfg Config, opts ...Option) (*HeroClient, error) {
	c, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &HeroClient{c: c}, nil
}

// NewHeroClientFrom wraps an existing Client.
func NewHeroClientFrom(c *Client) *HeroClient {
	return &HeroClient{c: c}
}

// Client returns the underlying protocol client.
func (h *HeroClient) Client() *Client {
	return h.c
}

// envelope is the success body of the backend.
type envelope[T any] struct {
	Data T `json:"data"`
}

func do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var zero T
	resp, err := c.Do(ctx, req)
	if err != nil {
		return zero, err
	}
	if resp.StatusCode == http.StatusNoContent || len(resp.Body) == 0 {
		return zero, nil
	}
	var env envelope[T]
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return zero, NewDecodeError(resp.StatusCode, resp.Body, err)
	}
	return env.Data, nil
}

// Heroes lists every hero.
func (h *HeroClient) Heroes(ctx context.Context) ([]hero.Hero, error) {
	heroes, err := do[[]hero.Hero](ctx, h.c, Request{Method: http.MethodGet, Path: heroesPath})
	return heroes, toAppError(err)
}

// Top lists the dashboard heroes.
func (h *HeroClient) Top(ctx context.Context) ([]hero.Hero, error) {
	heroes, err := do[[]hero.Hero](ctx, h.c, Request{Method: http.MethodGet, Path: dashboardPath})
	return heroes, toAppError(err)
}

// Hero fetches one hero.
func (h *HeroClient) Hero(ctx context.Context, id int) (hero.Hero, error) {
	got, err := do[hero.Hero](ctx, h.c, Request{Method: http.MethodGet, Path: heroPath(id)})
	return got, toAppError(err)
}

// AddHero creates a hero.
func (h *HeroClient) AddHero(ctx context.Context, name string) (hero.Hero, error) {
	got, err := do[hero.Hero](ctx, h.c, Request{
		Method: http.MethodPost,
		Path:   heroesPath,
		Body:   map[string]string{"name": name},
	})
	return got, toAppError(err)
}

// UpdateHero renames a hero.
func (h *HeroClient) UpdateHero(ctx context.Context, hr hero.Hero) (hero.Hero, error) {
	got, err := do[hero.Hero](ctx, h.c, Request{
		Method: http.MethodPut,
		Path:   heroPath(hr.ID),
		Body:   map[string]string{"name": hr.Name},
	})
	return got, toAppError(err)
}

// DeleteHero removes a hero.
func (h *HeroClient) DeleteHero(ctx context.Context, id int) error {
	_, err := do[struct{}](ctx, h.c, Request{Method: http.MethodDelete, Path: heroPath(id)})
	return toAppError(err)
}

// SearchHeroes returns the heroes whose name contains term. A blank term
// returns an empty result without a request. The request is never retried:
// a newer query usually follows, and the search pipeline substitutes an
// empty result. Any failure is returned as a LookupError.
func (h *HeroClient) SearchHeroes(ctx context.Context, term string) ([]hero.Hero, error) {
	if strings.TrimSpace(term) == "" {
		return []hero.Hero{}, nil
	}
	heroes, err := do[[]hero.Hero](ctx, h.c, Request{
		Method:  http.MethodGet,
		Path:    heroesPath,
		Query:   map[string]string{"name": term},
		NoRetry: true,
	})
	if err != nil {
		return nil, apperrors.LookupError(term, err)
	}
	if heroes == nil {
		heroes = []hero.Hero{}
	}
	return heroes, nil
}

// Messages returns the backend message log.
func (h *HeroClient) Messages(ctx context.Context) ([]string, error) {
	msgs, err := do[[]string](ctx, h.c, Request{Method: http.MethodGet, Path: messagesPath})
	return msgs, toAppError(err)
}

// ClearMessages empties the backend message log.
func (h *HeroClient) ClearMessages(ctx context.Context) error {
	_, err := do[struct{}](ctx, h.c, Request{Method: http.MethodDelete, Path: messagesPath})
	return toAppError(err)
}

// SubmitQuery sends one keystroke to a remote search session.
func (h *HeroClient) SubmitQuery(ctx context.Context, session, text string) error {
	_, err := do[struct{}](ctx, h.c, Request{
		Method: http.MethodPost,
		Path:   searchPath + "/" + url.PathEscape(session) + "/query",
		Body:   map[string]string{"query": text},
	})
	return toAppError(err)
}

// StreamResults attaches to a remote search session and returns its
// results. The stream ends when ctx is done or the server closes it;
// the caller must Close the iterator.
func (h *HeroClient) StreamResults(ctx context.Context, session string) (pipeline.Iterator[search.Result], error) {
	stream, err := h.c.DoStream(ctx, Request{
		Method: http.MethodGet,
		Path:   searchPath + "/" + url.PathEscape(session) + "/stream",
	})
	if err != nil {
		return nil, toAppError(err)
	}
	return &resultStream{stream: stream}, nil
}

// resultStream decodes Result events. Reads block on the response body,
// which is bounded by the context the stream was opened with.
type resultStream struct {
	stream *StreamResponse
}

func (r *resultStream) Next(ctx context.Context) (search.Result, bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return search.Result{}, false, err
		}
		ev, err := r.stream.Events.Next()
		if errors.Is(err, io.EOF) {
			return search.Result{}, false, nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return search.Result{}, false, ctx.Err()
			}
			return search.Result{}, false, NewConnectionError(err)
		}
		// Only data-only frames carry results.
		if ev.Event != "" {
			continue
		}
		var res search.Result
		if err := json.Unmarshal([]byte(ev.Data), &res); err != nil {
			return search.Result{}, false, NewDecodeError(r.stream.StatusCode, []byte(ev.Data), err)
		}
		return res, true, nil
	}
}

func (r *resultStream) Close() error {
	return r.stream.Close()
}

func heroPath(id int) string {
	return heroesPath + "/" + strconv.Itoa(id)
}

// toAppError maps client errors to the application taxonomy.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e.AppError()
	}
	return apperrors.Wrap(err)
}

// String implements fmt.Stringer.
func (h *HeroClient) String() string {
	return fmt.Sprintf("heroes backend at %s", h.c.BaseURL())
}
