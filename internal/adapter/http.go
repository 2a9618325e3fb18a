package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-task-keeper/internal/config"
	"github.com/MKhiriev/go-task-keeper/internal/logger"
	"github.com/MKhiriev/go-task-keeper/internal/utils"
	"github.com/MKhiriev/go-task-keeper/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPServerAdapter(adapterCfg config.Adapter, logger *logger.Logger) (ServerAdapter, error) {
	client := utils.NewHTTPClient()
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client.
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	return &httpServerAdapter{client: client, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent authenticated
// requests.
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter]. It returns the bearer token currently
// held by the adapter, or an empty string if none has been set.
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Register implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/auth/register. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken. Returns an error if
// the request fails, the server returns a non-2xx status, or the token cannot
// be parsed.
func (h *httpServerAdapter) Register(ctx context.Context, user models.User) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/register")
	if err != nil {
		return models.Token{}, fmt.Errorf("register request: %w", classifyTransportError(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("register parse bearer token: %w", err)
	}
	userID, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		return models.Token{}, fmt.Errorf("register parse user id: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token, UserID: userID}, nil
}

// Login implements [ServerAdapter]. It POSTs the user credentials to
// POST /api/auth/login. On success the bearer token is extracted from the
// Authorization response header and stored via SetToken.
func (h *httpServerAdapter) Login(ctx context.Context, user models.User) (models.Token, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(user).
		Post("/api/auth/login")
	if err != nil {
		return models.Token{}, fmt.Errorf("login request: %w", classifyTransportError(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Token{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Token{}, fmt.Errorf("login parse bearer token: %w", err)
	}
	userID, err := utils.ParseUserIDFromJWT(token)
	if err != nil {
		return models.Token{}, fmt.Errorf("login parse user id: %w", err)
	}

	h.SetToken(token)
	return models.Token{SignedString: token, UserID: userID}, nil
}

// FetchAll implements [ServerAdapter]. It GETs the full task list from
// GET /api/tasks. Requires a valid bearer token. Returns [ErrOffline]
// (wrapped) when the server cannot be reached.
func (h *httpServerAdapter) FetchAll(ctx context.Context) ([]models.Task, error) {
	resp, err := h.authedRequest(ctx).Get("/api/tasks")
	if err != nil {
		return nil, fmt.Errorf("fetch tasks request: %w", classifyTransportError(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var tasks []models.Task
	if err = json.Unmarshal(resp.Body(), &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks response: %w", err)
	}

	return tasks, nil
}

// CreateTask implements [ServerAdapter]. It POSTs the draft to
// POST /api/tasks and decodes the persisted task from the response. Requires
// a valid bearer token.
func (h *httpServerAdapter) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(draft).
		Post("/api/tasks")
	if err != nil {
		return models.Task{}, fmt.Errorf("create task request: %w", classifyTransportError(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Task{}, err
	}

	var task models.Task
	if err = json.Unmarshal(resp.Body(), &task); err != nil {
		return models.Task{}, fmt.Errorf("decode create task response: %w", err)
	}

	return task, nil
}

// UpdateTask implements [ServerAdapter]. It PATCHes the partial update to
// PATCH /api/tasks/{id} and decodes the updated task from the response.
// Returns [ErrNotFound] (wrapped) on HTTP 404. Requires a valid bearer token.
func (h *httpServerAdapter) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(patch).
		Patch("/api/tasks/" + url.PathEscape(id))
	if err != nil {
		return models.Task{}, fmt.Errorf("update task request: %w", classifyTransportError(err))
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Task{}, err
	}

	var task models.Task
	if err = json.Unmarshal(resp.Body(), &task); err != nil {
		return models.Task{}, fmt.Errorf("decode update task response: %w", err)
	}

	return task, nil
}

// DeleteTask implements [ServerAdapter]. It sends a DELETE request to
// DELETE /api/tasks/{id}. Returns [ErrNotFound] (wrapped) on HTTP 404.
// Requires a valid bearer token.
func (h *httpServerAdapter) DeleteTask(ctx context.Context, id string) error {
	resp, err := h.authedRequest(ctx).
		Delete("/api/tasks/" + url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("delete task request: %w", classifyTransportError(err))
	}

	return mapHTTPError(resp)
}

// Health implements [ServerAdapter]. It GETs GET /api/health without
// authentication. A nil return means the server answered with 2xx.
func (h *httpServerAdapter) Health(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/health")
	if err != nil {
		return fmt.Errorf("health request: %w", classifyTransportError(err))
	}

	return mapHTTPError(resp)
}

// Subscribe implements [ServerAdapter]. It opens a server-sent-events stream
// from GET /api/tasks/events and decodes each event into a
// [models.TaskEvent]. The returned channel is closed when ctx is cancelled or
// the stream breaks; the caller decides whether to resubscribe.
func (h *httpServerAdapter) Subscribe(ctx context.Context) (<-chan models.TaskEvent, error) {
	resp, err := h.authedRequest(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/api/tasks/events")
	if err != nil {
		return nil, fmt.Errorf("subscribe request: %w", classifyTransportError(err))
	}
	if resp.StatusCode() >= 300 {
		body := resp.RawBody()
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("subscribe: http %d", resp.StatusCode())
	}

	events := make(chan models.TaskEvent)

	go func() {
		defer close(events)
		defer resp.RawBody().Close()

		h.readEventStream(ctx, bufio.NewScanner(resp.RawBody()), events)
	}()

	return events, nil
}

// readEventStream parses the SSE wire format line by line: an optional
// "event:" line naming the kind, one "data:" line carrying JSON, and a blank
// line terminating the event.
func (h *httpServerAdapter) readEventStream(ctx context.Context, scanner *bufio.Scanner, events chan<- models.TaskEvent) {
	var (
		kind string
		data string
	)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			kind = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if event, ok := decodeTaskEvent(kind, data); ok {
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
			kind, data = "", ""
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		h.logger.Warn().Err(err).Str("func", "httpServerAdapter.readEventStream").Msg("event stream broken")
	}
}

func decodeTaskEvent(kind, data string) (models.TaskEvent, bool) {
	if kind == "" || data == "" {
		return models.TaskEvent{}, false
	}

	event := models.TaskEvent{Kind: models.EventKind(kind)}

	switch event.Kind {
	case models.EventInsert, models.EventUpdate:
		if err := json.Unmarshal([]byte(data), &event.Task); err != nil {
			return models.TaskEvent{}, false
		}
	case models.EventDelete:
		var payload struct {
			TaskID string `json:"task_id"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return models.TaskEvent{}, false
		}
		event.TaskID = payload.TaskID
	default:
		return models.TaskEvent{}, false
	}

	return event, true
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
