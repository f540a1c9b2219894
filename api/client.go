package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnknownAction is returned before any request is sent for an action the
// backend does not route.
var ErrUnknownAction = errors.New("api: unknown action")

const maxErrorBody = 4 * 1024

// ContainerActions lists the batch actions accepted by /api/containers/{action}.
var ContainerActions = []string{"start", "stop", "kill", "restart", "pause", "resume", "delete"}

// ComposeActions lists the project actions accepted by /api/compose/{action}.
var ComposeActions = []string{"up", "down", "delete"}

// PruneObjects lists the object kinds accepted by /api/system/prune.
var PruneObjects = []string{"containers", "images", "volumes", "networks"}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("api: %s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("api: %s %s: status %d: %s", e.Method, e.Path, e.Code, body)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the default client; tests pass httptest clients.
	HTTPClient *http.Client
}

// Client issues REST requests against the backend.
type Client struct {
	base      string
	timeout   time.Duration
	userAgent string
	http      *http.Client
}

// NewClient builds a Client. The base URL must be absolute.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", opts.BaseURL)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		base:      base,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		http:      httpClient,
	}, nil
}

// BaseURL returns the normalized backend URL.
func (c *Client) BaseURL() string {
	return c.base
}

// HTTPClient exposes the underlying client for long-lived stream requests.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// UserAgent returns the configured User-Agent header value.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// StreamURL returns the event stream endpoint for name.
func (c *Client) StreamURL(name string) string {
	return c.base + "/api/streams/" + url.PathEscape(name)
}

// ContainerAction applies action to every id in one request.
func (c *Client) ContainerAction(ctx context.Context, action string, ids []string) error {
	if !contains(ContainerActions, action) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return c.post(ctx, "/api/containers/"+action, idsBody(ids), nil)
}

// DeleteImages removes every image id in one request.
func (c *Client) DeleteImages(ctx context.Context, ids []string) error {
	return c.post(ctx, "/api/images/delete", idsBody(ids), nil)
}

// PullImage pulls image:tag on the backend.
func (c *Client) PullImage(ctx context.Context, image, tag string) error {
	body := map[string]string{"image": image, "tag": tag}
	return c.post(ctx, "/api/images/pull", body, nil)
}

// ComposeAction runs up, down or delete against a compose project.
func (c *Client) ComposeAction(ctx context.Context, action, project string) error {
	if !contains(ComposeActions, action) {
		return fmt.Errorf("%w: compose %q", ErrUnknownAction, action)
	}
	return c.post(ctx, "/api/compose/"+action, map[string]string{"projectName": project}, nil)
}

// UploadCompose stores a compose file under project.
func (c *Client) UploadCompose(ctx context.Context, project, yamlContents string) error {
	body := map[string]string{"projectName": project, "yamlContents": yamlContents}
	return c.post(ctx, "/api/compose/upload", body, nil)
}

// Prune removes unused objects of the given kinds.
func (c *Client) Prune(ctx context.Context, objects []string) error {
	for _, obj := range objects {
		if !contains(PruneObjects, obj) {
			return fmt.Errorf("%w: prune %q", ErrUnknownAction, obj)
		}
	}
	if objects == nil {
		objects = []string{}
	}
	return c.post(ctx, "/api/system/prune", map[string][]string{"objectsToPrune": objects}, nil)
}

// RunContainer creates and starts a container from cfg.
func (c *Client) RunContainer(ctx context.Context, cfg RunConfig) error {
	return c.post(ctx, "/api/containers/run", map[string]RunConfig{"config": cfg}, nil)
}

// ContainerInfo returns the backend's inspect document for id, indented.
func (c *Client) ContainerInfo(ctx context.Context, id string) ([]byte, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/containers/info/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("api: decode container info: %w", err)
	}
	pretty, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("api: format container info: %w", err)
	}
	return pretty, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("api: encode %s: %w", path, err)
	}
	raw, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("api: decode %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(body)}
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	return raw, nil
}

func idsBody(ids []string) map[string][]string {
	if ids == nil {
		ids = []string{}
	}
	return map[string][]string{"ids": ids}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
