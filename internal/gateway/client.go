// ABOUTME: Client for the session API with the soft-failure ABI contract
// ABOUTME: Get fails to "", Set to false, List to "{}"; nothing raises

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// Handle is an opaque reference to a gateway session. The zero Handle
// is invalid; operations on it fail soft.
type Handle struct {
	id string
}

// Valid reports whether the handle refers to a created session.
func (h Handle) Valid() bool {
	return h.id != ""
}

// Client talks to a running gateway daemon. Every operation has a
// defined non-failing result: Get returns "" on any failure, Set
// returns false, List returns "{}". Each returned string is freshly
// allocated; no buffer is shared between calls.
type Client struct {
	httpc   *http.Client
	baseURL string
	token   string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout bounds each call; a timed-out call reports failure
// rather than staying pending.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpc.Timeout = d
	}
}

// NewClient creates a client for a daemon listening on a unix socket.
func NewClient(socketPath string, opts ...ClientOption) *Client {
	c := &Client{
		httpc: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		},
		// The host is a placeholder; the transport always dials the socket.
		baseURL: "http://coven-vars",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTCPClient creates a client for a daemon listening on a TCP address.
func NewTCPClient(addr string, opts ...ClientOption) *Client {
	c := &Client{
		httpc:   &http.Client{Timeout: 10 * time.Second},
		baseURL: "http://" + addr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create binds a new session to configDir/variables.json, or to the
// daemon's default store when configDir is empty. Create never returns
// an error: if the daemon is unreachable the result is an invalid
// Handle whose operations fail soft.
func (c *Client) Create(ctx context.Context, configDir string) Handle {
	body, _ := json.Marshal(CreateSessionRequest{ConfigDir: configDir})

	var resp CreateSessionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions", body, &resp); err != nil {
		return Handle{}
	}
	return Handle{id: resp.SessionID}
}

// Destroy releases the session. Best effort and idempotent; errors and
// invalid handles are ignored.
func (c *Client) Destroy(ctx context.Context, h Handle) {
	if !h.Valid() {
		return
	}
	c.do(ctx, http.MethodDelete, "/v1/sessions/"+url.PathEscape(h.id), nil, nil)
}

// Get returns the rendered value of name, or "" if the variable is
// absent or the call fails for any reason.
func (c *Client) Get(ctx context.Context, h Handle, name string) string {
	if !h.Valid() {
		return ""
	}

	path := "/v1/sessions/" + url.PathEscape(h.id) + "/vars?name=" + url.QueryEscape(name)
	var resp GetVarResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return ""
	}
	return resp.Value
}

// Set assigns the coerced value literal to name. Returns false on any
// failure; a persisted-but-delayed write still reports true, matching
// the in-process contract.
func (c *Client) Set(ctx context.Context, h Handle, name, value string) bool {
	if !h.Valid() {
		return false
	}

	body, _ := json.Marshal(SetVarRequest{Name: name, Value: value})
	var resp SetVarResponse
	if err := c.do(ctx, http.MethodPut, "/v1/sessions/"+url.PathEscape(h.id)+"/vars", body, &resp); err != nil {
		return false
	}
	return resp.OK
}

// List returns the full store as JSON object text, or "{}" on any
// failure.
func (c *Client) List(ctx context.Context, h Handle) string {
	if !h.Valid() {
		return "{}"
	}

	raw, err := c.raw(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(h.id)+"/vars")
	if err != nil {
		return "{}"
	}
	return string(bytes.TrimRight(raw, "\n"))
}

// Process funnels a free-form line through the session's input
// processor. On failure the line is returned unchanged, unassigned.
func (c *Client) Process(ctx context.Context, h Handle, line string) (string, bool) {
	if !h.Valid() {
		return line, false
	}

	body, _ := json.Marshal(ProcessRequest{Line: line})
	var resp ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/"+url.PathEscape(h.id)+"/process", body, &resp); err != nil {
		return line, false
	}
	return resp.Text, resp.Assigned
}

// Health reports whether the daemon is reachable.
func (c *Client) Health(ctx context.Context) bool {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil) == nil
}

// do performs a request and decodes the JSON response into out when
// out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	raw, err := c.rawRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// raw performs a request and returns the response body verbatim.
func (c *Client) raw(ctx context.Context, method, path string) ([]byte, error) {
	return c.rawRequest(ctx, method, path, nil)
}

func (c *Client) rawRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned %s", resp.Status)
	}
	return data, nil
}
