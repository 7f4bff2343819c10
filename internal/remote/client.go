// Package remote talks to the shared sync/backup service. Every call goes
// through the circuit breaker and carries the stored bearer token.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/dto"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotConfigured = errors.New("remote: base url not configured")
	ErrUnauthorized  = errors.New("remote: unauthorized")
)

// StatusError is a non-2xx answer from the remote service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: status %d: %s", e.Code, e.Body)
}

type Credentials struct {
	Username string
	Password string
}

type Client struct {
	prefs      *infra.PrefStore
	defaultURL string
	creds      Credentials
	breaker    *infra.CircuitBreaker
	httpClient *http.Client
}

func NewClient(prefs *infra.PrefStore, baseURL string, creds Credentials, breaker *infra.CircuitBreaker) *Client {
	c := &Client{
		prefs:      prefs,
		defaultURL: strings.TrimRight(baseURL, "/"),
		creds:      creds,
		breaker:    breaker,
	}
	c.httpClient = &http.Client{
		Timeout:   30 * time.Second,
		Transport: &bearerTransport{base: http.DefaultTransport, token: c.token},
	}
	return c
}

// bearerTransport attaches the stored access token to every outgoing request.
type bearerTransport struct {
	base  http.RoundTripper
	token func() string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok := t.token(); tok != "" && req.Header.Get("Authorization") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return t.base.RoundTrip(req)
}

func (c *Client) token() string {
	tok, _ := c.prefs.Get(infra.PrefsSession, infra.PrefRemoteToken)
	return tok
}

// BaseURL prefers the URL saved at runtime over the configured one.
func (c *Client) BaseURL() string {
	if u, ok := c.prefs.Get(infra.PrefsSession, infra.PrefRemoteBaseURL); ok && u != "" {
		return u
	}
	return c.defaultURL
}

// SetBaseURL stores a new remote URL and forgets the token issued by the old one.
func (c *Client) SetBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote: invalid url %q", raw)
	}
	if err := c.prefs.Set(infra.PrefsSession, infra.PrefRemoteBaseURL, strings.TrimRight(raw, "/")); err != nil {
		return err
	}
	return c.prefs.Delete(infra.PrefsSession, infra.PrefRemoteToken)
}

func (c *Client) Configured() bool { return c.BaseURL() != "" }

func (c *Client) BreakerState() string { return c.breaker.State().String() }

// ── Calls ──────────────────────────────────────────────────────────────────

// Ping checks that the remote answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/health", nil, "", nil)
}

func (c *Client) Push(ctx context.Context, req dto.SyncPushRequest) (*dto.SyncPushResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("remote: marshal push: %w", err)
	}
	var out dto.SyncPushResponse
	if err := c.call(ctx, http.MethodPost, "/v1/sync/push", body, "application/json", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Pull(ctx context.Context, since time.Time) (*dto.SyncPullResponse, error) {
	path := "/v1/sync/pull"
	if !since.IsZero() {
		path += "?since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))
	}
	var out dto.SyncPullResponse
	if err := c.call(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadBackup sends an archive as multipart field "file".
func (c *Client) UploadBackup(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("remote: open backup: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("remote: read backup: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.call(ctx, http.MethodPost, "/v1/backups", buf.Bytes(), mw.FormDataContentType(), nil)
}

// call runs one request under the breaker. A 401 triggers a single login
// with the configured credentials followed by one retry.
func (c *Client) call(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	base := c.BaseURL()
	if base == "" {
		return ErrNotConfigured
	}
	return c.breaker.Execute(func() error {
		err := c.do(ctx, method, base+path, body, contentType, out)
		if errors.Is(err, ErrUnauthorized) && c.creds.Username != "" {
			if lerr := c.login(ctx, base); lerr != nil {
				return lerr
			}
			err = c.do(ctx, method, base+path, body, contentType, out)
		}
		return err
	})
}

func (c *Client) do(ctx context.Context, method, target string, body []byte, contentType string, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote: decode response: %w", err)
	}
	return nil
}

func (c *Client) login(ctx context.Context, base string) error {
	body, err := json.Marshal(dto.LoginRequest{Username: c.creds.Username, Password: c.creds.Password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Plain transport: the bearer transport would attach the stale token.
	resp, err := (&http.Client{Timeout: c.httpClient.Timeout}).Do(req)
	if err != nil {
		return fmt.Errorf("remote: unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: login returned %d", ErrUnauthorized, resp.StatusCode)
	}

	var lr dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("remote: decode login: %w", err)
	}
	if err := c.prefs.Set(infra.PrefsSession, infra.PrefRemoteToken, lr.AccessToken); err != nil {
		return err
	}
	log.Info().Str("remote", base).Msg("remote session refreshed")
	return nil
}
