// Package gitstore implements the source-file-store transport strategy:
// the league document is a JSON file at a fixed path in a repository,
// accessed through the GitHub contents API.
//
// Every read returns a revision token (the blob SHA); every write must
// supply the last-known token as a precondition. When the remote has
// moved on, the write fails with remote.ErrConflict, the cached token is
// cleared, and the caller must fetch before pushing again. The adapter
// never retries a conflicted write with a fresh token on its own: doing
// so would silently clobber a concurrent edit.
package gitstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/racklinehq/rackline/internal/league"
	"github.com/racklinehq/rackline/internal/remote"
)

// DefaultPath is where the document lives when no path is configured.
const DefaultPath = "league-state.json"

const defaultBaseURL = "https://api.github.com"

func init() {
	remote.Register(remote.TypeGitStore, func(cfg *remote.Config) (remote.Adapter, error) {
		return newAdapter(cfg, defaultBaseURL, nil)
	})
}

type adapter struct {
	owner  string
	repo   string
	path   string
	branch string
	token  string

	baseURL string
	client  *http.Client

	mu  sync.Mutex
	sha string // cached revision token; empty until the first fetch
}

func newAdapter(cfg *remote.Config, baseURL string, client *http.Client) (*adapter, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	return &adapter{
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		path:    path,
		branch:  cfg.Branch,
		token:   cfg.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

// Name implements remote.Adapter.
func (a *adapter) Name() remote.Type {
	return remote.TypeGitStore
}

func (a *adapter) contentsURL() string {
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", a.baseURL, a.owner, a.repo, a.path)
	if a.branch != "" {
		url += "?ref=" + a.branch
	}
	return url
}

func (a *adapter) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
}

// Fetch implements remote.Adapter. A 404 means the file does not exist
// yet and is the distinguishable not-found outcome; any other non-200 is
// transient.
func (a *adapter) Fetch(ctx context.Context) (*remote.Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.contentsURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fetch request: %w", err)
	}
	a.setHeaders(req)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gitstore fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, remote.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gitstore fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gitstore fetch failed: %w", err)
	}

	var file struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("gitstore fetch failed: %w", err)
	}

	// The API wraps base64 content across lines.
	raw, err := base64.StdEncoding.DecodeString(strings.Map(dropSpace, file.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to decode remote payload: %w", league.ErrInvalidFormat)
	}

	doc, err := remote.DecodePayload(raw)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.sha = file.SHA
	a.mu.Unlock()

	return &remote.Fetched{Document: doc, UpdatedAt: doc.UpdatedAt, Token: file.SHA}, nil
}

// Push implements remote.Adapter. The cached revision token rides along
// as the write precondition; 409 and 422 responses are the backend's
// precondition-mismatch signals.
func (a *adapter) Push(ctx context.Context, doc *league.Document, updatedAt int64) (string, error) {
	data, err := remote.PayloadBytes(doc, updatedAt)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	sha := a.sha
	a.mu.Unlock()

	payload := map[string]any{
		"message": "Update league state",
		"content": base64.StdEncoding.EncodeToString(data),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	if a.branch != "" {
		payload["branch"] = a.branch
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode push request: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", a.baseURL, a.owner, a.repo, a.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build push request: %w", err)
	}
	a.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gitstore push failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// fall through to parse the new revision token
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// Remote moved since our last fetch. Drop the stale token and
		// make the caller pull before the next push.
		a.mu.Lock()
		a.sha = ""
		a.mu.Unlock()
		return "", remote.ErrConflict
	default:
		return "", fmt.Errorf("gitstore push failed: status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gitstore push failed: %w", err)
	}
	var result struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("gitstore push failed: %w", err)
	}

	a.mu.Lock()
	a.sha = result.Content.SHA
	a.mu.Unlock()
	return result.Content.SHA, nil
}

// Close implements remote.Adapter.
func (a *adapter) Close() {}

// Token returns the cached revision token. Empty after a conflict or
// before the first fetch.
func (a *adapter) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sha
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\n', '\r', '\t':
		return -1
	}
	return r
}
