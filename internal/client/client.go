// Package client drives a running tracker server through its project API.
// Writes go through the server's store, so they are persisted once and
// broadcast to connected extensions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/generate"
)

// ProjectsPath is the project API prefix.
const ProjectsPath = "/api/projects"

// Client calls the project API of one server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the server at baseURL. An empty token sends no
// Authorization header.
func New(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + ProjectsPath,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// projectPath addresses a project; an empty id means the current project.
func projectPath(projectID string, rest ...string) string {
	if projectID == "" {
		projectID = "current"
	}
	parts := append([]string{"", url.PathEscape(projectID)}, rest...)
	return strings.Join(parts, "/")
}

// CreateProject adds an empty project on the server and makes it current.
func (c *Client) CreateProject(ctx context.Context, name string) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, http.MethodPost, "", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns project summaries, newest first.
func (c *Client) List(ctx context.Context) ([]project.Summary, error) {
	var out struct {
		Projects []project.Summary `json:"projects"`
	}
	if err := c.do(ctx, http.MethodGet, "", nil, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// Get returns a project, or the current one for an empty id.
func (c *Client) Get(ctx context.Context, projectID string) (*project.Project, error) {
	var out project.Project
	if err := c.do(ctx, http.MethodGet, projectPath(projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SwitchProject makes an existing project current.
func (c *Client) SwitchProject(ctx context.Context, projectID string) (*project.Project, error) {
	if projectID == "" {
		return nil, project.ErrProjectNotFound
	}
	var out project.Project
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "switch"), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.do(ctx, http.MethodDelete, projectPath(projectID), nil, nil)
}

// GenerateChecklist has the server generate and apply a checklist.
func (c *Client) GenerateChecklist(ctx context.Context, projectID string, in project.GenerateInput) (*project.Project, error) {
	body := map[string]any{
		"researchPlan": in.ResearchPlan,
		"projectStage": in.ProjectStage,
	}
	if in.Config != (project.Config{}) {
		body["config"] = in.Config
	}
	var out project.Project
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "generate"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddCustomItem prepends a user-authored item.
func (c *Client) AddCustomItem(ctx context.Context, projectID, text, category string) (*checklist.Item, error) {
	var out checklist.Item
	body := map[string]string{"text": text, "category": category}
	if err := c.do(ctx, http.MethodPost, projectPath(projectID, "items"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MutateItem applies m to one item.
func (c *Client) MutateItem(ctx context.Context, projectID, itemID string, m project.Mutation) (*project.Project, error) {
	item := url.PathEscape(itemID)
	var (
		method string
		path   string
		body   any
	)
	switch m := m.(type) {
	case project.Toggle:
		method, path = http.MethodPost, projectPath(projectID, "items", item, "toggle")
	case project.EditNotes:
		method, path = http.MethodPut, projectPath(projectID, "items", item, "notes")
		body = map[string]string{"notes": m.Notes}
	case project.CommitNotes:
		method, path = http.MethodPost, projectPath(projectID, "items", item, "notes", "commit")
		body = map[string]string{"notes": m.Notes}
	case project.LogMessage:
		method, path = http.MethodPost, projectPath(projectID, "items", item, "log")
		body = map[string]string{"message": m.Message}
	case project.Remove:
		method, path = http.MethodDelete, projectPath(projectID, "items", item)
	default:
		return nil, fmt.Errorf("unsupported mutation %T", m)
	}

	var out project.Project
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEvents returns a project's timeline, newest first.
func (c *Client) ListEvents(ctx context.Context, projectID string) ([]timeline.Event, error) {
	var out []timeline.Event
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "timeline"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportProject returns the project export document.
func (c *Client) ExportProject(ctx context.Context, projectID string) ([]byte, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, projectPath(projectID, "export"), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ImportProject creates a new current project from an export document.
func (c *Client) ImportProject(ctx context.Context, name string, data []byte) (*project.Project, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: not a JSON document", project.ErrInvalidImport)
	}
	body := map[string]any{"name": name, "project": json.RawMessage(data)}
	var out project.Project
	if err := c.do(ctx, http.MethodPost, "/import", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request and decodes a 2xx reply into out. Error replies
// become *project.RemoteError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		remote := &project.RemoteError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload generate.ErrorResponse
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			remote.Code = payload.Code
			remote.Message = payload.Error
			remote.Details = payload.Details
			remote.Err = project.ErrorForCode(payload.Code)
		}
		return remote
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
