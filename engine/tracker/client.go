package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/intakehq/intake/engine/core"
)

const defaultBaseURL = "https://app.asana.com/api/1.0"

// Config holds tracker client settings.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is a REST client for the task tracker. Every call is a single HTTP
// request; the client never retries on its own.
type Client struct {
	http *resty.Client
}

// NewClient builds a tracker client. An explicit token is required; the
// tracker rejects anonymous calls.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, fmt.Errorf("tracker: access token is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.Token).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		http.SetTimeout(cfg.Timeout)
	}
	return &Client{http: http}, nil
}

type taskMembership struct {
	Project string `json:"project"`
	Section string `json:"section,omitempty"`
}

type taskPayload struct {
	Name        string           `json:"name"`
	Notes       string           `json:"notes,omitempty"`
	Projects    []string         `json:"projects,omitempty"`
	Parent      string           `json:"parent,omitempty"`
	Assignee    string           `json:"assignee,omitempty"`
	DueOn       string           `json:"due_on,omitempty"`
	DueAt       string           `json:"due_at,omitempty"`
	Memberships []taskMembership `json:"memberships,omitempty"`
}

type taskData struct {
	GID          string `json:"gid"`
	PermalinkURL string `json:"permalink_url"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// CreateTask creates a task or, when input.ParentID is set, a subtask. A
// due datetime takes precedence over a plain due date.
func (c *Client) CreateTask(ctx context.Context, input *CreateTaskInput) (*TaskRef, error) {
	payload := taskPayload{
		Name:  input.Name,
		Notes: input.Notes,
	}
	if !input.ParentID.IsZero() {
		payload.Parent = input.ParentID.String()
	} else {
		payload.Projects = []string{input.ProjectID.String()}
		if !input.SectionID.IsZero() {
			payload.Memberships = []taskMembership{{
				Project: input.ProjectID.String(),
				Section: input.SectionID.String(),
			}}
		}
	}
	if !input.AssigneeID.IsZero() {
		payload.Assignee = input.AssigneeID.String()
	}
	if input.DueAt != "" {
		payload.DueAt = input.DueAt
	} else if input.DueOn != "" {
		payload.DueOn = input.DueOn
	}
	var out envelope[taskData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"data": payload}).
		SetResult(&out).
		Post("/tasks")
	if err != nil {
		return nil, fmt.Errorf("tracker create task: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return &TaskRef{ID: core.ID(out.Data.GID), URL: out.Data.PermalinkURL}, nil
}

type sectionData struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// ListSections returns all sections of a project.
func (c *Client) ListSections(ctx context.Context, projectID core.ID) ([]Section, error) {
	var out envelope[[]sectionData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("opt_fields", "name").
		SetResult(&out).
		Get(fmt.Sprintf("/projects/%s/sections", projectID))
	if err != nil {
		return nil, fmt.Errorf("tracker list sections: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	sections := make([]Section, 0, len(out.Data))
	for _, s := range out.Data {
		sections = append(sections, Section{ID: core.ID(s.GID), Name: s.Name})
	}
	return sections, nil
}

// CreateSection creates a named section inside a project.
func (c *Client) CreateSection(ctx context.Context, projectID core.ID, name string) (*Section, error) {
	var out envelope[sectionData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"data": map[string]string{"name": name}}).
		SetResult(&out).
		Post(fmt.Sprintf("/projects/%s/sections", projectID))
	if err != nil {
		return nil, fmt.Errorf("tracker create section: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return &Section{ID: core.ID(out.Data.GID), Name: out.Data.Name}, nil
}

type projectData struct {
	GID       string `json:"gid"`
	Name      string `json:"name"`
	Workspace struct {
		GID string `json:"gid"`
	} `json:"workspace"`
}

// ListProjects returns all projects in a workspace. With an empty
// workspaceID the first workspace visible to the token is used.
func (c *Client) ListProjects(ctx context.Context, workspaceID string) ([]Project, error) {
	workspaceID, err := c.defaultWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	var out envelope[[]projectData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("opt_fields", "name,workspace.name").
		SetResult(&out).
		Get(fmt.Sprintf("/workspaces/%s/projects", workspaceID))
	if err != nil {
		return nil, fmt.Errorf("tracker list projects: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	projects := make([]Project, 0, len(out.Data))
	for _, p := range out.Data {
		projects = append(projects, Project{
			ID:          core.ID(p.GID),
			Name:        p.Name,
			WorkspaceID: p.Workspace.GID,
		})
	}
	return projects, nil
}

type userData struct {
	GID   string `json:"gid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListUsers returns all users in a workspace. With an empty workspaceID the
// first workspace visible to the token is used.
func (c *Client) ListUsers(ctx context.Context, workspaceID string) ([]User, error) {
	workspaceID, err := c.defaultWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	var out envelope[[]userData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("opt_fields", "name,email").
		SetResult(&out).
		Get(fmt.Sprintf("/workspaces/%s/users", workspaceID))
	if err != nil {
		return nil, fmt.Errorf("tracker list users: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	users := make([]User, 0, len(out.Data))
	for _, u := range out.Data {
		users = append(users, User{ID: core.ID(u.GID), Name: u.Name, Email: u.Email})
	}
	return users, nil
}

func (c *Client) defaultWorkspace(ctx context.Context, workspaceID string) (string, error) {
	if workspaceID != "" {
		return workspaceID, nil
	}
	var out envelope[[]struct {
		GID string `json:"gid"`
	}]
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/workspaces")
	if err != nil {
		return "", fmt.Errorf("tracker list workspaces: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	if len(out.Data) == 0 {
		return "", fmt.Errorf("tracker: no workspaces visible to this token")
	}
	return out.Data[0].GID, nil
}
