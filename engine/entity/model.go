package entity

import "github.com/intakehq/intake/engine/core"

// Kind discriminates the entity universes the resolver can search.
type Kind string

const (
	KindProject Kind = "project"
	KindUser    Kind = "user"
	KindSection Kind = "section"
)

// Project mirrors a tracker project synced into the entity store.
// The engine reads projects but never mutates them.
type Project struct {
	ID              core.ID  `json:"id" db:"id"`
	Name            string   `json:"name" db:"name"`
	NormalizedName  string   `json:"normalized_name" db:"normalized_name"`
	WorkspaceID     string   `json:"workspace_id,omitempty" db:"workspace_id"`
	Category        string   `json:"category,omitempty" db:"category"`
	Keywords        []string `json:"matching_keywords,omitempty" db:"matching_keywords"`
	DefaultAssignee string   `json:"default_assignee,omitempty" db:"default_assignee"`
}

// User mirrors a tracker user synced into the entity store.
type User struct {
	ID             core.ID `json:"id" db:"id"`
	Name           string  `json:"name" db:"name"`
	NormalizedName string  `json:"normalized_name" db:"normalized_name"`
	Email          string  `json:"email,omitempty" db:"email"`
}

// Section is a project section. Unlike projects and users, the engine may
// write new section rows it discovers from the tracker.
type Section struct {
	ID             core.ID `json:"id" db:"id"`
	ProjectID      core.ID `json:"project_id" db:"project_id"`
	Name           string  `json:"name" db:"name"`
	NormalizedName string  `json:"normalized_name" db:"normalized_name"`
}
