package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/entity"
)

const (
	projectColumns = "id, name, normalized_name, workspace_id, category, matching_keywords, default_assignee"
	userColumns    = "id, name, normalized_name, email"
	sectionColumns = "id, project_id, name, normalized_name"
)

// EntityRepo is the Postgres entity store. It serves the resolver's read
// queries and the section cache writes.
type EntityRepo struct {
	db DBInterface
}

func NewEntityRepo(db DBInterface) *EntityRepo {
	return &EntityRepo{db: db}
}

func (r *EntityRepo) ProjectsByNormalizedName(ctx context.Context, normalized string) ([]entity.Project, error) {
	sb := squirrel.Select(projectColumns).
		From("projects").
		Where(squirrel.Eq{"normalized_name": normalized}).
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.Project](ctx, r.db, sb, "projects by normalized name")
}

func (r *EntityRepo) ListProjects(ctx context.Context) ([]entity.Project, error) {
	sb := squirrel.Select(projectColumns).
		From("projects").
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.Project](ctx, r.db, sb, "listing projects")
}

func (r *EntityRepo) UsersByNormalizedName(ctx context.Context, normalized string) ([]entity.User, error) {
	sb := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Eq{"normalized_name": normalized}).
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.User](ctx, r.db, sb, "users by normalized name")
}

func (r *EntityRepo) UsersByEmail(ctx context.Context, email string) ([]entity.User, error) {
	sb := squirrel.Select(userColumns).
		From("users").
		Where(squirrel.Expr("lower(email) = lower(?)", email)).
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.User](ctx, r.db, sb, "users by email")
}

func (r *EntityRepo) ListUsers(ctx context.Context) ([]entity.User, error) {
	sb := squirrel.Select(userColumns).
		From("users").
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.User](ctx, r.db, sb, "listing users")
}

func (r *EntityRepo) SectionsByNormalizedName(
	ctx context.Context,
	projectID core.ID,
	normalized string,
) ([]entity.Section, error) {
	sb := squirrel.Select(sectionColumns).
		From("sections").
		Where(squirrel.Eq{"project_id": projectID, "normalized_name": normalized}).
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.Section](ctx, r.db, sb, "sections by normalized name")
}

func (r *EntityRepo) ListSections(ctx context.Context, projectID core.ID) ([]entity.Section, error) {
	sb := squirrel.Select(sectionColumns).
		From("sections").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar)
	return selectAll[entity.Section](ctx, r.db, sb, "listing sections")
}

// SectionByName is the section cache's exact lookup by display name. A
// miss is entity.ErrNotFound, never a nil section.
func (r *EntityRepo) SectionByName(ctx context.Context, projectID core.ID, name string) (*entity.Section, error) {
	sb := squirrel.Select(sectionColumns).
		From("sections").
		Where(squirrel.Eq{"project_id": projectID, "name": name}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var section entity.Section
	if err := pgxscan.Get(ctx, r.db, &section, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("section by name: %w", err)
	}
	return &section, nil
}

// UpsertSection writes a section the resolver discovered from the tracker.
func (r *EntityRepo) UpsertSection(ctx context.Context, section *entity.Section) error {
	sb := squirrel.Insert("sections").
		Columns("id", "project_id", "name", "normalized_name").
		Values(section.ID, section.ProjectID, section.Name, section.NormalizedName).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, normalized_name = EXCLUDED.normalized_name, synced_at = now()").
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upserting section: %w", err)
	}
	return nil
}

// UpsertProject refreshes a synced project row.
func (r *EntityRepo) UpsertProject(ctx context.Context, project *entity.Project) error {
	sb := squirrel.Insert("projects").
		Columns("id", "name", "normalized_name", "workspace_id", "category", "matching_keywords", "default_assignee").
		Values(project.ID, project.Name, project.NormalizedName, project.WorkspaceID,
			project.Category, project.Keywords, project.DefaultAssignee).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, normalized_name = EXCLUDED.normalized_name, workspace_id = EXCLUDED.workspace_id, synced_at = now()").
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upserting project: %w", err)
	}
	return nil
}

// UpsertUser refreshes a synced user row.
func (r *EntityRepo) UpsertUser(ctx context.Context, user *entity.User) error {
	sb := squirrel.Insert("users").
		Columns("id", "name", "normalized_name", "email").
		Values(user.ID, user.Name, user.NormalizedName, user.Email).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, normalized_name = EXCLUDED.normalized_name, email = EXCLUDED.email, synced_at = now()").
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := sb.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}
	return nil
}

func selectAll[T any](ctx context.Context, db DBInterface, sb squirrel.SelectBuilder, op string) ([]T, error) {
	sql, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var out []T
	if err := pgxscan.Select(ctx, db, &out, sql, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
