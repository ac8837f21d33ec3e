package sync

import (
	"context"
	"fmt"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/entity"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/pkg/logger"
)

// Directory is the tracker surface the syncer pulls from.
type Directory interface {
	ListProjects(ctx context.Context, workspaceID string) ([]tracker.Project, error)
	ListUsers(ctx context.Context, workspaceID string) ([]tracker.User, error)
	ListSections(ctx context.Context, projectID core.ID) ([]tracker.Section, error)
}

// EntityWriter is the write side of the entity store the syncer fills.
type EntityWriter interface {
	UpsertProject(ctx context.Context, project *entity.Project) error
	UpsertUser(ctx context.Context, user *entity.User) error
	UpsertSection(ctx context.Context, section *entity.Section) error
}

// Stats counts what one sync run touched.
type Stats struct {
	Projects int
	Users    int
	Sections int
	// SectionErrors counts projects whose section listing failed and was
	// skipped.
	SectionErrors int
}

// Syncer mirrors tracker projects, users, and sections into the entity
// store. The tracker stays authoritative; rows are upserted, never deleted.
type Syncer struct {
	directory Directory
	writer    EntityWriter
}

func NewSyncer(directory Directory, writer EntityWriter) *Syncer {
	return &Syncer{directory: directory, writer: writer}
}

// SyncAll pulls the full entity universe for one workspace. A project whose
// sections cannot be listed is logged and skipped; project, user, and store
// write failures abort the run.
func (s *Syncer) SyncAll(ctx context.Context, workspaceID string) (*Stats, error) {
	log := logger.FromContext(ctx)
	stats := &Stats{}

	projects, err := s.directory.ListProjects(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing tracker projects: %w", err)
	}
	log.Info("syncing projects", "count", len(projects))
	for i := range projects {
		if err := s.syncProject(ctx, &projects[i], stats); err != nil {
			return nil, err
		}
	}

	users, err := s.directory.ListUsers(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing tracker users: %w", err)
	}
	log.Info("syncing users", "count", len(users))
	for _, u := range users {
		err := s.writer.UpsertUser(ctx, &entity.User{
			ID:             u.ID,
			Name:           u.Name,
			NormalizedName: entity.Normalize(u.Name),
			Email:          u.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("upserting user %s: %w", u.ID, err)
		}
		stats.Users++
	}

	log.Info("sync finished",
		"projects", stats.Projects,
		"users", stats.Users,
		"sections", stats.Sections,
		"section_errors", stats.SectionErrors)
	return stats, nil
}

func (s *Syncer) syncProject(ctx context.Context, p *tracker.Project, stats *Stats) error {
	log := logger.FromContext(ctx)
	err := s.writer.UpsertProject(ctx, &entity.Project{
		ID:             p.ID,
		Name:           p.Name,
		NormalizedName: entity.Normalize(p.Name),
		WorkspaceID:    p.WorkspaceID,
	})
	if err != nil {
		return fmt.Errorf("upserting project %s: %w", p.ID, err)
	}
	stats.Projects++

	sections, err := s.directory.ListSections(ctx, p.ID)
	if err != nil {
		log.Error("failed to list sections, skipping project", "project", p.Name, "error", err)
		stats.SectionErrors++
		return nil
	}
	for _, sec := range sections {
		err := s.writer.UpsertSection(ctx, &entity.Section{
			ID:             sec.ID,
			ProjectID:      p.ID,
			Name:           sec.Name,
			NormalizedName: entity.Normalize(sec.Name),
		})
		if err != nil {
			return fmt.Errorf("upserting section %s: %w", sec.ID, err)
		}
		stats.Sections++
	}
	return nil
}
