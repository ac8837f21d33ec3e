package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/entity"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/pkg/logger"
)

// SectionCache is the write-allowed slice of the entity store the section
// resolver uses. SectionByName returns entity.ErrNotFound on a miss.
type SectionCache interface {
	SectionByName(ctx context.Context, projectID core.ID, name string) (*entity.Section, error)
	UpsertSection(ctx context.Context, section *entity.Section) error
}

// SectionDirectory is the tracker surface the resolver falls back to. The
// tracker is authoritative; the cache is an optimization only.
type SectionDirectory interface {
	ListSections(ctx context.Context, projectID core.ID) ([]tracker.Section, error)
	CreateSection(ctx context.Context, projectID core.ID, name string) (*tracker.Section, error)
}

// SectionResolver resolves a section name within a project to its ID,
// consulting the cache before the tracker. A zero ID result means "use the
// tracker default section"; it is not an error.
type SectionResolver struct {
	cache  SectionCache
	remote SectionDirectory

	// allowCreation lets the resolver create a missing section on the
	// tracker instead of falling back to the default. Off by default.
	allowCreation bool
}

func NewSectionResolver(cache SectionCache, remote SectionDirectory, allowCreation bool) *SectionResolver {
	return &SectionResolver{cache: cache, remote: remote, allowCreation: allowCreation}
}

// ResolveSectionID returns the section's ID, or a zero ID when the project
// has no section with that name and creation is disabled.
func (r *SectionResolver) ResolveSectionID(ctx context.Context, projectID core.ID, sectionName string) (core.ID, error) {
	log := logger.FromContext(ctx)
	if projectID.IsZero() || sectionName == "" {
		return "", nil
	}
	cached, err := r.cache.SectionByName(ctx, projectID, sectionName)
	switch {
	case err == nil:
		return cached.ID, nil
	case !errors.Is(err, entity.ErrNotFound):
		// A broken cache must not fail resolution; the tracker still has
		// the answer.
		log.Warn("section cache lookup failed", "project_id", projectID, "section", sectionName, "error", err)
	}
	sections, err := r.remote.ListSections(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("listing tracker sections: %w", err)
	}
	for _, s := range sections {
		if s.Name == sectionName {
			r.cacheSection(ctx, projectID, s)
			return s.ID, nil
		}
	}
	if !r.allowCreation {
		log.Debug("section not found, using tracker default", "project_id", projectID, "section", sectionName)
		return "", nil
	}
	created, err := r.remote.CreateSection(ctx, projectID, sectionName)
	if err != nil {
		return "", fmt.Errorf("creating tracker section: %w", err)
	}
	r.cacheSection(ctx, projectID, *created)
	return created.ID, nil
}

// cacheSection writes through to the cache. Failures are logged and
// swallowed; a cold cache only costs a future remote call.
func (r *SectionResolver) cacheSection(ctx context.Context, projectID core.ID, s tracker.Section) {
	err := r.cache.UpsertSection(ctx, &entity.Section{
		ID:             s.ID,
		ProjectID:      projectID,
		Name:           s.Name,
		NormalizedName: entity.Normalize(s.Name),
	})
	if err != nil {
		logger.FromContext(ctx).Warn("section cache write failed",
			"project_id", projectID, "section", s.Name, "error", err)
	}
}
