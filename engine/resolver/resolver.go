package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/entity"
	"github.com/intakehq/intake/pkg/logger"
)

// EntityReader is the read side of the entity store the resolver works
// against. Lookups by normalized name are exact; the List variants feed the
// fuzzy pass.
type EntityReader interface {
	ProjectsByNormalizedName(ctx context.Context, normalized string) ([]entity.Project, error)
	ListProjects(ctx context.Context) ([]entity.Project, error)
	UsersByNormalizedName(ctx context.Context, normalized string) ([]entity.User, error)
	UsersByEmail(ctx context.Context, email string) ([]entity.User, error)
	ListUsers(ctx context.Context) ([]entity.User, error)
	SectionsByNormalizedName(ctx context.Context, projectID core.ID, normalized string) ([]entity.Section, error)
	ListSections(ctx context.Context, projectID core.ID) ([]entity.Section, error)
}

// Scope narrows the search universe; only sections require one.
type Scope struct {
	ProjectID core.ID
}

// Service resolves free-text names against the entity store. Absence of a
// match is a normal outcome, never an error.
type Service struct {
	store EntityReader
}

func NewService(store EntityReader) *Service {
	return &Service{store: store}
}

// Resolve maps a raw name to a MatchResult for the given entity kind. It
// runs an exact pass over normalized names first and falls back to fuzzy
// matching; user lookups that contain "@" try an email match before either.
func (s *Service) Resolve(ctx context.Context, rawName string, kind entity.Kind, scope Scope) (MatchResult, error) {
	if entity.Normalize(rawName) == "" {
		return MatchResult{}, nil
	}
	switch kind {
	case entity.KindProject:
		return s.resolveProject(ctx, rawName)
	case entity.KindUser:
		return s.resolveUser(ctx, rawName)
	case entity.KindSection:
		return s.resolveSection(ctx, rawName, scope)
	default:
		return MatchResult{}, fmt.Errorf("unknown entity kind: %s", kind)
	}
}

func (s *Service) resolveProject(ctx context.Context, rawName string) (MatchResult, error) {
	exact, err := s.store.ProjectsByNormalizedName(ctx, entity.Normalize(rawName))
	if err != nil {
		return MatchResult{}, fmt.Errorf("project exact lookup: %w", err)
	}
	if result, done := exactOutcome(projectCandidates(exact)); done {
		return result, nil
	}
	all, err := s.store.ListProjects(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("project list for fuzzy pass: %w", err)
	}
	result := fuzzyOutcome(rawName, projectCandidates(all))
	logMatch(ctx, "project", rawName, result)
	return result, nil
}

func (s *Service) resolveUser(ctx context.Context, rawName string) (MatchResult, error) {
	if strings.Contains(rawName, "@") {
		byEmail, err := s.store.UsersByEmail(ctx, strings.ToLower(strings.TrimSpace(rawName)))
		if err != nil {
			return MatchResult{}, fmt.Errorf("user email lookup: %w", err)
		}
		if result, done := exactOutcome(userCandidates(byEmail)); done {
			return result, nil
		}
	}
	exact, err := s.store.UsersByNormalizedName(ctx, entity.Normalize(rawName))
	if err != nil {
		return MatchResult{}, fmt.Errorf("user exact lookup: %w", err)
	}
	if result, done := exactOutcome(userCandidates(exact)); done {
		return result, nil
	}
	all, err := s.store.ListUsers(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("user list for fuzzy pass: %w", err)
	}
	result := fuzzyOutcome(rawName, userCandidates(all))
	logMatch(ctx, "user", rawName, result)
	return result, nil
}

func (s *Service) resolveSection(ctx context.Context, rawName string, scope Scope) (MatchResult, error) {
	if scope.ProjectID.IsZero() {
		return MatchResult{}, nil
	}
	exact, err := s.store.SectionsByNormalizedName(ctx, scope.ProjectID, entity.Normalize(rawName))
	if err != nil {
		return MatchResult{}, fmt.Errorf("section exact lookup: %w", err)
	}
	if result, done := exactOutcome(sectionCandidates(exact)); done {
		return result, nil
	}
	all, err := s.store.ListSections(ctx, scope.ProjectID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("section list for fuzzy pass: %w", err)
	}
	result := fuzzyOutcome(rawName, sectionCandidates(all))
	logMatch(ctx, "section", rawName, result)
	return result, nil
}

// exactOutcome turns exact-pass hits into a terminal result. A single hit
// resolves; multiple hits surface as candidates even though each matched
// exactly. Zero hits means the fuzzy pass should run.
func exactOutcome(hits []Candidate) (MatchResult, bool) {
	switch len(hits) {
	case 0:
		return MatchResult{}, false
	case 1:
		return resolved(hits[0].ID), true
	default:
		return ambiguous(hits), true
	}
}

type scored struct {
	candidate Candidate
	distance  float64
}

// fuzzyOutcome ranks the universe by Distance and applies the strictness
// and auto-accept thresholds.
func fuzzyOutcome(rawName string, universe []Candidate) MatchResult {
	kept := make([]scored, 0, len(universe))
	for _, c := range universe {
		d := Distance(rawName, c.Name)
		if d >= strictnessThreshold {
			continue
		}
		kept = append(kept, scored{candidate: c, distance: d})
	}
	if len(kept) == 0 {
		return MatchResult{}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].distance < kept[j].distance
	})
	if len(kept) == 1 && kept[0].distance < autoAcceptThreshold {
		return resolved(kept[0].candidate.ID)
	}
	candidates := make([]Candidate, 0, len(kept))
	for _, k := range kept {
		candidates = append(candidates, k.candidate)
	}
	return ambiguous(candidates)
}

func logMatch(ctx context.Context, kind, rawName string, result MatchResult) {
	log := logger.FromContext(ctx)
	switch {
	case !result.ID.IsZero():
		log.Debug("fuzzy match accepted", "kind", kind, "name", rawName, "id", result.ID)
	case result.IsAmbiguous():
		log.Debug("fuzzy match ambiguous", "kind", kind, "name", rawName, "candidates", len(result.Candidates))
	default:
		log.Debug("no match", "kind", kind, "name", rawName)
	}
}

func projectCandidates(projects []entity.Project) []Candidate {
	out := make([]Candidate, 0, len(projects))
	for _, p := range projects {
		out = append(out, Candidate{ID: p.ID, Name: p.Name})
	}
	return out
}

func userCandidates(users []entity.User) []Candidate {
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		out = append(out, Candidate{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out
}

func sectionCandidates(sections []entity.Section) []Candidate {
	out := make([]Candidate, 0, len(sections))
	for _, s := range sections {
		out = append(out, Candidate{ID: s.ID, Name: s.Name})
	}
	return out
}
