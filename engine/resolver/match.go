package resolver

import "github.com/intakehq/intake/engine/core"

// maxCandidates caps how many ranked options a MatchResult may carry.
const maxCandidates = 5

// Candidate is a possible, unconfirmed match that the caller must pick from.
type Candidate struct {
	ID    core.ID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
}

// MatchResult holds either a confirmed ID or a ranked candidate list, never
// both. A zero MatchResult means no match at all.
type MatchResult struct {
	ID         core.ID     `json:"id,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// IsEmpty reports that the resolver found nothing.
func (m MatchResult) IsEmpty() bool {
	return m.ID.IsZero() && len(m.Candidates) == 0
}

// IsAmbiguous reports that the caller must disambiguate.
func (m MatchResult) IsAmbiguous() bool {
	return len(m.Candidates) > 0
}

func resolved(id core.ID) MatchResult {
	return MatchResult{ID: id}
}

func ambiguous(candidates []Candidate) MatchResult {
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return MatchResult{Candidates: candidates}
}
