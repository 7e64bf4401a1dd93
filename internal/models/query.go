package models

import (
	"fmt"
	"unicode/utf8"
)

// MaxQueryLength is the maximum accepted length of a retrieval query, in
// characters (spec: 10,000).
const MaxQueryLength = 10000

// MaxActionLength is the maximum accepted length of a planned_action string.
const MaxActionLength = 10000

// MaxContextLength is the maximum accepted length of a context string.
const MaxContextLength = 2000

// MaxConcernsLength is the maximum accepted length of a concerns string.
const MaxConcernsLength = 1000

// RetrievalQuery is a single query_governance request.
type RetrievalQuery struct {
	Query               string   `json:"query"`
	Domain              string   `json:"domain,omitempty"`
	IncludeConstitution *bool    `json:"include_constitution,omitempty"`
	IncludeMethods      bool     `json:"include_methods,omitempty"`
	MaxResults          int      `json:"max_results,omitempty"`
	SemanticWeight      *float64 `json:"semantic_weight,omitempty"` // per-query override of alpha
}

// IncludeConstitutionOrDefault returns whether the constitution domain should
// be unioned into routing; defaults to true when unset.
func (q *RetrievalQuery) IncludeConstitutionOrDefault() bool {
	if q.IncludeConstitution == nil {
		return true
	}
	return *q.IncludeConstitution
}

// Validate normalizes defaults and rejects malformed queries.
func (q *RetrievalQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if utf8.RuneCountInString(q.Query) > MaxQueryLength {
		return fmt.Errorf("query exceeds maximum length of %d characters", MaxQueryLength)
	}
	if q.MaxResults <= 0 {
		q.MaxResults = 10
	}
	if q.MaxResults > 50 {
		q.MaxResults = 50
	}
	if q.SemanticWeight != nil {
		if *q.SemanticWeight < 0 || *q.SemanticWeight > 1 {
			return fmt.Errorf("semantic_weight must be in [0,1]")
		}
	}
	return nil
}

// GovernanceQuery is an evaluate_governance request.
type GovernanceQuery struct {
	PlannedAction string `json:"planned_action"`
	Context       string `json:"context,omitempty"`
	Concerns      string `json:"concerns,omitempty"`
}

// Validate rejects malformed governance queries.
func (q *GovernanceQuery) Validate() error {
	if q.PlannedAction == "" {
		return fmt.Errorf("planned_action cannot be empty")
	}
	if utf8.RuneCountInString(q.PlannedAction) > MaxActionLength {
		return fmt.Errorf("planned_action exceeds maximum length of %d characters", MaxActionLength)
	}
	if utf8.RuneCountInString(q.Context) > MaxContextLength {
		return fmt.Errorf("context exceeds maximum length of %d characters", MaxContextLength)
	}
	if utf8.RuneCountInString(q.Concerns) > MaxConcernsLength {
		return fmt.Errorf("concerns exceeds maximum length of %d characters", MaxConcernsLength)
	}
	return nil
}

// CombinedText is the text passed to retrieval for evaluate_governance:
// planned_action + context + concerns.
func (q *GovernanceQuery) CombinedText() string {
	text := q.PlannedAction
	if q.Context != "" {
		text += " " + q.Context
	}
	if q.Concerns != "" {
		text += " " + q.Concerns
	}
	return text
}

// VerificationQuery is a verify_governance_compliance request.
type VerificationQuery struct {
	ActionDescription  string   `json:"action_description"`
	ExpectedPrinciples []string `json:"expected_principles,omitempty"`
}

// Validate rejects malformed verification queries.
func (q *VerificationQuery) Validate() error {
	if q.ActionDescription == "" {
		return fmt.Errorf("action_description cannot be empty")
	}
	if utf8.RuneCountInString(q.ActionDescription) > MaxActionLength {
		return fmt.Errorf("action_description exceeds maximum length of %d characters", MaxActionLength)
	}
	if len(q.ExpectedPrinciples) > 20 {
		return fmt.Errorf("expected_principles accepts at most 20 items")
	}
	for _, p := range q.ExpectedPrinciples {
		if utf8.RuneCountInString(p) > 100 {
			return fmt.Errorf("expected_principles entries must be at most 100 characters")
		}
	}
	return nil
}
