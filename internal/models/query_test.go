package models

import "testing"

func TestRetrievalQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *RetrievalQuery
		wantErr bool
	}{
		{"empty query", &RetrievalQuery{Query: ""}, true},
		{"valid query", &RetrievalQuery{Query: "hello"}, false},
		{"sets default max results", &RetrievalQuery{Query: "x", MaxResults: 0}, false},
		{"caps max results at 50", &RetrievalQuery{Query: "x", MaxResults: 999}, false},
		{"too long", &RetrievalQuery{Query: string(make([]byte, MaxQueryLength+1))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if tt.query.MaxResults == 0 {
					t.Error("expected default max_results to be set")
				}
				if tt.query.MaxResults > 50 {
					t.Errorf("expected max_results capped at 50, got %d", tt.query.MaxResults)
				}
			}
		})
	}
}

func TestRetrievalQuery_IncludeConstitutionOrDefault(t *testing.T) {
	q := &RetrievalQuery{Query: "x"}
	if !q.IncludeConstitutionOrDefault() {
		t.Error("expected default true when unset")
	}
	f := false
	q.IncludeConstitution = &f
	if q.IncludeConstitutionOrDefault() {
		t.Error("expected false when explicitly set")
	}
}

func TestRetrievalQuery_SemanticWeightBounds(t *testing.T) {
	bad := -0.1
	q := &RetrievalQuery{Query: "x", SemanticWeight: &bad}
	if err := q.Validate(); err == nil {
		t.Error("expected error for out-of-range semantic_weight")
	}
}

func TestGovernanceQuery_Validate(t *testing.T) {
	q := &GovernanceQuery{PlannedAction: ""}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty planned_action")
	}
	q = &GovernanceQuery{PlannedAction: "delete data", Context: "ctx", Concerns: "concerns"}
	if err := q.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if q.CombinedText() != "delete data ctx concerns" {
		t.Errorf("unexpected combined text: %q", q.CombinedText())
	}
}

func TestVerificationQuery_Validate(t *testing.T) {
	q := &VerificationQuery{ActionDescription: ""}
	if err := q.Validate(); err == nil {
		t.Error("expected error for empty action_description")
	}
	many := make([]string, 21)
	q = &VerificationQuery{ActionDescription: "x", ExpectedPrinciples: many}
	if err := q.Validate(); err == nil {
		t.Error("expected error for too many expected_principles")
	}
}
