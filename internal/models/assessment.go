package models

// AssessmentVerdict is the typed result of evaluate_governance.
type AssessmentVerdict string

const (
	VerdictProceed               AssessmentVerdict = "PROCEED"
	VerdictProceedWithModifications AssessmentVerdict = "PROCEED_WITH_MODIFICATIONS"
	VerdictEscalate               AssessmentVerdict = "ESCALATE"
)

// ComplianceStatus is the per-principle labelling emitted alongside an
// Assessment.
type ComplianceStatus string

const (
	ComplianceComplies          ComplianceStatus = "COMPLIES"
	ComplianceNeedsModification ComplianceStatus = "NEEDS_MODIFICATION"
	ComplianceViolation         ComplianceStatus = "VIOLATION"
)

// ComplianceEvaluation is the heuristic labelling of a single retrieved
// principle against a planned action.
type ComplianceEvaluation struct {
	PrincipleID string           `json:"principle_id"`
	Status      ComplianceStatus `json:"status"`
	Finding     string           `json:"finding"`
}

// Assessment is the typed result of evaluate_governance.
type Assessment struct {
	AuditID              string                 `json:"audit_id"`
	Verdict              AssessmentVerdict      `json:"assessment"`
	Evaluations          []ComplianceEvaluation `json:"evaluations"`
	RequiredModifications []string              `json:"required_modifications,omitempty"`
	RelevantPrincipleIDs []string               `json:"relevant_principle_ids"`
	RequiresAIJudgment   bool                   `json:"requires_ai_judgment"`
	SafetyCheck          SafetyCheck            `json:"s_series_check"`
}

// VerificationStatus is the result of verify_governance_compliance.
type VerificationStatus string

const (
	VerificationCompliant    VerificationStatus = "COMPLIANT"
	VerificationPartial      VerificationStatus = "PARTIAL"
	VerificationNonCompliant VerificationStatus = "NON_COMPLIANT"
)

// VerificationResult is the response for verify_governance_compliance.
type VerificationResult struct {
	Status           VerificationStatus `json:"status"`
	MatchingAuditID  string             `json:"matching_audit_id,omitempty"`
	Finding          string             `json:"finding"`
	Timestamp        int64              `json:"timestamp"`
}
