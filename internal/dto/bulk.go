package dto

// RejectRequest carries the mandatory reason for a single-document reject.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// BulkReviewRequest applies one admin decision across many educations.
type BulkReviewRequest struct {
	EducationIDs []string `json:"educationIds" validate:"required,min=1,dive,required"`
	Action       string   `json:"action" validate:"required,review_action"`
	Reason       string   `json:"reason"`
}

// BulkFailure describes one document a bulk pass could not process.
type BulkFailure struct {
	EducationID  string `json:"educationId"`
	DocumentType string `json:"documentType,omitempty"`
	Code         string `json:"code"`
	Message      string `json:"message"`
}

// BulkEducationResult reports the best-effort outcome for one education's
// submission group. Success means every eligible document went through;
// ineligible documents are skipped, not failed.
type BulkEducationResult struct {
	EducationID string        `json:"educationId"`
	Success     bool          `json:"success"`
	Reviewed    int           `json:"reviewed"`
	Skipped     int           `json:"skipped"`
	Errors      []BulkFailure `json:"errors,omitempty"`
}

// BulkReviewResult aggregates per-education outcomes for a bulk call.
type BulkReviewResult struct {
	Processed int                   `json:"processed"`
	Succeeded int                   `json:"succeeded"`
	Results   []BulkEducationResult `json:"results"`
}
