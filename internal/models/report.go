package models

import (
	"time"
)

type Step string

const (
	StepIdle       Step = "idle"
	StepPatternSet Step = "pattern_set"
	StepSearching  Step = "searching"
	StepScored     Step = "scored"
	StepFailed     Step = "failed"
)

// Verdict is a coarse reading of a uniqueness score.
type Verdict string

const (
	VerdictClean            Verdict = "clean"
	VerdictSuspicious       Verdict = "suspicious"
	VerdictHighlySuspicious Verdict = "highly suspicious"
	VerdictNearCopy         Verdict = "near copy"
)

// HitRecord ties one candidate shingle to one corpus document it occurs in.
type HitRecord struct {
	ShingleIndex int    `bson:"shingleIndex" json:"shingleIndex"`
	Shingle      string `bson:"shingle" json:"shingle"`
	DocumentID   string `bson:"documentId" json:"documentId"`
	Occurrences  []int  `bson:"occurrences" json:"occurrences"`
}

// Report is the outcome of checking one candidate text against the corpus.
type Report struct {
	ID             string      `bson:"_id" json:"id"`
	Algorithm      string      `bson:"algorithm" json:"algorithm"`
	ShingleSize    int         `bson:"shingleSize" json:"shingleSize"`
	NormalizedText string      `bson:"normalizedText" json:"normalizedText"`
	Uniqueness     float64     `bson:"uniqueness" json:"uniqueness"`
	Verdict        Verdict     `bson:"verdict,omitempty" json:"verdict,omitempty"`
	TotalShingles  int         `bson:"totalShingles" json:"totalShingles"`
	HitShingles    int         `bson:"hitShingles" json:"hitShingles"`
	Documents      int         `bson:"documents" json:"documents"`
	Hits           []HitRecord `bson:"hits" json:"hits"`
	Status         Step        `bson:"status" json:"status"`
	Error          string      `bson:"error,omitempty" json:"error,omitempty"`
	Cached         bool        `bson:"-" json:"cached"`
	CreatedAt      time.Time   `bson:"createdAt" json:"createdAt"`
}

// CheckRequest is the body of POST /api/v1/check and POST /api/v1/checks.
type CheckRequest struct {
	Text      string `json:"text" binding:"required"`
	Algorithm string `json:"algorithm"`
}

// CheckAccepted is returned when a check was queued.
type CheckAccepted struct {
	ReportID string `json:"reportId"`
	Step     Step   `json:"step"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
