package models

import (
	"time"
)

// Document is one corpus entry stored in MongoDB. RawText is kept for display,
// NormalizedText is what the matchers search.
type Document struct {
	ID             string    `bson:"_id" json:"id"`
	Title          string    `bson:"title" json:"title"`
	RawText        string    `bson:"rawText" json:"rawText"`
	NormalizedText string    `bson:"normalizedText" json:"normalizedText"`
	Source         string    `bson:"source" json:"source"` // api, upload, stream, seed
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// Document sources.
const (
	SourceAPI    = "api"
	SourceUpload = "upload"
	SourceStream = "stream"
	SourceSeed   = "seed"
)

// DocumentSubmission is a corpus document arriving from the Redis stream or
// the HTTP API before canonicalization.
type DocumentSubmission struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// AddDocumentRequest is the body of POST /api/v1/documents.
type AddDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

// DocumentSummary is a corpus listing entry.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}
