package models

// CanonicalizeRequest is sent to the remote canonicalization service.
type CanonicalizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// CanonicalizeResponse is returned by the remote canonicalization service.
type CanonicalizeResponse struct {
	NormalizedText string   `json:"normalizedText"`
	Tokens         []string `json:"tokens,omitempty"`
}

// CanonicalizeError represents an error response from the canonicalization service
type CanonicalizeError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
