package dto

// ===== Error Response =====
type ErrorResponse struct {
	Message string `json:"message" example:"unauthorized"`
}

// FieldErrors maps a field or problem key to a human readable message, e.g.
// {"text": "Text field is required"} or {"postnotfound": "No post found"}.
type FieldErrors map[string]string
