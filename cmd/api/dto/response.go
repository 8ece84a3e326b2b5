package dto

// ErrorResponseDTO is the common error body.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"car not found"`
	// Redirect is set when the client should navigate, e.g. to the admin login.
	Redirect string `json:"redirect,omitempty" example:"/admin/login"`
}

// MessageResponseDTO is a plain acknowledgement.
type MessageResponseDTO struct {
	Message string `json:"message" example:"car deleted"`
}
