package dto

type LoginRequestDTO struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"secret"`
}

type UserDTO struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

type LoginResponseDTO struct {
	Success       bool     `json:"success"`
	AlreadyActive bool     `json:"already_active"`
	Message       string   `json:"message" example:"Login successful"`
	User          *UserDTO `json:"user,omitempty"`
}

// SessionDTO reports the visitor's admin session.
type SessionDTO struct {
	State         string   `json:"state" example:"authenticated"`
	Authenticated bool     `json:"authenticated"`
	User          *UserDTO `json:"user,omitempty"`
}
