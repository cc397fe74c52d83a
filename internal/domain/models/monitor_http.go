package models

// Requests for the monitor HTTP endpoints.

type UnlockRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}
