package response_models

import "github.com/google/uuid"

type AccountResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

type AccountLoginResponse struct {
	Message string          `json:"message"`
	User    AccountResponse `json:"user"`
}
