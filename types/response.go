package types

type ErrorResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"` // confirmation message
}
