package http_common

type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse carries a user-facing notice such as a registration result.
type MessageResponse struct {
	Message string `json:"message"`
}
