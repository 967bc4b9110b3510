package utils

import "time"

// APIResponse is the acknowledgement envelope for staff operations that
// return no domain document, such as opening or closing sales. Errors are
// not wrapped in it; they use the flat {"error": ...} body from WriteError.
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}
