package dto

import "fmt"

// Response is the envelope of every successful response
type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// NewResponse builds a Response
func NewResponse(message string, data interface{}) Response {
	return Response{Message: message, Data: data}
}

// WithWarning appends a non-fatal warning to a success message
func WithWarning(message, warning string) string {
	if warning == "" {
		return message
	}
	return fmt.Sprintf("%s: Warning(%s)", message, warning)
}
