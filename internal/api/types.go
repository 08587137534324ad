package api

// MakeCallRequest is the payload for initiating an outbound call.
type MakeCallRequest struct {
	Number string `json:"number"`
}

// MakeCallResponse carries the provider-assigned identifier of the created
// call.
type MakeCallResponse struct {
	CallSID string `json:"call_sid"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
