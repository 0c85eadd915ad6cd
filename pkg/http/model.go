package http

// APIResponse is the envelope of every JSON response. Success mirrors
// Status < 400 so clients can branch without knowing the code table.
type APIResponse struct {
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field. Field carries the
// json (or query) name, never the Go struct field.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// messageBody is the data of responses that only confirm an action.
type messageBody struct {
	Message string `json:"message"`
}
