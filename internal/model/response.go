package model

// ErrorBody is the envelope returned for failed requests.
type ErrorBody struct {
	Error string `json:"error"`
}

// Error wraps a message in the standard error envelope.
func Error(msg string) ErrorBody {
	return ErrorBody{Error: msg}
}
