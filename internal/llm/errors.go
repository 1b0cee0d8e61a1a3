package llm

import "fmt"

// APIError surfaces a non-success response from a hosted-model endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s API error (%d, %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
}
