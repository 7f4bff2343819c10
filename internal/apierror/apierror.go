// Package apierror provides the error envelope returned by every 4xx/5xx
// response. Handlers never put driver errors or stack traces in it.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps per-field validation failures.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// StockError reports how many units are left when a quantity cannot be served.
type StockError struct {
	Detail    string `json:"detail"`
	Available int    `json:"available"`
}

func NewStock(msg string, available int) *StockError {
	return &StockError{Detail: msg, Available: available}
}
