package server

// ConvolveRequest is the JSON body of POST /v1/convolve.
type ConvolveRequest struct {
	// Filter holds the one-sided filter taps. Required.
	Filter []float64 `json:"filter"`
	// Signal holds the samples to convolve. Required.
	Signal []float64 `json:"signal"`
	// Strategy is "auto" (default), "effective" or "direct".
	Strategy string `json:"strategy,omitempty"`
	// Parallel forces parallelism on or off. Omitted means auto.
	Parallel *bool `json:"parallel,omitempty"`
	// NonNegative selects the weighted variant, which rejects negative
	// inputs and clamps round-off artifacts in the output.
	NonNegative bool `json:"nonnegative,omitempty"`
}

// ConvolveResponse is the JSON body returned for a successful convolution.
type ConvolveResponse struct {
	// Result has the same length as the request signal.
	Result []float64 `json:"result"`
	// FilterLen and SignalLen echo the input sizes.
	FilterLen int `json:"filter_len"`
	SignalLen int `json:"signal_len"`
	// Strategy is the requested strategy.
	Strategy string `json:"strategy"`
	// Duration is the formatted execution time string.
	Duration string `json:"duration"`
}

// ErrorResponse represents the standardized JSON response for an API error.
type ErrorResponse struct {
	// Error is the short error code or status text.
	Error string `json:"error"`
	// Message is a descriptive error message.
	Message string `json:"message,omitempty"`
}

// requestError is a request decoding or validation failure with the HTTP
// status it maps to.
type requestError struct {
	Message    string
	StatusCode int
}

func (e requestError) Error() string {
	return e.Message
}
