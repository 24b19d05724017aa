package models

// AnalyseResponse is the success body of POST /analyse.
type AnalyseResponse struct {
	Prediction string `json:"prediction"`
	LocationFields
}

// ErrorResponse is the failure body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}
