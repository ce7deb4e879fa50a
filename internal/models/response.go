package models

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Detail any `json:"detail"`
	Code   int `json:"code"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func NewHealthResponse(version string) HealthResponse {
	if version == "" {
		version = "0.0.0"
	}
	return HealthResponse{Status: "ok", Version: version}
}
