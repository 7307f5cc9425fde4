package models

type ErrorResponse struct {
	Error string `json:"error"`
}

// InlineResponse is returned by /remove when base64=true.
type InlineResponse struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Image    string  `json:"image"`
	Elapsed  float64 `json:"time"`
	Model    string  `json:"model"`
}

type ServiceInfo struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Model     string            `json:"model"`
	Backend   string            `json:"backend"`
	Endpoints map[string]string `json:"endpoints"`
}
