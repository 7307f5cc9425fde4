package models

type HealthCheck struct {
	Status   string            `json:"status"`
	Model    string            `json:"model"`
	Loaded   bool              `json:"loaded"`
	Services map[string]string `json:"services,omitempty"`
}
