package model

// HealthStatus is returned by the health endpoint
type HealthStatus struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Version    string `json:"version"`
	Repository string `json:"repository,omitempty"`
	Packaging  bool   `json:"packaging"`
}
