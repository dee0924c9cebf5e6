package model

// HealthStatus is the payload served by the /health endpoint. Version
// tracks types.Version so deploys are identifiable from probes.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
