package model

// FailureAnalysis is the LLM's reading of a failed gate run
type FailureAnalysis struct {
	Summary     string   `json:"summary"`
	LikelyCause string   `json:"likely_cause"`
	Suggestions []string `json:"suggestions"`
}
