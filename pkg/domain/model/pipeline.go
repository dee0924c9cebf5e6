package model

// Step is a single external-tool invocation within a pipeline. Steps run
// strictly in order; there is no branching and no retry.
type Step struct {
	Name    string            // Human-readable step name
	Command string            // Executable to run
	Args    []string          // Command arguments
	Env     map[string]string // Additional environment variables
	Dir     string            // Working directory relative to the checkout root
	Stdin   string            // Data piped to stdin (e.g. registry token), never logged
}

// Pipeline is an ordered sequence of steps executed on one checkout.
type Pipeline struct {
	Name  string
	Steps []Step
}
