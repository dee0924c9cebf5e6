package types

// DefaultRegistryHost is the registry used for login and image tag
// construction unless overridden by configuration.
const DefaultRegistryHost = "docker.io"

// DefaultImageTag is the only tag checkpoint publishes.
const DefaultImageTag = "latest"

// CommitStatusContext identifies checkpoint in the commit status list of
// a pull request head.
const CommitStatusContext = "checkpoint/gate"

// DefaultPublishBranch receives publish runs on direct pushes.
const DefaultPublishBranch = "main"

// DefaultTimezone is exported as TZ to every pipeline step.
const DefaultTimezone = "Europe/Moscow"
