package model

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/itam-hack/checkpoint/pkg/domain/types"
)

// ImageRef identifies the container image checkpoint publishes. The tag
// is always the concatenation of the registry host, the registry
// username, the service name and the "latest" suffix.
type ImageRef struct {
	Registry string // Registry host, e.g. docker.io
	Username string // Registry account (from secrets)
	Service  string // Service/image name (from secrets)
}

// Tag returns the full image reference used for build and push.
func (i ImageRef) Tag() string {
	registry := i.Registry
	if registry == "" {
		registry = types.DefaultRegistryHost
	}
	return fmt.Sprintf("%s/%s/%s:%s", registry, i.Username, i.Service, types.DefaultImageTag)
}

// Validate checks the parts that come from external secrets.
func (i ImageRef) Validate() error {
	if i.Username == "" {
		return goerr.New("registry username is empty")
	}
	if i.Service == "" {
		return goerr.New("service name is empty")
	}
	return nil
}
