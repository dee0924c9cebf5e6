package config

import (
	"github.com/urfave/cli/v3"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
	"github.com/itam-hack/checkpoint/pkg/domain/types"
)

// Registry holds container registry configuration. Username, token and
// service name are the external secrets the publish pipeline depends on.
type Registry struct {
	Host     string
	Username string
	Token    string `masq:"secret"`
	Service  string
}

// Flags returns CLI flags for registry configuration
func (c *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-host",
			Usage:       "Container registry host",
			Value:       types.DefaultRegistryHost,
			Destination: &c.Host,
			Sources:     cli.EnvVars("CHECKPOINT_REGISTRY_HOST"),
		},
		&cli.StringFlag{
			Name:        "registry-username",
			Usage:       "Registry username",
			Destination: &c.Username,
			Sources:     cli.EnvVars("CHECKPOINT_REGISTRY_USERNAME"),
		},
		&cli.StringFlag{
			Name:        "registry-token",
			Usage:       "Registry publish token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("CHECKPOINT_REGISTRY_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "service-name",
			Usage:       "Service/image name to publish",
			Destination: &c.Service,
			Sources:     cli.EnvVars("CHECKPOINT_SERVICE_NAME"),
		},
	}
}

// ImageRef builds the image reference for publish runs
func (c *Registry) ImageRef() model.ImageRef {
	return model.ImageRef{
		Registry: c.Host,
		Username: c.Username,
		Service:  c.Service,
	}
}
