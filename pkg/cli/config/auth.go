package config

import "github.com/urfave/cli/v3"

// Auth holds API authentication configuration. The run history API is
// open when no JWKS URL is configured.
type Auth struct {
	JWKSURL string
	Issuer  string
}

// Flags returns CLI flags for API auth configuration
func (c *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "auth-jwks-url",
			Usage:       "JWKS endpoint for API token verification (auth disabled when empty)",
			Destination: &c.JWKSURL,
			Sources:     cli.EnvVars("CHECKPOINT_AUTH_JWKS_URL"),
		},
		&cli.StringFlag{
			Name:        "auth-issuer",
			Usage:       "Required JWT issuer",
			Destination: &c.Issuer,
			Sources:     cli.EnvVars("CHECKPOINT_AUTH_ISSUER"),
		},
	}
}
