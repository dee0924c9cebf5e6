package config

import (
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub App configuration
type GitHub struct {
	AppID          string
	InstallationID string
	PrivateKeyPath string
	WebhookSecret  string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Required:    true,
			Destination: &c.AppID,
			Sources:     cli.EnvVars("CHECKPOINT_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Required:    true,
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("CHECKPOINT_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the GitHub App private key (PEM)",
			Required:    true,
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("CHECKPOINT_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("CHECKPOINT_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// Credentials parses the App IDs and loads the private key
func (c *GitHub) Credentials() (appID, installationID int64, privateKey []byte, err error) {
	appID, err = strconv.ParseInt(c.AppID, 10, 64)
	if err != nil {
		return 0, 0, nil, goerr.Wrap(err, "invalid GitHub App ID", goerr.V("app_id", c.AppID))
	}

	installationID, err = strconv.ParseInt(c.InstallationID, 10, 64)
	if err != nil {
		return 0, 0, nil, goerr.Wrap(err, "invalid GitHub installation ID", goerr.V("installation_id", c.InstallationID))
	}

	privateKey, err = os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return 0, 0, nil, goerr.Wrap(err, "failed to read private key", goerr.V("path", c.PrivateKeyPath))
	}

	return appID, installationID, privateKey, nil
}
