package config

import "github.com/urfave/cli/v3"

// Google holds shared Google Cloud client configuration
type Google struct {
	CredentialsFile string
}

// Flags returns CLI flags for Google Cloud configuration
func (c *Google) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "google-credentials",
			Usage:       "Path to a Google Cloud service account key (application default credentials when empty)",
			Destination: &c.CredentialsFile,
			Sources:     cli.EnvVars("CHECKPOINT_GOOGLE_CREDENTIALS"),
		},
	}
}

// Firestore holds run history storage configuration. History stays
// in-memory when no project is configured.
type Firestore struct {
	ProjectID string
}

// Flags returns CLI flags for Firestore configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project for run history (in-memory when empty)",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("CHECKPOINT_FIRESTORE_PROJECT_ID"),
		},
	}
}

// Storage holds log archive configuration
type Storage struct {
	Bucket string
}

// Flags returns CLI flags for Cloud Storage configuration
func (c *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Usage:       "Cloud Storage bucket for step logs (archiving disabled when empty)",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("CHECKPOINT_STORAGE_BUCKET"),
		},
	}
}
