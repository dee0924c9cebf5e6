// Package gcs archives full step output to a Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

// Archive writes step logs as objects under runs/<run-id>/<step>.log
type Archive struct {
	client *storage.Client
	bucket string
}

// New creates a log archive for the given bucket
func New(ctx context.Context, bucket, credentialsFile string) (*Archive, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &Archive{client: client, bucket: bucket}, nil
}

// Close releases the underlying client
func (a *Archive) Close() error {
	return a.client.Close()
}

// Save uploads one step's output
func (a *Archive) Save(ctx context.Context, runID, stepName string, output []byte) error {
	key := fmt.Sprintf("runs/%s/%s.log", runID, stepName)

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := w.Write(output); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write log object", goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize log object", goerr.V("key", key))
	}
	return nil
}
