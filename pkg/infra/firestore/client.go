// Package firestore persists run history in Cloud Firestore.
package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/itam-hack/checkpoint/pkg/domain/model"
)

const runCollection = "runs"

// Client is a Firestore-backed run repository
type Client struct {
	client *firestore.Client
}

// New creates a Firestore run repository. credentialsFile may be empty,
// in which case application default credentials are used.
func New(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("project_id", projectID))
	}

	return &Client{client: client}, nil
}

// Close releases the underlying client
func (c *Client) Close() error {
	return c.client.Close()
}

// Put stores or overwrites a run record
func (c *Client) Put(ctx context.Context, record *model.RunRecord) error {
	if _, err := c.client.Collection(runCollection).Doc(record.ID).Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to put run record", goerr.V("run_id", record.ID))
	}
	return nil
}

// Get retrieves a run record by ID. Returns nil without error when the
// record does not exist.
func (c *Client) Get(ctx context.Context, id string) (*model.RunRecord, error) {
	doc, err := c.client.Collection(runCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get run record", goerr.V("run_id", id))
	}

	var record model.RunRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("run_id", id))
	}

	return &record, nil
}

// List returns the most recent run records, newest first
func (c *Client) List(ctx context.Context, limit int) ([]*model.RunRecord, error) {
	iter := c.client.Collection(runCollection).
		OrderBy("started_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var records []*model.RunRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate run records")
		}

		var record model.RunRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("doc_id", doc.Ref.ID))
		}
		records = append(records, &record)
	}

	return records, nil
}
