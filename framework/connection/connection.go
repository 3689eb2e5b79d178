package connection

import (
	"context"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/hashicorp/go-multierror"

	"github.com/doitintl/hello/lighthouse/logger"
)

type Connection struct {
	*BigQueryClient
	*CloudStorageClient
	*PubsubClient
}

// NewConnection initializes the google cloud clients the lighthouse service
// depends on, all bound to the given project.
func NewConnection(ctx context.Context, log *logger.Logging, projectID string) (*Connection, error) {
	bq, err := NewBigQuery(ctx, log, projectID)
	if err != nil {
		return nil, err
	}

	gcs, err := NewCloudStorage(ctx, log)
	if err != nil {
		return nil, err
	}

	ps, err := NewPubsubClient(ctx, log, projectID)
	if err != nil {
		return nil, err
	}

	return &Connection{
		bq,
		gcs,
		ps,
	}, nil
}

// Bigquery returns the bigquery connection.
func (c *Connection) Bigquery() *bigquery.Client {
	return c.bq
}

// CloudStorage returns the cloud storage connection.
func (c *Connection) CloudStorage() *storage.Client {
	return c.gcs
}

// Pubsub returns the pubsub connection.
func (c *Connection) Pubsub() *pubsub.Client {
	return c.pubsub
}

// Close closes every client, collecting all the failures.
func (c *Connection) Close() error {
	var result error

	if c.bq != nil {
		if err := c.bq.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.gcs != nil {
		if err := c.gcs.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if c.pubsub != nil {
		if err := c.pubsub.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result
}
