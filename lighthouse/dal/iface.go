package dal

import (
	"context"
)

// PublishResult is satisfied by *pubsub.PublishResult.
//
//go:generate mockery --name PublishResult --output ./mocks
type PublishResult interface {
	Get(ctx context.Context) (serverID string, err error)
}

//go:generate mockery --name TopicPublisher --output ./mocks
type TopicPublisher interface {
	Publish(ctx context.Context, topicID string, data []byte) PublishResult
}

//go:generate mockery --name ReportStorage --output ./mocks
type ReportStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) error
}

//go:generate mockery --name ReportLoader --output ./mocks
type ReportLoader interface {
	Load(ctx context.Context, datasetID, tableID, localPath string) error
}
