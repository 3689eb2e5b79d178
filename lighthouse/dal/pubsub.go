package dal

import (
	"context"
	"sync"

	"cloud.google.com/go/pubsub"
)

// PubsubTopics publishes raw payloads, keeping one topic handle per topic id
// so that publish bundling is shared between invocations.
type PubsubTopics struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewPubsubTopics(client *pubsub.Client) *PubsubTopics {
	return &PubsubTopics{
		client: client,
		topics: make(map[string]*pubsub.Topic),
	}
}

func (p *PubsubTopics) topic(topicID string) *pubsub.Topic {
	p.mu.Lock()
	defer p.mu.Unlock()

	t, ok := p.topics[topicID]
	if !ok {
		t = p.client.Topic(topicID)
		p.topics[topicID] = t
	}

	return t
}

func (p *PubsubTopics) Publish(ctx context.Context, topicID string, data []byte) PublishResult {
	return p.topic(topicID).Publish(ctx, &pubsub.Message{
		Data: data,
	})
}

// Stop flushes pending messages of every topic handle.
func (p *PubsubTopics) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, t := range p.topics {
		t.Stop()
		delete(p.topics, id)
	}
}
