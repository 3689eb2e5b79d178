package handler

import (
	"context"

	"cloud.google.com/go/pubsub"

	"github.com/doitintl/hello/lighthouse/lighthouse/service/iface"
	"github.com/doitintl/hello/lighthouse/logger"
)

// Subscriber pulls lighthouse messages from a subscription, for deployments
// that are not reachable by a push subscription.
type Subscriber struct {
	subscription *pubsub.Subscription
	service      iface.Dispatcher
}

func NewSubscriber(subscription *pubsub.Subscription, service iface.Dispatcher) *Subscriber {
	return &Subscriber{
		subscription,
		service,
	}
}

// Receive blocks until ctx is done or the subscription fails.
func (s *Subscriber) Receive(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if s.handle(ctx, m.ID, m.Data) {
			m.Ack()
			return
		}

		m.Nack()
	})
}

// handle reports whether the message must be acknowledged. Invalid messages
// are acknowledged as well, they would only be logged again on redelivery.
func (s *Subscriber) handle(ctx context.Context, messageID string, data []byte) bool {
	ctx, l := logger.ContextWithLogger(ctx)
	defer l.End(nil)

	l.SetLabel("pubsub_message_id", messageID)

	outcome, err := s.service.Handle(ctx, data)
	l.SetLabel("lighthouse_outcome", outcome.String())

	if err != nil {
		l.Errorf("message %s failed: %s", messageID, err)
		return false
	}

	return true
}
