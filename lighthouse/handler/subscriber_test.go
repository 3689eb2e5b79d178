package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/doitintl/hello/lighthouse/lighthouse/domain"
	"github.com/doitintl/hello/lighthouse/lighthouse/service/iface/mocks"
)

func TestSubscriber_handle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		outcome domain.Outcome
		err     error
		wantAck bool
	}{
		{name: "dispatched message is acked", outcome: domain.OutcomeOK, wantAck: true},
		{name: "invalid message is acked", outcome: domain.OutcomeLoggedError, wantAck: true},
		{name: "failed message is nacked", outcome: domain.OutcomeOK, err: errors.New("load failed"), wantAck: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.Dispatcher{}
			service.On("Handle", mock.Anything, []byte("googlesearch")).Return(tt.outcome, tt.err).Once()

			s := NewSubscriber(nil, service)

			assert.Equal(t, tt.wantAck, s.handle(ctx, "1", []byte("googlesearch")))
			service.AssertExpectations(t)
		})
	}
}

func TestSubscriber_Receive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	srv := pstest.NewServer()
	defer srv.Close()

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	defer conn.Close()

	client, err := pubsub.NewClient(ctx, "lighthouse-test", option.WithGRPCConn(conn))
	require.NoError(t, err)

	defer client.Close()

	topic, err := client.CreateTopic(ctx, "launch-lighthouse")
	require.NoError(t, err)

	defer topic.Stop()

	sub, err := client.CreateSubscription(ctx, "lighthouse-pull", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	id, err := topic.Publish(ctx, &pubsub.Message{Data: []byte("all")}).Get(ctx)
	require.NoError(t, err)

	receiveCtx, stop := context.WithCancel(ctx)
	defer stop()

	service := &mocks.Dispatcher{}
	service.On("Handle", mock.Anything, []byte("all")).
		Run(func(args mock.Arguments) { stop() }).
		Return(domain.OutcomeOK, nil).Once()

	err = NewSubscriber(sub, service).Receive(receiveCtx)
	require.NoError(t, err)

	service.AssertExpectations(t)
	assert.Eventually(t, func() bool {
		return srv.Message(id).Acks == 1
	}, 5*time.Second, 50*time.Millisecond)
}
