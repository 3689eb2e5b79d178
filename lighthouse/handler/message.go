package handler

import (
	"errors"
	"io"

	"cloud.google.com/go/pubsub"
	"github.com/goccy/go-json"
)

var ErrEmptyEnvelope = errors.New("push request carries no message")

// ReceivedMessage is the body of a pubsub push request.
type ReceivedMessage struct {
	Message      pubsub.Message `json:"message"`
	Subscription string         `json:"subscription"`
}

func extractDataFromMessage(requestReader io.Reader) ([]byte, error) {
	body, err := io.ReadAll(requestReader)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, ErrEmptyEnvelope
	}

	var message ReceivedMessage

	if err := json.Unmarshal(body, &message); err != nil {
		return nil, err
	}

	return message.Message.Data, nil
}
