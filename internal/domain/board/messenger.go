package board

import (
	"context"
	"errors"
)

// ErrNoTransport reports that no chat transport is configured.
var ErrNoTransport = errors.New("no chat transport configured")

// NopMessenger satisfies Messenger when the service runs without a chat
// transport (HTTP API only). ResolveChannel always fails, so Reconcile
// becomes a no-op.
type NopMessenger struct{}

func (NopMessenger) ResolveChannel(ctx context.Context, channelID string) error {
	return ErrNoTransport
}

func (NopMessenger) FetchMessage(ctx context.Context, channelID, messageID string) error {
	return ErrNoTransport
}

func (NopMessenger) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	return "", ErrNoTransport
}

func (NopMessenger) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	return ErrNoTransport
}

func (NopMessenger) PinMessage(ctx context.Context, channelID, messageID string) error {
	return ErrNoTransport
}

var _ Messenger = NopMessenger{}
