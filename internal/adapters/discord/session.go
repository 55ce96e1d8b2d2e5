// Package discord adapts a Discord gateway session to the board.Messenger
// contract and hosts the chat command front end.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/quickdraw/internal/domain/board"
)

// defaultCallTimeout bounds every REST call so a wedged transport reads as
// "missing, recreate" to the board syncer.
const defaultCallTimeout = 10 * time.Second

// Session wraps a discordgo session as a board.Messenger.
type Session struct {
	s       *discordgo.Session
	timeout time.Duration
}

// Option applies a configuration option to the Session.
type Option func(*Session)

// WithCallTimeout bounds individual REST calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// Dial connects to the Discord gateway with the given bot token.
func Dial(botToken string, opts ...Option) (*Session, error) {
	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	s := &Session{s: dg, timeout: defaultCallTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("open discord gateway: %w", err)
	}
	return s, nil
}

// Close shuts down the gateway connection.
func (s *Session) Close() error {
	return s.s.Close()
}

// AddHandler registers a gateway event handler on the underlying session.
func (s *Session) AddHandler(handler interface{}) {
	s.s.AddHandler(handler)
}

func (s *Session) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// ResolveChannel confirms the channel is visible to the bot.
func (s *Session) ResolveChannel(ctx context.Context, channelID string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if _, err := s.s.Channel(channelID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("resolve channel %s: %w", channelID, err)
	}
	return nil
}

// FetchMessage confirms a message still exists.
func (s *Session) FetchMessage(ctx context.Context, channelID, messageID string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if _, err := s.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetch message %s: %w", messageID, err)
	}
	return nil
}

// SendMessage posts a new message and returns its id.
func (s *Session) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	msg, err := s.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

// EditMessage replaces the content of an existing message.
func (s *Session) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if _, err := s.s.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit message %s: %w", messageID, err)
	}
	return nil
}

// PinMessage pins a message in its channel.
func (s *Session) PinMessage(ctx context.Context, channelID, messageID string) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.s.ChannelMessagePin(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("pin message %s: %w", messageID, err)
	}
	return nil
}

var _ board.Messenger = (*Session)(nil)
