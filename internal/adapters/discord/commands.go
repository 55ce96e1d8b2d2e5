package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/okian/quickdraw/pkg/logger"
)

// Gateway is the slice of the app service the command front end needs.
type Gateway interface {
	IssueToken(ctx context.Context, channelID, subjectID, displayName string) (string, error)
	PlayURL(token string) string
	TokenTTL() time.Duration
	Reconcile(ctx context.Context, channelID string) error
}

// IncomingMessage is a transport-neutral view of one chat message.
type IncomingMessage struct {
	Content     string
	ChannelID   string
	AuthorID    string
	DisplayName string
}

// CommandHandler turns chat commands into gateway calls.
type CommandHandler struct {
	svc    Gateway
	prefix string
	log    logger.Logger
}

// CommandOption applies a configuration option to the CommandHandler.
type CommandOption func(*CommandHandler)

// WithPrefix sets the command prefix, e.g. "!quickdraw".
func WithPrefix(prefix string) CommandOption {
	return func(h *CommandHandler) {
		if prefix != "" {
			h.prefix = prefix
		}
	}
}

// WithCommandLogger sets a custom logger.
func WithCommandLogger(log logger.Logger) CommandOption {
	return func(h *CommandHandler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewCommandHandler creates a command handler backed by the gateway.
func NewCommandHandler(svc Gateway, opts ...CommandOption) *CommandHandler {
	h := &CommandHandler{
		svc:    svc,
		prefix: "!quickdraw",
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.log == nil {
		h.log = logger.Named("discord")
	}
	return h
}

// Attach registers the handler on a gateway session.
func (h *CommandHandler) Attach(s *Session) {
	s.AddHandler(h.onMessageCreate)
}

// Respond processes one message. It returns the reply text and whether the
// message addressed this bot at all.
func (h *CommandHandler) Respond(ctx context.Context, msg IncomingMessage) (string, bool) {
	content := strings.TrimSpace(msg.Content)
	if content != h.prefix && !strings.HasPrefix(content, h.prefix+" ") {
		return "", false
	}
	arg := strings.TrimSpace(strings.TrimPrefix(content, h.prefix))

	switch arg {
	case "", "play":
		tok, err := h.svc.IssueToken(ctx, msg.ChannelID, msg.AuthorID, msg.DisplayName)
		if err != nil {
			h.log.Error(ctx, "token issuance failed",
				logger.String("channel", msg.ChannelID),
				logger.String("subject", msg.AuthorID),
				logger.Error(err),
			)
			return "Something went wrong, try again in a moment.", true
		}
		minutes := int(h.svc.TokenTTL().Minutes())
		return fmt.Sprintf(
			"Here is your play link: %s\nIt is single-use and good for about %d minutes.",
			h.svc.PlayURL(tok), minutes,
		), true

	case "board":
		if err := h.svc.Reconcile(ctx, msg.ChannelID); err != nil {
			h.log.Error(ctx, "board refresh failed",
				logger.String("channel", msg.ChannelID),
				logger.Error(err),
			)
			return "Could not refresh the leaderboard right now.", true
		}
		return "Leaderboard refreshed.", true

	default:
		return fmt.Sprintf("Unknown command. Try `%s` or `%s board`.", h.prefix, h.prefix), true
	}
}

// onMessageCreate bridges gateway events into Respond.
func (h *CommandHandler) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	ctx := context.Background()
	reply, handled := h.Respond(ctx, IncomingMessage{
		Content:     m.Content,
		ChannelID:   m.ChannelID,
		AuthorID:    m.Author.ID,
		DisplayName: authorDisplayName(m),
	})
	if !handled || reply == "" {
		return
	}

	// Play links are capabilities; prefer delivering them privately.
	if dm, err := s.UserChannelCreate(m.Author.ID); err == nil {
		if _, err := s.ChannelMessageSend(dm.ID, reply); err == nil {
			return
		}
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		h.log.Warn(ctx, "command reply failed",
			logger.String("channel", m.ChannelID),
			logger.Error(err),
		)
	}
}

func authorDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
