package discord_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/quickdraw/internal/adapters/discord"
	"github.com/okian/quickdraw/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeGateway struct {
	issuedFor    []string
	issueErr     error
	reconciled   []string
	reconcileErr error
}

func (f *fakeGateway) IssueToken(ctx context.Context, channelID, subjectID, displayName string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	f.issuedFor = append(f.issuedFor, channelID+"/"+subjectID+"/"+displayName)
	return "tok123", nil
}

func (f *fakeGateway) PlayURL(token string) string {
	return "https://quickdraw.example.com/play?token=" + token
}

func (f *fakeGateway) TokenTTL() time.Duration {
	return 15 * time.Minute
}

func (f *fakeGateway) Reconcile(ctx context.Context, channelID string) error {
	if f.reconcileErr != nil {
		return f.reconcileErr
	}
	f.reconciled = append(f.reconciled, channelID)
	return nil
}

func TestCommandHandler_Respond(t *testing.T) {
	ctx := context.Background()

	Convey("Given a command handler", t, func() {
		gw := &fakeGateway{}
		h := discord.NewCommandHandler(gw, discord.WithPrefix("!quickdraw"))

		msg := func(content string) discord.IncomingMessage {
			return discord.IncomingMessage{
				Content:     content,
				ChannelID:   "C1",
				AuthorID:    "U1",
				DisplayName: "Ana",
			}
		}

		Convey("When asked for a play link", func() {
			reply, handled := h.Respond(ctx, msg("!quickdraw"))

			Convey("Then a token is issued for the invoking channel and user", func() {
				So(handled, ShouldBeTrue)
				So(gw.issuedFor, ShouldResemble, []string{"C1/U1/Ana"})
				So(reply, ShouldContainSubstring, "play?token=tok123")
				So(reply, ShouldContainSubstring, "about 15 minutes")
				So(reply, ShouldContainSubstring, "single-use")
			})
		})

		Convey("When asked to refresh the board", func() {
			reply, handled := h.Respond(ctx, msg("!quickdraw board"))

			Convey("Then the channel is reconciled", func() {
				So(handled, ShouldBeTrue)
				So(gw.reconciled, ShouldResemble, []string{"C1"})
				So(reply, ShouldContainSubstring, "refreshed")
			})
		})

		Convey("When an unrelated message passes by", func() {
			reply, handled := h.Respond(ctx, msg("good morning everyone"))

			Convey("Then it is ignored", func() {
				So(handled, ShouldBeFalse)
				So(reply, ShouldBeEmpty)
			})
		})

		Convey("When the prefix is only a prefix of another word", func() {
			_, handled := h.Respond(ctx, msg("!quickdrawing is fun"))

			Convey("Then it is ignored", func() {
				So(handled, ShouldBeFalse)
			})
		})

		Convey("When an unknown subcommand arrives", func() {
			reply, handled := h.Respond(ctx, msg("!quickdraw help"))

			Convey("Then usage is suggested", func() {
				So(handled, ShouldBeTrue)
				So(reply, ShouldContainSubstring, "Unknown command")
			})
		})

		Convey("When issuance fails", func() {
			gw.issueErr = errors.New("out of entropy")
			reply, handled := h.Respond(ctx, msg("!quickdraw"))

			Convey("Then the player gets a soft failure, not a token", func() {
				So(handled, ShouldBeTrue)
				So(reply, ShouldNotContainSubstring, "play?token=")
			})
		})

		Convey("When the refresh fails", func() {
			gw.reconcileErr = errors.New("store down")
			reply, handled := h.Respond(ctx, msg("!quickdraw board"))

			Convey("Then the player is told it did not happen", func() {
				So(handled, ShouldBeTrue)
				So(reply, ShouldContainSubstring, "Could not refresh")
			})
		})
	})
}
