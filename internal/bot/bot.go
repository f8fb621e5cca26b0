// Package bot is the text-command surface of the relay. It recognises the
// reserved commands, hands free text to the orchestrator and turns outcomes
// into chat messages, editing a single progress message in place while a
// subtitle is generated.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/EpisodeRelay/internal/models"
	"github.com/Belphemur/EpisodeRelay/internal/orchestrator"
)

// Messenger delivers messages to a chat.
type Messenger interface {
	Send(ctx context.Context, chatID, text string) (messageID string, err error)
	Edit(ctx context.Context, chatID, messageID, text string) error
}

// Handler resolves a free-text request.
type Handler interface {
	Handle(ctx context.Context, text string, observer orchestrator.Observer) *models.Outcome
}

// Digest exposes the cached latest releases.
type Digest interface {
	Latest() (models.LatestDigest, bool)
}

// Bot dispatches incoming chat messages
type Bot struct {
	messenger Messenger
	handler   Handler
	digest    Digest
	logger    zerolog.Logger
}

func New(messenger Messenger, handler Handler, digest Digest, logger zerolog.Logger) *Bot {
	return &Bot{messenger: messenger, handler: handler, digest: digest, logger: logger}
}

// HandleMessage answers one incoming message. Errors are delivery failures; they
// are also reported to Sentry.
func (b *Bot) HandleMessage(ctx context.Context, chatID, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			sentry.CurrentHub().Recover(r)
			b.logger.Error().Interface("panic", r).Str("chat_id", chatID).Msg("Recovered from panic while handling message")
			err = fmt.Errorf("handle message: panic: %v", r)
		}
		if err != nil {
			sentry.CaptureException(err)
		}
	}()

	switch command(text) {
	case "help", "start":
		_, err = b.messenger.Send(ctx, chatID, usageText)
		return err
	case "latest":
		digest, ok := b.digest.Latest()
		_, err = b.messenger.Send(ctx, chatID, digestText(digest, ok))
		return err
	}

	return b.handleRequest(ctx, chatID, text)
}

// command returns the reserved command named by text, or "" for free text.
func command(text string) string {
	word := strings.ToLower(strings.TrimSpace(text))
	word = strings.TrimPrefix(word, "/")
	// Telegram-style "/start@botname"
	if at := strings.IndexByte(word, '@'); at > 0 {
		word = word[:at]
	}
	switch word {
	case "help", "start", "latest":
		return word
	}
	return ""
}

func (b *Bot) handleRequest(ctx context.Context, chatID, text string) error {
	statusID, err := b.messenger.Send(ctx, chatID, workingText)
	if err != nil {
		return fmt.Errorf("send status: %w", err)
	}

	observer := &chatObserver{bot: b, ctx: ctx, chatID: chatID, statusID: statusID}
	outcome := b.handler.Handle(ctx, text, observer)

	if !observer.resultSent {
		if err := observer.sendResult(outcome); err != nil {
			return err
		}
	}

	if outcome.Subtitle == nil && !outcome.SubtitleFailed {
		return nil
	}
	return observer.finishProgress(subtitleResultText(outcome))
}

// chatObserver mirrors orchestration events into the chat. The orchestrator
// calls it sequentially, so it needs no locking.
type chatObserver struct {
	bot      *Bot
	ctx      context.Context
	chatID   string
	statusID string

	resultSent   bool
	progressID   string
	progressText string
}

func (o *chatObserver) StreamReady(outcome *models.Outcome) {
	if err := o.sendResult(outcome); err != nil {
		o.bot.logger.Warn().Err(err).Str("chat_id", o.chatID).Msg("Failed to send stream result")
	}
}

func (o *chatObserver) SubtitleProgress(lang string, percent int) {
	if err := o.updateProgress(progressText(lang, percent)); err != nil {
		o.bot.logger.Warn().Err(err).Str("chat_id", o.chatID).Int("percent", percent).Msg("Failed to update progress")
	}
}

// sendResult replaces the working message with the status sentence and, for an
// understood request, sends the structured result.
func (o *chatObserver) sendResult(outcome *models.Outcome) error {
	o.resultSent = true
	if err := o.bot.messenger.Edit(o.ctx, o.chatID, o.statusID, statusText(outcome)); err != nil {
		return fmt.Errorf("edit status: %w", err)
	}
	if outcome.Status != models.OutcomeUnderstood {
		return nil
	}
	if _, err := o.bot.messenger.Send(o.ctx, o.chatID, resultText(outcome)); err != nil {
		return fmt.Errorf("send result: %w", err)
	}
	return nil
}

// updateProgress sends the progress message on first use and edits it afterwards.
// Unchanged text is not re-sent.
func (o *chatObserver) updateProgress(text string) error {
	if text == o.progressText {
		return nil
	}
	o.progressText = text

	if o.progressID == "" {
		id, err := o.bot.messenger.Send(o.ctx, o.chatID, text)
		if err != nil {
			return err
		}
		o.progressID = id
		return nil
	}
	return o.bot.messenger.Edit(o.ctx, o.chatID, o.progressID, text)
}

func (o *chatObserver) finishProgress(text string) error {
	if err := o.updateProgress(text); err != nil {
		return fmt.Errorf("finish progress: %w", err)
	}
	return nil
}
