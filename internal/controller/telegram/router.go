package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"audio_bot/entity"
	"audio_bot/pkg/logger"
)

// Handler receives the three kinds of event the bot reacts to.
type Handler interface {
	OnStart(ctx context.Context, ev entity.IncomingAudioEvent) error
	OnHelp(ctx context.Context, ev entity.IncomingAudioEvent) error
	OnAudio(ctx context.Context, ev entity.IncomingAudioEvent) error
}

// Router maps Telegram updates to Handler calls. Anything else is ignored.
type Router struct {
	h Handler
	l logger.Interface
}

func NewRouter(h Handler, l logger.Interface) *Router {
	return &Router{h: h, l: l}
}

// Route dispatches one update synchronously.
func (r *Router) Route(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	ev := newEvent(msg)

	var err error
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			err = r.h.OnStart(ctx, ev)
		case "help":
			err = r.h.OnHelp(ctx, ev)
		default:
			return
		}
	case msg.Audio != nil || msg.Voice != nil:
		err = r.h.OnAudio(ctx, ev)
	default:
		return
	}

	if err != nil {
		r.l.Error("telegram - Route - update %d: %v", update.UpdateID, err)
	}
}

func newEvent(msg *tgbotapi.Message) entity.IncomingAudioEvent {
	ev := entity.IncomingAudioEvent{
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Caption:   msg.Caption,
	}
	if msg.Audio != nil {
		ev.Audio = &entity.FileRef{
			FileID:   msg.Audio.FileID,
			FileName: msg.Audio.FileName,
			MimeType: msg.Audio.MimeType,
			Size:     int64(msg.Audio.FileSize),
		}
	}
	if msg.Voice != nil {
		ev.Voice = &entity.FileRef{
			FileID:   msg.Voice.FileID,
			MimeType: msg.Voice.MimeType,
			Size:     int64(msg.Voice.FileSize),
		}
	}
	return ev
}
