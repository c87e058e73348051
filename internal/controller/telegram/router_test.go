package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"audio_bot/entity"
	"audio_bot/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

func (l nopLogger) With(string, string) logger.Interface { return l }

type recordingHandler struct {
	calls  []string
	events []entity.IncomingAudioEvent
	err    error
}

func (h *recordingHandler) OnStart(_ context.Context, ev entity.IncomingAudioEvent) error {
	h.calls = append(h.calls, "start")
	h.events = append(h.events, ev)
	return h.err
}

func (h *recordingHandler) OnHelp(_ context.Context, ev entity.IncomingAudioEvent) error {
	h.calls = append(h.calls, "help")
	h.events = append(h.events, ev)
	return h.err
}

func (h *recordingHandler) OnAudio(_ context.Context, ev entity.IncomingAudioEvent) error {
	h.calls = append(h.calls, "audio")
	h.events = append(h.events, ev)
	return h.err
}

func command(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 3,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		want   []string
	}{
		{
			name:   "start command",
			update: tgbotapi.Update{Message: command("/start")},
			want:   []string{"start"},
		},
		{
			name:   "help command addressed to the bot",
			update: tgbotapi.Update{Message: command("/help@audio_bot")},
			want:   []string{"help"},
		},
		{
			name:   "unknown command",
			update: tgbotapi.Update{Message: command("/reverse")},
		},
		{
			name: "voice message",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat:  &tgbotapi.Chat{ID: 42},
				Voice: &tgbotapi.Voice{FileID: "v1"},
			}},
			want: []string{"audio"},
		},
		{
			name: "audio file",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat:    &tgbotapi.Chat{ID: 42},
				Audio:   &tgbotapi.Audio{FileID: "a1", FileName: "song.mp3"},
				Caption: "speed:2",
			}},
			want: []string{"audio"},
		},
		{
			name: "plain text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 42},
				Text: "hello",
			}},
		},
		{
			name:   "no message",
			update: tgbotapi.Update{UpdateID: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &recordingHandler{}
			NewRouter(h, nopLogger{}).Route(context.Background(), tt.update)

			if len(h.calls) != len(tt.want) {
				t.Fatalf("expected calls %v, got %v", tt.want, h.calls)
			}
			for i := range tt.want {
				if h.calls[i] != tt.want[i] {
					t.Errorf("expected calls %v, got %v", tt.want, h.calls)
				}
			}
		})
	}
}

func TestRouteBuildsEvent(t *testing.T) {
	h := &recordingHandler{}
	NewRouter(h, nopLogger{}).Route(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 11,
		Chat:      &tgbotapi.Chat{ID: 42},
		Audio:     &tgbotapi.Audio{FileID: "a1", FileName: "song.mp3", MimeType: "audio/mpeg", FileSize: 2048},
		Caption:   "Convert:WAV",
	}})

	if len(h.events) != 1 {
		t.Fatalf("expected one event, got %d", len(h.events))
	}
	ev := h.events[0]
	if ev.ChatID != 42 || ev.MessageID != 11 || ev.Caption != "Convert:WAV" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Voice != nil || ev.Audio == nil {
		t.Fatalf("expected only the audio reference, got %+v", ev)
	}
	if *ev.Audio != (entity.FileRef{FileID: "a1", FileName: "song.mp3", MimeType: "audio/mpeg", Size: 2048}) {
		t.Errorf("unexpected file ref %+v", *ev.Audio)
	}

	file, ok := ev.File()
	if !ok || file.FileID != "a1" {
		t.Errorf("File() = %+v, %v", file, ok)
	}
}

func TestRouteHandlerErrorIsSwallowed(t *testing.T) {
	h := &recordingHandler{err: errors.New("decode: boom")}

	// must not panic; the error is logged
	NewRouter(h, nopLogger{}).Route(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 1},
		Voice: &tgbotapi.Voice{FileID: "v"},
	}})

	if len(h.calls) != 1 {
		t.Errorf("expected one call, got %v", h.calls)
	}
}
