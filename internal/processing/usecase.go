package processing

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"audio_bot/entity"
	"audio_bot/internal/metrics"
	"audio_bot/pkg/logger"
)

const traceName = "audio-processing"

// State is a step of the per-event pipeline, logged as the event advances.
type State string

const (
	StateReceived     State = "received"
	StateDownloading  State = "downloading"
	StateDecoding     State = "decoding"
	StateTransforming State = "transforming"
	StateEncoding     State = "encoding"
	StateUploading    State = "uploading"
	StateCleaningUp   State = "cleaning_up"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// AudioUsecase handles bot commands and audio messages one event at a time.
// It keeps no per-event state, so concurrent calls are safe.
type AudioUsecase struct {
	messenger   entity.Messenger
	transformer entity.AudioTransformer
	tempDir     string
	metrics     *metrics.Metrics
	l           logger.Interface
}

func NewAudioUsecase(m entity.Messenger, t entity.AudioTransformer, tempDir string, mt *metrics.Metrics, l logger.Interface) *AudioUsecase {
	return &AudioUsecase{messenger: m, transformer: t, tempDir: tempDir, metrics: mt, l: l}
}

// OnStart replies with the welcome text.
func (u *AudioUsecase) OnStart(ctx context.Context, ev entity.IncomingAudioEvent) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "OnStart")
	defer span.End()

	u.metrics.Event("start")
	_, err := u.messenger.ReplyText(ctx, ev.ChatID, ev.MessageID, welcomeText)
	return err
}

// OnHelp replies with the caption grammar.
func (u *AudioUsecase) OnHelp(ctx context.Context, ev entity.IncomingAudioEvent) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "OnHelp")
	defer span.End()

	u.metrics.Event("help")
	_, err := u.messenger.ReplyText(ctx, ev.ChatID, ev.MessageID, helpText)
	return err
}

// OnAudio runs the download, decode, transform, encode and upload pipeline
// for one message. The user gets exactly one reply: the processed audio or
// an error text. The returned error is the pipeline failure, if any, already
// reported to the user.
func (u *AudioUsecase) OnAudio(ctx context.Context, ev entity.IncomingAudioEvent) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "OnAudio")
	defer span.End()

	id := uuid.New().String()
	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.Int64("chat_id", ev.ChatID),
	)
	l := u.l.With("event", id)

	u.metrics.Event("audio")
	state(l, StateReceived)

	statusID, err := u.messenger.ReplyText(ctx, ev.ChatID, ev.MessageID, processingText)
	if err != nil {
		return u.fail(ctx, l, ev, newError(KindTransport, "send status", err))
	}
	defer u.deleteStatus(ctx, l, ev.ChatID, statusID)

	if err := u.process(ctx, l, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return u.fail(ctx, l, ev, err)
	}

	state(l, StateDone)
	return nil
}

func (u *AudioUsecase) process(ctx context.Context, l logger.Interface, ev entity.IncomingAudioEvent) error {
	file, ok := ev.File()
	if !ok {
		return newError(KindTransport, "select attachment", ErrNoAudio)
	}

	state(l, StateDownloading)
	start := time.Now()

	filePath, err := u.messenger.GetFilePath(ctx, file.FileID)
	if err != nil {
		return newError(KindTransport, "get file", err)
	}

	body, err := u.messenger.DownloadFile(ctx, filePath)
	if err != nil {
		return newError(KindTransport, "download", err)
	}
	u.metrics.ObserveStage("download", start)

	input, err := WriteArtifact(ctx, u.tempDir, entity.FormatOGG.Ext(), body)
	if err != nil {
		return newError(KindTransport, "store input", err)
	}
	defer cleanup(l, input)

	state(l, StateDecoding)
	start = time.Now()

	clip, err := u.transformer.Decode(ctx, input.Path)
	if err != nil {
		return newError(KindDecode, "decode", err)
	}
	u.metrics.ObserveStage("decode", start)

	state(l, StateTransforming)

	directive, err := ParseDirective(ev.Caption)
	if err != nil {
		return newError(KindParse, "parse caption", err)
	}
	if directive.HasSpeed {
		clip, err = u.transformer.TimeScale(clip, directive.Speed)
		if err != nil {
			return newError(KindParse, "time scale", err)
		}
	}

	state(l, StateEncoding)
	start = time.Now()

	output := NewArtifact(u.tempDir, directive.Format.Ext())
	defer cleanup(l, output)

	if err := u.transformer.Encode(ctx, clip, directive.Format, output.Path); err != nil {
		return newError(KindEncode, "encode", err)
	}
	result, err := output.Read()
	if err != nil {
		return newError(KindEncode, "read output", err)
	}
	u.metrics.ObserveStage("encode", start)

	state(l, StateUploading)
	start = time.Now()

	if err := u.messenger.SendAudio(ctx, ev.ChatID, 0, outputName(file, directive.Format), result, resultCaption); err != nil {
		return newError(KindTransport, "upload", err)
	}
	u.metrics.ObserveStage("upload", start)
	u.metrics.Success(len(body), len(result))

	state(l, StateCleaningUp)
	return nil
}

func (u *AudioUsecase) fail(ctx context.Context, l logger.Interface, ev entity.IncomingAudioEvent, err error) error {
	state(l, StateFailed)
	u.metrics.Failure(KindOf(err).String())
	l.Error(err, "kind", KindOf(err))

	if _, replyErr := u.messenger.ReplyText(ctx, ev.ChatID, ev.MessageID, UserMessage(err)); replyErr != nil {
		l.Error("error reply not delivered: %v", replyErr)
	}
	return err
}

func (u *AudioUsecase) deleteStatus(ctx context.Context, l logger.Interface, chatID int64, messageID int) {
	if err := u.messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		l.Warn("delete status message %d: %v", messageID, err)
	}
}

func cleanup(l logger.Interface, a *Artifact) {
	if err := a.Close(); err != nil {
		l.Warn("remove artifact %s: %v", a.Path, err)
	}
}

func state(l logger.Interface, s State) {
	l.Debug("state %s", s)
}

// outputName keeps the user's file name where there is one, with the new extension.
func outputName(file *entity.FileRef, format entity.Format) string {
	base := "audio"
	if file.FileName != "" {
		name := filepath.Base(file.FileName)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if name != "" && name != "." && name != string(filepath.Separator) {
			base = name
		}
	}
	return base + format.Ext()
}
