package audio_converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_bot/entity"
)

const traceName = "audio-converter"

// Accumulated speed factors accepted by TimeScale.
const (
	MinSpeed = 0.01
	MaxSpeed = 100
)

var (
	// ErrNoAudioStream is returned by Decode when the input has no audio track.
	ErrNoAudioStream = errors.New("no audio stream in input")
	// ErrSpeedOutOfRange is returned by TimeScale for factors outside [MinSpeed, MaxSpeed].
	ErrSpeedOutOfRange = errors.Errorf("speed must be between %v and %v", MinSpeed, MaxSpeed)
)

// AudioConverter is an ffmpeg-backed entity.AudioTransformer.
type AudioConverter struct {
	ffmpegPath    string
	ffprobePath   string
	mp3Bitrate    string
	preservePitch bool
}

var _ entity.AudioTransformer = (*AudioConverter)(nil)

// Option -.
type Option func(*AudioConverter)

// FFmpegPath sets the ffmpeg binary used for encoding.
func FFmpegPath(path string) Option {
	return func(ac *AudioConverter) {
		if path != "" {
			ac.ffmpegPath = path
		}
	}
}

// MP3Bitrate sets the target bitrate for MP3 output, e.g. "192k".
func MP3Bitrate(bitrate string) Option {
	return func(ac *AudioConverter) {
		if bitrate != "" {
			ac.mp3Bitrate = bitrate
		}
	}
}

// PreservePitch switches speed changes from resampling to tempo stretching.
func PreservePitch(preserve bool) Option {
	return func(ac *AudioConverter) {
		ac.preservePitch = preserve
	}
}

func NewAudioConverter(opts ...Option) *AudioConverter {
	ac := &AudioConverter{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		mp3Bitrate:  "192k",
	}
	for _, opt := range opts {
		opt(ac)
	}
	return ac
}

type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// Decode probes the file and returns a clip describing its first audio stream.
func (ac *AudioConverter) Decode(ctx context.Context, path string) (entity.AudioClip, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Decode")
	defer span.End()

	cmd := exec.CommandContext(ctx, ac.ffprobePath,
		"-show_format", "-show_streams", "-of", "json", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entity.AudioClip{}, ctxErr
		}
		return entity.AudioClip{}, errors.Wrapf(err, "ffprobe: %s", lastLine(stderr.String()))
	}

	var res probeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return entity.AudioClip{}, errors.Wrap(err, "parse ffprobe output")
	}

	for _, s := range res.Streams {
		if s.CodecType != "audio" {
			continue
		}
		clip := entity.AudioClip{
			Path:     path,
			Codec:    s.CodecName,
			Channels: s.Channels,
		}
		clip.SampleRate, _ = strconv.Atoi(s.SampleRate)

		duration := s.Duration
		if duration == "" {
			duration = res.Format.Duration
		}
		if secs, err := strconv.ParseFloat(duration, 64); err == nil {
			clip.Duration = time.Duration(secs * float64(time.Second))
		}

		span.SetAttributes(
			attribute.String("codec", clip.Codec),
			attribute.Int("sample_rate", clip.SampleRate),
			attribute.Float64("duration_seconds", clip.Duration.Seconds()),
		)
		return clip, nil
	}

	return entity.AudioClip{}, ErrNoAudioStream
}

// TimeScale returns the clip with a pending speed change. Factors multiply;
// the product must stay within [MinSpeed, MaxSpeed].
func (ac *AudioConverter) TimeScale(clip entity.AudioClip, factor float64) (entity.AudioClip, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return clip, errors.Errorf("speed factor must be a positive finite number, got %v", factor)
	}

	current := clip.Speed
	if current == 0 {
		current = 1
	}
	speed := current * factor
	if speed < MinSpeed || speed > MaxSpeed {
		return clip, errors.Wrapf(ErrSpeedOutOfRange, "got %v", speed)
	}
	clip.Speed = speed
	if clip.Duration > 0 {
		clip.Duration = time.Duration(float64(clip.Duration) / factor)
	}
	return clip, nil
}

// Encode writes clip to outPath in the given container, applying any pending speed change.
func (ac *AudioConverter) Encode(ctx context.Context, clip entity.AudioClip, format entity.Format, outPath string) error {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Encode")
	defer span.End()

	span.SetAttributes(attribute.String("format", string(format)), attribute.Float64("speed", clip.Speed))

	kwargs, err := ac.outputArgs(format)
	if err != nil {
		return err
	}
	if clip.Scaled() {
		kwargs["filter:a"] = ac.speedFilter(clip)
	}

	stream := ffmpeg.Input(clip.Path).Output(outPath, kwargs).OverWriteOutput()

	return ac.run(ctx, stream)
}

func (ac *AudioConverter) outputArgs(format entity.Format) (ffmpeg.KwArgs, error) {
	switch format {
	case entity.FormatMP3:
		return ffmpeg.KwArgs{"map": "0:a:0", "f": "mp3", "acodec": "libmp3lame", "b:a": ac.mp3Bitrate}, nil
	case entity.FormatWAV:
		return ffmpeg.KwArgs{"map": "0:a:0", "f": "wav", "acodec": "pcm_s16le"}, nil
	default:
		return nil, errors.Errorf("unsupported output format %q", format)
	}
}

// speedFilter builds the audio filter for the clip's pending speed change.
// Without pitch preservation the clip is resampled, so pitch moves with speed.
// Rates asetrate cannot take fall back to the tempo chain.
func (ac *AudioConverter) speedFilter(clip entity.AudioClip) string {
	if ac.preservePitch || clip.SampleRate <= 0 {
		return atempoChain(clip.Speed)
	}
	rate := math.Round(float64(clip.SampleRate) * clip.Speed)
	if rate < 1 || rate > math.MaxInt32 {
		return atempoChain(clip.Speed)
	}
	return fmt.Sprintf("asetrate=%d,aresample=%d", int64(rate), clip.SampleRate)
}

// atempoChain splits factor into atempo stages each within [0.5, 2].
func atempoChain(factor float64) string {
	var stages []string
	for factor > 2 {
		stages = append(stages, "atempo=2")
		factor /= 2
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, "atempo="+strconv.FormatFloat(factor, 'f', -1, 64))
	return strings.Join(stages, ",")
}

// run executes the compiled stream with the configured binary, killed on ctx cancel.
func (ac *AudioConverter) run(ctx context.Context, stream *ffmpeg.Stream) error {
	cmd := exec.CommandContext(ctx, ac.ffmpegPath, stream.GetArgs()...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrapf(err, "ffmpeg: %s", lastLine(stderr.String()))
	}

	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
