package entity

import (
	"context"
	"time"
)

// Format is an output container the bot can encode to.
type Format string

const (
	FormatMP3 Format = "mp3"
	FormatWAV Format = "wav"
	FormatOGG Format = "ogg"
)

// Ext returns the file suffix for the format, dot included.
func (f Format) Ext() string {
	return "." + string(f)
}

// AudioClip is a decoded input plus the transform still to be applied on encode.
type AudioClip struct {
	Path       string
	Duration   time.Duration
	SampleRate int
	Channels   int
	Codec      string

	// Speed is the pending time-scale factor; 0 and 1 both mean unchanged.
	Speed float64
}

// Scaled reports whether encoding the clip changes its playback speed.
func (c AudioClip) Scaled() bool {
	return c.Speed != 0 && c.Speed != 1
}

// AudioTransformer decodes, time-scales and encodes audio artifacts.
type AudioTransformer interface {
	Decode(ctx context.Context, path string) (AudioClip, error)
	TimeScale(clip AudioClip, factor float64) (AudioClip, error)
	Encode(ctx context.Context, clip AudioClip, format Format, outPath string) error
}
