package processing

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"audio_bot/entity"
)

const (
	speedToken      = "speed:"
	convertWAVToken = "convert:wav"
	convertMP3Token = "convert:mp3"
)

// ParseDirective extracts the speed and output format from a caption.
// Matching is case-insensitive and unknown text is ignored.
func ParseDirective(caption string) (entity.Directive, error) {
	caption = strings.ToLower(caption)
	d := entity.Directive{Format: entity.FormatMP3}

	if i := strings.Index(caption, speedToken); i >= 0 {
		speed, err := parseSpeed(caption[i+len(speedToken):])
		if err != nil {
			return d, err
		}
		d.Speed = speed
		d.HasSpeed = true
	}

	switch {
	case strings.Contains(caption, convertWAVToken):
		d.Format = entity.FormatWAV
		d.FormatExplicit = true
	case strings.Contains(caption, convertMP3Token):
		d.Format = entity.FormatMP3
		d.FormatExplicit = true
	}

	return d, nil
}

func parseSpeed(rest string) (float64, error) {
	fields := strings.FieldsFunc(rest, unicode.IsSpace)
	if len(fields) == 0 {
		return 0, errors.New("speed value is missing")
	}

	speed, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, errors.Errorf("invalid speed value %q", fields[0])
	}
	if speed <= 0 || math.IsInf(speed, 0) || math.IsNaN(speed) {
		return 0, errors.Errorf("speed must be a positive number, got %q", fields[0])
	}

	return speed, nil
}
