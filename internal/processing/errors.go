package processing

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure of the audio pipeline.
type Kind int

const (
	KindTransport Kind = iota
	KindDecode
	KindParse
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindParse:
		return "parse"
	case KindEncode:
		return "encode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrNoAudio is returned for an event carrying neither an audio file nor a voice note.
var ErrNoAudio = errors.New("message has no audio or voice attachment")

// Error is a pipeline failure tagged with its kind and the step that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err, treating untagged errors as transport failures.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindTransport
}

// UserMessage renders err as the text reply sent to the user.
func UserMessage(err error) string {
	var (
		prefix string
		cause  = err
	)

	var pe *Error
	if errors.As(err, &pe) {
		cause = pe.Err
	}

	switch KindOf(err) {
	case KindDecode:
		prefix = msgDecodeFailed
	case KindParse:
		prefix = msgParseFailed
	case KindEncode:
		prefix = msgEncodeFailed
	default:
		prefix = msgTransportFailed
	}

	return fmt.Sprintf("❌ %s: %s", prefix, cause)
}
