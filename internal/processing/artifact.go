package processing

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

// Artifact is a temporary audio file owned by a single event.
// Close removes it and is safe to call more than once.
type Artifact struct {
	Path   string
	Suffix string
}

// NewArtifact reserves a uniquely named path in dir without creating the file.
func NewArtifact(dir, suffix string) *Artifact {
	if dir == "" {
		dir = os.TempDir()
	}
	name := "audio_bot_" + uuid.New().String() + suffix
	return &Artifact{Path: filepath.Join(dir, name), Suffix: suffix}
}

// WriteArtifact puts body into a new artifact in dir.
func WriteArtifact(ctx context.Context, dir, suffix string, body []byte) (*Artifact, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "WriteArtifact")
	defer span.End()

	a := NewArtifact(dir, suffix)

	f, err := os.OpenFile(a.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Write(body); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "write artifact")
	}

	return a, nil
}

// Read returns the artifact's content.
func (a *Artifact) Read() ([]byte, error) {
	return os.ReadFile(a.Path)
}

func (a *Artifact) Close() error {
	err := os.Remove(a.Path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
