package entity

import "context"

// FileRef points at a file held by the messaging platform.
type FileRef struct {
	FileID   string
	FileName string
	MimeType string
	Size     int64
}

// IncomingAudioEvent is one received message carrying audio or a voice note.
type IncomingAudioEvent struct {
	ChatID    int64
	MessageID int
	Audio     *FileRef
	Voice     *FileRef
	Caption   string
}

// File returns whichever of Audio or Voice is set.
func (e IncomingAudioEvent) File() (*FileRef, bool) {
	switch {
	case e.Audio != nil && e.Voice == nil:
		return e.Audio, true
	case e.Voice != nil && e.Audio == nil:
		return e.Voice, true
	default:
		return nil, false
	}
}

// Messenger is the chat platform as seen by the request handler.
type Messenger interface {
	ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	SendAudio(ctx context.Context, chatID int64, replyTo int, fileName string, body []byte, caption string) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	GetFilePath(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, filePath string) ([]byte, error)
}
