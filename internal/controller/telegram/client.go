package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"audio_bot/entity"
)

const traceName = "telegram-client"

// Client implements entity.Messenger on top of the Telegram Bot API.
type Client struct {
	bot          *tgbotapi.BotAPI
	fileEndpoint string
}

var _ entity.Messenger = (*Client)(nil)

// NewClient authenticates with token against the public Bot API.
func NewClient(token string, debug bool) (*Client, error) {
	return NewClientWithEndpoints(token, tgbotapi.APIEndpoint, tgbotapi.FileEndpoint, &http.Client{}, debug)
}

// NewClientWithEndpoints is NewClient for a self-hosted Bot API server.
// Both endpoints are format strings taking the token and a method or file path.
func NewClientWithEndpoints(token, apiEndpoint, fileEndpoint string, httpClient tgbotapi.HTTPClient, debug bool) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, apiEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "tgbotapi.NewBotAPI")
	}
	bot.Debug = debug

	return &Client{bot: bot, fileEndpoint: fileEndpoint}, nil
}

// Bot exposes the underlying API handle to the update poller.
func (c *Client) Bot() *tgbotapi.BotAPI {
	return c.bot
}

// Username is the bot's account name as reported by getMe.
func (c *Client) Username() string {
	return c.bot.Self.UserName
}

func (c *Client) ReplyText(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "ReplyText")
	defer span.End()

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, errors.Wrap(err, "sendMessage")
	}
	return sent.MessageID, nil
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, replyTo int, fileName string, body []byte, caption string) error {
	_, span := otel.Tracer(traceName).Start(ctx, "SendAudio")
	defer span.End()

	span.SetAttributes(attribute.Int("bytes", len(body)))

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: body})
	audio.Caption = caption
	audio.ReplyToMessageID = replyTo

	if _, err := c.bot.Send(audio); err != nil {
		return errors.Wrap(err, "sendAudio")
	}
	return nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	_, span := otel.Tracer(traceName).Start(ctx, "DeleteMessage")
	defer span.End()

	if _, err := c.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return errors.Wrap(err, "deleteMessage")
	}
	return nil
}

func (c *Client) GetFilePath(ctx context.Context, fileID string) (string, error) {
	_, span := otel.Tracer(traceName).Start(ctx, "GetFilePath")
	defer span.End()

	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return "", errors.Wrap(err, "getFile")
	}
	if file.FilePath == "" {
		return "", errors.Errorf("getFile: no path for file %s", fileID)
	}
	return file.FilePath, nil
}

func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "DownloadFile")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.fileEndpoint, c.bot.Token, filePath), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.bot.Client.Do(req)
	if err != nil {
		// the request URL embeds the token, keep it out of the message
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errors.Wrap(err, "download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "download file")
	}
	span.SetAttributes(attribute.Int("bytes", len(body)))

	return body, nil
}
