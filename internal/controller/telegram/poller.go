package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"audio_bot/pkg/logger"
)

// Poller long-polls getUpdates and feeds each update to the router in order.
type Poller struct {
	client  *Client
	router  *Router
	timeout int
	l       logger.Interface
}

func NewPoller(client *Client, router *Router, timeout int, l logger.Interface) *Poller {
	return &Poller{client: client, router: router, timeout: timeout, l: l}
}

// Run blocks until ctx is cancelled or the update channel closes.
func (p *Poller) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout

	updates := p.client.Bot().GetUpdatesChan(u)
	defer p.client.Bot().StopReceivingUpdates()

	p.l.Info("telegram poller started as @%s", p.client.Username())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.router.Route(ctx, update)
		}
	}
}
