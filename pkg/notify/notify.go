// Package notify posts new available orders to a drivers' dispatch chat in
// Telegram. Purely best-effort: delivery failures are logged and never affect
// the order lifecycle.
package notify

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"taxihub/pkg/logger"
	"taxihub/pkg/models"
)

type Announcer struct {
	bot  *tele.Bot
	chat *tele.Chat
	log  logger.ILogger
}

func NewAnnouncer(botToken string, chatID int64, log logger.ILogger) (*Announcer, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  botToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}
	return &Announcer{
		bot:  b,
		chat: &tele.Chat{ID: chatID},
		log:  log,
	}, nil
}

// AnnounceOrder posts a new PENDING order to the dispatch chat.
func (a *Announcer) AnnounceOrder(o *models.Order) {
	text := fmt.Sprintf("🚕 New order\nFrom: %s\nTo: %s\nPrice: %.0f", o.PickupLocation, o.Destination, o.Price)
	if o.DriverComment != "" {
		text += "\nComment: " + o.DriverComment
	}
	if o.ScheduledTime != nil {
		text += "\nPickup at: " + time.UnixMilli(*o.ScheduledTime).Format("02.01.2006 15:04")
	}
	if _, err := a.bot.Send(a.chat, text); err != nil {
		a.log.Warning("failed to announce order", logger.String("order_id", o.ID), logger.Error(err))
	}
}
