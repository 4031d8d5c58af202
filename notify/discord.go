package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Discord 通过 webhook 发送消息
type Discord struct {
	client  *resty.Client
	webhook string
}

func NewDiscord(webhook string) *Discord {
	return &Discord{
		client:  resty.New().SetTimeout(10 * time.Second),
		webhook: webhook,
	}
}

type discordMessage struct {
	Content string `json:"content"`
}

func (d *Discord) Notify(ctx context.Context, message string) error {
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(discordMessage{Content: message}).
		Post(d.webhook)
	if err != nil {
		log.Error().Msgf("Discord post failed err is %s ", err.Error())
		return errors.Wrap(err, "discord post")
	}
	if resp.IsError() {
		return errors.Errorf("discord post: %s", resp.Status())
	}
	log.Info().Msgf("Discord notification sent successfully")
	return nil
}
