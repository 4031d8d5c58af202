package notify

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Notifier 操作成功后的外部通知 失败只记录日志 不影响请求结果
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// 通知驱动
const (
	DriverDiscord = "discord"
	DriverAMQP    = "amqp"
)

// Options 通知配置
type Options struct {
	Driver   string
	Webhook  string
	AMQPURL  string
	Exchange string
}

// Nop 不发送任何通知
type Nop struct{}

func (Nop) Notify(context.Context, string) error {
	return nil
}

// New 根据驱动创建通知器 webhook 未配置时返回 Nop
func New(opts Options) (Notifier, error) {
	switch opts.Driver {
	case "", DriverDiscord:
		if opts.Webhook == "" {
			log.Warn().Msgf("Discord webhook URL not configured")
			return Nop{}, nil
		}
		return NewDiscord(opts.Webhook), nil
	case DriverAMQP:
		return NewPublisher(opts.AMQPURL, opts.Exchange)
	}
	return nil, errors.Errorf("unknown notify driver %q", opts.Driver)
}
