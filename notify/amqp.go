package notify

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

const DefaultExchange = "chain-console"

// Publisher 将通知发布到 fanout 交换机
type Publisher struct {
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(uri, exchange string) (*Publisher, error) {
	if uri == "" {
		return nil, errors.New("amqp url not configured")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"fanout", // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // no-wait
		nil,      // args
	)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "amqp exchange declare")
	}
	return &Publisher{exchange: exchange, conn: conn, channel: ch}, nil
}

// Notify amqp.Channel 不是并发安全的 发布时加锁
func (p *Publisher) Notify(_ context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.Publish(
		p.exchange, // exchange
		"",         // key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType: "text/plain",
			Body:        []byte(message),
		},
	)
}

func (p *Publisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}
