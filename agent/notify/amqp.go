package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

type AMQPConfig struct {
	URL      string `envconfig:"URL" split_words:"true" required:"true"`
	Exchange string `envconfig:"EXCHANGE" split_words:"true" default:"restaurant_notifications"`
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type amqpDialer func(url string) (amqpConnection, error)

type brokerConnection struct {
	*amqp091.Connection
}

func (c brokerConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialBroker(url string) (amqpConnection, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	return brokerConnection{conn}, nil
}

// AMQP publishes notifications to a durable fanout exchange.
type AMQP struct {
	mu       sync.Mutex
	url      string
	exchange string
	dial     amqpDialer
	conn     amqpConnection
	ch       amqpChannel
}

func NewAMQP(cfg AMQPConfig) (*AMQP, error) {
	return newAMQP(cfg, dialBroker)
}

func newAMQP(cfg AMQPConfig, dial amqpDialer) (*AMQP, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.New("amqp url is required")
	}
	exchange := strings.TrimSpace(cfg.Exchange)
	if exchange == "" {
		return nil, errors.New("amqp exchange is required")
	}

	a := &AMQP{url: url, exchange: exchange, dial: dial}
	if err := a.connect(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *AMQP) connect() error {
	conn, err := a.dial(a.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}
	a.conn = conn
	if err := a.openChannel(); err != nil {
		_ = conn.Close()
		a.conn = nil
		return err
	}
	return nil
}

func (a *AMQP) openChannel() error {
	ch, err := a.conn.Channel()
	if err != nil {
		return fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(a.exchange, "fanout", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare exchange %s: %w", a.exchange, err)
	}
	a.ch = ch
	return nil
}

// ensure redials a closed connection and reopens a channel the broker shut
// while the connection stayed up. Caller holds mu.
func (a *AMQP) ensure() error {
	if a.conn == nil || a.conn.IsClosed() {
		a.release()
		return a.connect()
	}
	if a.ch == nil || a.ch.IsClosed() {
		if a.ch != nil {
			_ = a.ch.Close()
			a.ch = nil
		}
		return a.openChannel()
	}
	return nil
}

func (a *AMQP) release() {
	if a.ch != nil {
		_ = a.ch.Close()
		a.ch = nil
	}
	if a.conn != nil {
		_ = a.conn.Close()
		a.conn = nil
	}
}

func (a *AMQP) Notify(ctx context.Context, message string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensure(); err != nil {
		log.Error().Err(err).Msg("amqp reconnect failed")
		return false
	}

	err := a.ch.PublishWithContext(ctx, a.exchange, "", false, false, amqp091.Publishing{
		ContentType:  "text/plain",
		Body:         []byte(message),
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		log.Error().Err(err).Str("exchange", a.exchange).Msg("amqp publish failed")
		return false
	}
	return true
}

func (a *AMQP) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ch != nil {
		_ = a.ch.Close()
		a.ch = nil
	}
	if a.conn != nil {
		err := a.conn.Close()
		a.conn = nil
		return err
	}
	return nil
}
