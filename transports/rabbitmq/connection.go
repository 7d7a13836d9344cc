package rabbitmq

import (
	"errors"
	"log/slog"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection owns the AMQP connection and channel behind a Recorder
type Connection struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	recorder *Recorder
	logger   *slog.Logger
}

// Connect dials url, declares a durable topic exchange and returns a
// connection whose Recorder publishes to it
func Connect(rawURL string, options ...RecorderOption) (*Connection, error) {
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", URL: sanitizeURL(rawURL), Err: err}
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Op: "open channel", URL: sanitizeURL(rawURL), Err: err}
	}

	recorder := NewRecorder(ch, options...)

	if err := ch.ExchangeDeclare(
		recorder.exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, &ConnectionError{Op: "declare exchange " + recorder.exchange, URL: sanitizeURL(rawURL), Err: err}
	}

	recorder.logger.Info("connected to RabbitMQ",
		"url", sanitizeURL(rawURL),
		"exchange", recorder.exchange,
	)

	return &Connection{
		conn:     conn,
		channel:  ch,
		recorder: recorder,
		logger:   recorder.logger,
	}, nil
}

// Recorder returns the recorder publishing over this connection
func (c *Connection) Recorder() *Recorder {
	return c.recorder
}

// Close closes the recorder, the channel and the connection
func (c *Connection) Close() error {
	var errs []error
	if err := c.recorder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	c.logger.Debug("RabbitMQ connection closed")
	return errors.Join(errs...)
}

// sanitizeURL removes the password from a connection URL
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}
	return u.String()
}
