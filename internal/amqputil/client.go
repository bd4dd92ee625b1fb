// Package amqputil publishes JSON messages to a RabbitMQ queue.
package amqputil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// QueueDeclareParams mirrors the arguments of [amqp091.Channel.QueueDeclare].
type QueueDeclareParams struct {
	Name       string
	Durable    bool
	AutoDelete bool
	Exclusive  bool
	NoWait     bool
	Args       amqp091.Table
}

// EventsQueue is the durable queue build events go to.
var EventsQueue = &QueueDeclareParams{
	Name:    "package.events",
	Durable: true,
}

// Client dials per publish. Publishing is rare (once per build), so it
// doesn't hold a connection.
type Client struct {
	connectionString string
	queue            *QueueDeclareParams
	now              func() time.Time
}

func NewClient(connectionString string, queue *QueueDeclareParams) *Client {
	return &Client{
		connectionString: connectionString,
		queue:            queue,
		now:              time.Now,
	}
}

// PublishJSON publishes v as a persistent JSON message of the given type
// to the client's queue through the default exchange.
func (cli *Client) PublishJSON(ctx context.Context, typ string, v any) error {
	msg, err := cli.jsonPublishing(typ, v)
	if err != nil {
		return fmt.Errorf("amqputil.Client: %w", err)
	}
	if err = cli.publish(ctx, msg); err != nil {
		return fmt.Errorf("amqputil.Client: %w", err)
	}
	return nil
}

func (cli *Client) jsonPublishing(typ string, v any) (amqp091.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqp091.Publishing{}, err
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    cli.now().UTC(),
		Type:         typ,
		Body:         body,
	}, nil
}

func (cli *Client) publish(ctx context.Context, msg amqp091.Publishing) error {
	conn, err := amqp091.Dial(cli.connectionString)
	if err != nil {
		return err
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		cli.queue.Name,
		cli.queue.Durable,
		cli.queue.AutoDelete,
		cli.queue.Exclusive,
		cli.queue.NoWait,
		cli.queue.Args,
	)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", cli.queue.Name, false, false, msg)
}
