// Package queue_publisher provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/arepabyte/comanda/internal/queue"
)

// PublishOrderConfirmed publishes an OrderConfirmedEvent to the
// order.confirmed queue. Messages are marked persistent; any error is
// logged and returned so the caller can choose to ignore it.
func PublishOrderConfirmed(ctx context.Context, event q.OrderConfirmedEvent) error {
	return publish(ctx, q.OrderConfirmedQueue, event)
}

// PublishInvoiceIssued publishes an InvoiceIssuedEvent to the
// invoice.issued queue under the same best-effort contract.
func PublishInvoiceIssued(ctx context.Context, event q.InvoiceIssuedEvent) error {
	return publish(ctx, q.InvoiceIssuedQueue, event)
}

// publish dials the broker, declares the durable queue (idempotent)
// and sends one persistent JSON message on the default exchange. A
// connection per publish keeps the happy path simple; confirmation and
// issuance are rare enough that pooling would buy nothing.
func publish(ctx context.Context, queueName string, event interface{}) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
