package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/abkawan/retail-ledger/internal/models"
	"github.com/streadway/amqp"
)

const (
	// queue for journal records
	TransactionQueue = "transactions"
)

// handles RabbitMQ operations
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

func NewRabbitMQ(uri string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		TransactionQueue, // name
		true,             // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	return &RabbitMQ{
		conn:    conn,
		channel: ch,
		queue:   q,
	}, nil
}

func (r *RabbitMQ) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// Publish sends a journal record to the queue. It makes RabbitMQ usable as a ledger.Journal.
func (r *RabbitMQ) Publish(ctx context.Context, rec *models.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := Encode(rec)
	if err != nil {
		return err
	}

	err = r.channel.Publish(
		"",               // exchange
		TransactionQueue, // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    rec.Reference,
			Body:         body,
			DeliveryMode: amqp.Persistent, // make message persistent
		})
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	return nil
}

// consumes journal records from the queue. A record is acked only after
// handle succeeds; failures are requeued once and then dropped.
func (r *RabbitMQ) ConsumeRecords(ctx context.Context, handle func(context.Context, *models.TransactionRecord) error) error {
	msgs, err := r.channel.Consume(
		TransactionQueue, // queue
		"",               // consumer
		false,            // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				rec, err := Decode(msg.Body)
				if err != nil {
					log.Printf("failed to unmarshal journal record: %v", err)
					msg.Reject(false) // Don't requeue
					continue
				}

				if err := handle(ctx, rec); err != nil {
					log.Printf("failed to handle journal record %s: %v", rec.Reference, err)
					msg.Nack(false, !msg.Redelivered)
					continue
				}

				msg.Ack(false)
			}
		}
	}()

	return nil
}

// Encode serializes a journal record for the queue
func Encode(rec *models.TransactionRecord) ([]byte, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal journal record: %w", err)
	}
	return body, nil
}

// Decode parses a queued journal record
func Decode(body []byte) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, err
	}
	if rec.Reference == "" {
		return nil, fmt.Errorf("journal record %q has no reference", rec.ID)
	}
	return &rec, nil
}
