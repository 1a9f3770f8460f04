package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ, declares the booking
// notification queues (durable), and starts consuming messages.  Each
// message is rendered as a single human-friendly line appended to
// logs/notifications.log.  The function runs a reconnect loop with
// exponential backoff and keeps running across broker restarts; it
// rejects messages it cannot process so the server continues operating.
func StartNotificationConsumer() error {
	url := BrokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("notification-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("notification-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("notification-consumer: set QoS failed: %v", err)
	}

	queues := []string{BookingCreatedQueue, BookingCancelledQueue, PaymentSucceededQueue}
	merged := make(chan delivery)
	for _, name := range queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go func(queueName string, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				merged <- delivery{queue: queueName, msg: d}
			}
			merged <- delivery{closed: true}
		}(name, msgs)
	}

	for d := range merged {
		if d.closed {
			return errors.New("deliveries channel closed")
		}
		if err := handleMessage(d.queue, d.msg.Body); err != nil {
			log.Printf("notification-consumer: handle message failed: %v", err)
			_ = d.msg.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.msg.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

type delivery struct {
	queue  string
	msg    amqp.Delivery
	closed bool
}

func handleMessage(queueName string, body []byte) error {
	line, err := renderLine(queueName, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "notifications.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// renderLine turns an event body into the single-line notification text
// written to the log file.
func renderLine(queueName string, body []byte) (string, error) {
	switch queueName {
	case BookingCreatedQueue:
		var ev BookingCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Booking created | booking_id=%d | user=%s | tour=\"%s\" | location=\"%s\" | starts=%s | participants=%d | total=%d cents\n",
			ev.CreatedAt, ev.BookingID, ev.UserEmail, ev.TourName, ev.Location, ev.StartDate, ev.Participants, ev.TotalAmountCents), nil
	case BookingCancelledQueue:
		var ev BookingCancelledEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		reason := ""
		if ev.Reason != nil {
			reason = *ev.Reason
		}
		return fmt.Sprintf("[%s] Booking cancelled | booking_id=%d | user=%s | tour=\"%s\" | participants=%d | reason=\"%s\"\n",
			ev.CancelledAt, ev.BookingID, ev.UserEmail, ev.TourName, ev.Participants, reason), nil
	case PaymentSucceededQueue:
		var ev PaymentSucceededEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Payment succeeded | booking_id=%d | user=%s | tour=\"%s\" | ref=%s | amount=%d %s\n",
			ev.PaidAt, ev.BookingID, ev.UserEmail, ev.TourName, ev.PaymentRef, ev.AmountCents, ev.Currency), nil
	default:
		return "", fmt.Errorf("unknown queue %q", queueName)
	}
}
