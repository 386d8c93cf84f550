package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/utils"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// StartBookingConsumer consumes booking.confirmed and writes one audit log
// line per event. It reconnects with backoff until ctx is cancelled.
func StartBookingConsumer(ctx context.Context, url string) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			utils.ErrorLogger.Warnf("booking-consumer: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return nil
		}
		utils.ErrorLogger.Warnf("booking-consumer: consume loop ended: %v; reconnecting", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		utils.ErrorLogger.Warnf("booking-consumer: set QoS failed: %v", err)
	}
	if err := declareBookingQueue(ch); err != nil {
		return err
	}

	msgs, err := ch.Consume(BookingConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if _, err := HandleBookingMessage(d.Body); err != nil {
				utils.ErrorLogger.Errorf("booking-consumer: %v", err)
				// reject without requeue to avoid a poison loop
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleBookingMessage decodes one delivery and logs it.
func HandleBookingMessage(body []byte) (BookingConfirmedEvent, error) {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal: %w", err)
	}
	if ev.ReservationID == 0 {
		return ev, errors.New("event without reservation_id")
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"event_id":       ev.EventID,
		"reservation_id": ev.ReservationID,
		"user_id":        ev.UserID,
		"table_id":       ev.TableID,
		"slot":           ev.Date + " " + ev.Time,
		"party_size":     ev.PartySize,
	}).Info("Reservation confirmed")
	return ev, nil
}
