// Package queue carries booking events over RabbitMQ.
package queue

const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once per committed reservation.
type BookingConfirmedEvent struct {
	EventID       string `json:"event_id"`
	ReservationID uint   `json:"reservation_id"`
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	TableID       uint   `json:"table_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PartySize     int    `json:"party_size"`
	ConfirmedAt   string `json:"confirmed_at"`
}
