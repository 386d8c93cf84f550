package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/queue"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MsgReservationCreated = "Reservation created successfully."
	MsgAlreadyBooked      = "This table is already booked, please choose another one"
	msgBookingUnavailable = "Booking is temporarily unavailable, please try again."
)

// BookingResult is the outcome of a successful booking. Notices carry the
// mail dispatch results, which never fail the booking itself.
type BookingResult struct {
	Reservation models.Reservation `json:"reservation"`
	Table       models.Table       `json:"table"`
	Notices     []Notice           `json:"notices"`
}

type BookingService struct {
	db        *gorm.DB
	locker    TableLocker
	notifier  *Notifier
	publisher EventPublisher
	hub       *hub.Hub
	clock     Clock
	loc       *time.Location
	metrics   *metrics.Metrics
}

// Book validates the raw form values and creates the reservation.
func (s *BookingService) Book(ctx context.Context, userID uint, date, clock, people, table string) (*BookingResult, error) {
	in, err := ValidateBookingInput(date, clock, people, table)
	if err != nil {
		s.metrics.ObserveBooking("invalid", time.Now())
		return nil, err
	}
	return s.CreateReservation(ctx, userID, in)
}

// CreateReservation runs the check-then-act sequence under the table lock and
// inside one transaction: row lock on the table, capacity, overlap, insert,
// then the Busy flag with a version check. Mail and events follow the commit.
func (s *BookingService) CreateReservation(ctx context.Context, userID uint, in BookingInput) (*BookingResult, error) {
	started := time.Now()

	user, err := s.notifier.loadUser(ctx, userID)
	if err != nil {
		s.metrics.ObserveBooking(resultLabel(err), started)
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, in.TableID)
	if err != nil {
		utils.ErrorLogger.Errorf("lock table %d: %v", in.TableID, err)
		s.metrics.ObserveBooking("error", started)
		return nil, transient(msgBookingUnavailable, err)
	}
	reservation, table, err := s.insertLocked(ctx, userID, in)
	unlock()

	s.metrics.ObserveBooking(resultLabel(err), started)
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Reservation %d created: table=%d slot=%s %s party=%d user=%d",
		reservation.ID, table.ID, reservation.Date, reservation.Time, reservation.PartySize, userID)

	s.hub.BroadcastReservation(hub.EventReservationCreated, *reservation, table)
	s.publishConfirmed(ctx, user, reservation)

	result := &BookingResult{Reservation: *reservation, Table: *table}
	notice, err := s.notifier.SendConfirmation(ctx, user.ID, &reservation.ID)
	if err != nil {
		utils.ErrorLogger.Warnf("confirmation for reservation %d: %v", reservation.ID, err)
	}
	result.Notices = append(result.Notices, notice)

	notice, err = s.notifier.SendReminder(ctx, user.ID)
	if err != nil {
		utils.ErrorLogger.Warnf("reminder for user %d: %v", user.ID, err)
	}
	result.Notices = append(result.Notices, notice)

	return result, nil
}

func (s *BookingService) insertLocked(ctx context.Context, userID uint, in BookingInput) (*models.Reservation, *models.Table, error) {
	startsAt := in.StartsAt(s.loc)

	var reservation models.Reservation
	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, in.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(msgTableNotFound)
			}
			return wrap("lock table row", err)
		}
		if !fitsCapacity(table.Capacity, in.PartySize) {
			return conflict(msgCapacity)
		}

		overlapping, err := isOverlapping(tx, table.ID, startsAt)
		if err != nil {
			return err
		}
		if overlapping {
			return conflict(MsgAlreadyBooked)
		}

		reservation = models.Reservation{
			UserID:    userID,
			TableID:   table.ID,
			Date:      in.Date,
			Time:      in.Time,
			StartsAt:  startsAt,
			PartySize: in.PartySize,
			Status:    models.ReservationPending,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return wrap("insert reservation", err)
		}

		// bump version even when already Busy so a concurrent completion
		// that counted before this insert fails its compare-and-swap
		return setTableStatus(tx, &table, models.TableBusy)
	})
	if err != nil {
		return nil, nil, err
	}
	return &reservation, &table, nil
}

// IsOverlapping reports whether a one-hour window starting at candidateStart
// collides with any reservation already on the table.
func (s *BookingService) IsOverlapping(ctx context.Context, candidateStart time.Time, tableID uint) (bool, error) {
	return isOverlapping(s.db.WithContext(ctx), tableID, candidateStart.UTC())
}

func isOverlapping(db *gorm.DB, tableID uint, candidate time.Time) (bool, error) {
	// the range only narrows the scan, Overlaps decides
	var existing []models.Reservation
	err := db.Select("id", "starts_at").
		Where("table_id = ? AND starts_at > ? AND starts_at < ?",
			tableID, candidate.Add(-models.SlotLength), candidate.Add(models.SlotLength)).
		Find(&existing).Error
	if err != nil {
		return false, wrap("scan reservations", err)
	}
	for _, r := range existing {
		if Overlaps(candidate, r.StartsAt) {
			return true, nil
		}
	}
	return false, nil
}

// CompleteReservation marks a reservation Done and refreshes the table flag
// in the same transaction.
func (s *BookingService) CompleteReservation(ctx context.Context, reservationID uint) (*models.Reservation, error) {
	var reservation models.Reservation
	var table *models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		reservation, table, err = completeReservation(tx, reservationID)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Reservation %d marked as Done", reservation.ID)
	s.hub.BroadcastReservation(hub.EventReservationComplete, reservation, table)
	return &reservation, nil
}

func completeReservation(tx *gorm.DB, reservationID uint) (models.Reservation, *models.Table, error) {
	var reservation models.Reservation
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reservation, nil, notFound(fmt.Sprintf("Reservation %d not found.", reservationID))
		}
		return reservation, nil, wrap("load reservation", err)
	}

	// lock the table before anything else reads the ledger
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").First(&models.Table{}, reservation.TableID).Error; err != nil {
		return reservation, nil, wrap("lock table row", err)
	}

	if !reservation.IsDone() {
		if err := tx.Model(&reservation).Update("status", models.ReservationDone).Error; err != nil {
			return reservation, nil, wrap("complete reservation", err)
		}
		reservation.Status = models.ReservationDone
	}

	table, err := refreshTableStatus(tx, reservation.TableID)
	if err != nil {
		return reservation, nil, err
	}
	return reservation, table, nil
}

// ListReservations returns the user's reservations, latest slot first.
func (s *BookingService) ListReservations(ctx context.Context, userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, wrap("list reservations", err)
	}
	return reservations, nil
}

func (s *BookingService) publishConfirmed(ctx context.Context, user *models.User, r *models.Reservation) {
	event := queue.BookingConfirmedEvent{
		EventID:       uuid.NewString(),
		ReservationID: r.ID,
		UserID:        user.ID,
		Username:      user.Username,
		TableID:       r.TableID,
		Date:          r.Date,
		Time:          r.Time,
		PartySize:     r.PartySize,
		ConfirmedAt:   s.clock.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, event); err != nil {
		utils.ErrorLogger.Warnf("publish booking.confirmed for reservation %d: %v", r.ID, err)
	}
}

func resultLabel(err error) string {
	switch KindOf(err) {
	case 0:
		if err == nil {
			return "created"
		}
		return "error"
	case KindInvalidInput:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "error"
}
