package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingEndToEnd(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	table := env.createTable(t, 4)
	require.Equal(t, uint(1), table.ID)
	user := env.createUser(t, "jane")

	res, err := env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "18:00", "4", "1")
	require.NoError(t, err)
	assert.Equal(t, models.ReservationPending, res.Reservation.Status)
	assert.Equal(t, models.TableBusy, res.Table.Status)
	assert.Equal(t, models.TableBusy, env.reload(t, table).Status)

	var count int64
	env.DB.Model(&models.Reservation{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "18:30", "4", "1")
	requireKind(t, err, KindConflict)
	assert.Equal(t, MsgAlreadyBooked, err.Error())

	res, err = env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "20:00", "4", "1")
	require.NoError(t, err)
	assert.Equal(t, "20:00", res.Reservation.Time)

	env.DB.Model(&models.Reservation{}).Where("table_id = ?", table.ID).Count(&count)
	assert.Equal(t, int64(2), count)

	assert.Equal(t, 2.0, testutil.ToFloat64(env.Metrics.BookingsTotal.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.Metrics.BookingsTotal.WithLabelValues("conflict")))
}

func TestBookingRejections(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	table := env.createTable(t, 6)
	user := env.createUser(t, "sam")

	_, err := env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "18:00", "4", "99")
	requireKind(t, err, KindNotFound)

	_, err = env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "18:00", "2", "1")
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Choose a table with sufficient capacity.", err.Error())

	_, err = env.Svc.Booking.Book(ctx, user.ID, "03/01/2025", "18:00", "6", "1")
	requireKind(t, err, KindInvalidInput)

	_, err = env.Svc.Booking.Book(ctx, 12345, "2025-03-01", "18:00", "6", "1")
	requireKind(t, err, KindNotFound)

	// nothing was written and the table stayed Free
	var count int64
	env.DB.Model(&models.Reservation{}).Count(&count)
	assert.Zero(t, count)
	assert.Equal(t, models.TableFree, env.reload(t, table).Status)
}

func TestBookingSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	env.Mailer.err = errors.New("smtp: connection refused")
	ctx := context.Background()
	env.createTable(t, 4)
	user := env.createUser(t, "mia")

	res, err := env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "18:00", "4", "1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Notices)
	assert.Equal(t, NoticeWarning, res.Notices[0].Level)

	var stored models.Reservation
	require.NoError(t, env.DB.First(&stored, res.Reservation.ID).Error)

	var failed int64
	env.DB.Model(&models.Notification{}).
		Where("kind = ? AND outcome = ?", models.NotificationConfirmation, models.NotificationFailed).
		Count(&failed)
	assert.Equal(t, int64(1), failed)
}

func TestBookingPublishesEventAndSendsConfirmation(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	env.createTable(t, 2)
	user := env.createUser(t, "lee")

	res, err := env.Svc.Booking.Book(ctx, user.ID, "2025-03-01", "19:00", "2", "1")
	require.NoError(t, err)

	require.Len(t, env.Publisher.events, 1)
	ev := env.Publisher.events[0]
	assert.Equal(t, res.Reservation.ID, ev.ReservationID)
	assert.Equal(t, "lee", ev.Username)
	assert.NotEmpty(t, ev.EventID)

	sent := env.Mailer.Sent()
	require.Len(t, sent, 1, "reservation is not tomorrow, so no reminder")
	assert.Equal(t, "lee@example.com", sent[0].To)
	assert.Equal(t, ConfirmationSubject, sent[0].Subject)
	assert.Contains(t, sent[0].Body, "lee")

	require.Len(t, res.Notices, 2)
	assert.Equal(t, NoticeSuccess, res.Notices[0].Level)
	assert.Equal(t, NoticeInfo, res.Notices[1].Level)
}

func TestBookingSurvivesPublisherFailure(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	env.Publisher.err = errors.New("broker down")
	env.createTable(t, 2)
	user := env.createUser(t, "kim")

	_, err := env.Svc.Booking.Book(context.Background(), user.ID, "2025-03-01", "19:00", "2", "1")
	assert.NoError(t, err)
}

func TestConcurrentBookingsForSameSlot(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	env.createTable(t, 4)
	user := env.createUser(t, "rush")
	in := mustInput(t, "2025-03-01", "18:00", 4, 1)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Svc.Booking.CreateReservation(ctx, user.ID, in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	var count int64
	env.DB.Model(&models.Reservation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIsOverlapping(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	env.createTable(t, 4)
	env.createTable(t, 4)
	user := env.createUser(t, "ola")

	_, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", "18:00", 4, 1))
	require.NoError(t, err)

	at := func(h, m int) time.Time { return time.Date(2025, 3, 1, h, m, 0, 0, time.UTC) }

	hit, err := env.Svc.Booking.IsOverlapping(ctx, at(18, 59), 1)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = env.Svc.Booking.IsOverlapping(ctx, at(19, 0), 1)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = env.Svc.Booking.IsOverlapping(ctx, at(17, 0), 1)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = env.Svc.Booking.IsOverlapping(ctx, at(18, 0), 2)
	require.NoError(t, err)
	assert.False(t, hit, "other tables are independent")
}

func TestCompleteReservationReleasesTable(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	table := env.createTable(t, 4)
	user := env.createUser(t, "dan")

	first, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", "18:00", 4, 1))
	require.NoError(t, err)
	second, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", "20:00", 4, 1))
	require.NoError(t, err)

	done, err := env.Svc.Booking.CompleteReservation(ctx, first.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationDone, done.Status)
	assert.Equal(t, models.TableBusy, env.reload(t, table).Status, "second reservation still active")

	_, err = env.Svc.Booking.CompleteReservation(ctx, second.Reservation.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableFree, env.reload(t, table).Status)

	_, err = env.Svc.Booking.CompleteReservation(ctx, 777)
	requireKind(t, err, KindNotFound)
}

func TestBookingBumpsVersionOnBusyTable(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	table := env.createTable(t, 4)
	user := env.createUser(t, "noor")

	_, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", "18:00", 4, 1))
	require.NoError(t, err)
	snapshot := env.reload(t, table)
	require.Equal(t, models.TableBusy, snapshot.Status)
	require.Equal(t, 1, snapshot.Version)

	// second booking on an already Busy table still moves the version
	second, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", "20:00", 4, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, second.Table.Version)
	assert.Equal(t, 2, env.reload(t, table).Version)

	// a completion that decided Free from the older snapshot must lose
	err = setTableStatus(env.DB, snapshot, models.TableFree)
	requireKind(t, err, KindConflict)
	assert.Equal(t, models.TableBusy, env.reload(t, table).Status)
}

func TestListReservationsNewestFirst(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()
	env.createTable(t, 4)
	user := env.createUser(t, "eve")
	other := env.createUser(t, "bob")

	for _, slot := range []string{"12:00", "20:00", "16:00"} {
		_, err := env.Svc.Booking.CreateReservation(ctx, user.ID, mustInput(t, "2025-03-01", slot, 4, 1))
		require.NoError(t, err)
	}
	_, err := env.Svc.Booking.CreateReservation(ctx, other.ID, mustInput(t, "2025-03-02", "12:00", 4, 1))
	require.NoError(t, err)

	list, err := env.Svc.Booking.ListReservations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "20:00", list[0].Time)
	assert.Equal(t, "16:00", list[1].Time)
	assert.Equal(t, "12:00", list[2].Time)
}
