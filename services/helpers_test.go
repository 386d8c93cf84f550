package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/queue"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingConfirmedEvent
	err    error
}

func (p *recordingPublisher) PublishBookingConfirmed(_ context.Context, ev queue.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type testEnv struct {
	DB        *gorm.DB
	Svc       *Services
	Clock     *FakeClock
	Mailer    *fakeMailer
	Publisher *recordingPublisher
	Metrics   *metrics.Metrics
}

// setupTestDB opens a private in-memory sqlite database per test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	utils.SilenceLogger()

	db := setupTestDB(t)
	env := &testEnv{
		DB:        db,
		Clock:     NewFakeClock(now),
		Mailer:    &fakeMailer{},
		Publisher: &recordingPublisher{},
		Metrics:   metrics.New(prometheus.NewRegistry()),
	}
	env.Svc = New(Options{
		DB:            db,
		Clock:         env.Clock,
		Location:      time.UTC,
		Mailer:        env.Mailer,
		Publisher:     env.Publisher,
		Hub:           hub.New(),
		Metrics:       env.Metrics,
		SweepInterval: 10 * time.Millisecond,
	})
	env.Svc.Accounts.BcryptCost = bcrypt.MinCost
	return env
}

func (e *testEnv) createTable(t *testing.T, capacity int) *models.Table {
	t.Helper()
	table := models.Table{Capacity: capacity, Status: models.TableFree}
	require.NoError(t, e.DB.Create(&table).Error)
	return &table
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Balance:  30000,
		Role:     models.RoleCustomer,
	}
	require.NoError(t, e.DB.Create(&user).Error)
	return &user
}

func (e *testEnv) reload(t *testing.T, table *models.Table) *models.Table {
	t.Helper()
	var fresh models.Table
	require.NoError(t, e.DB.First(&fresh, table.ID).Error)
	return &fresh
}

func mustInput(t *testing.T, date, clock string, people, table int) BookingInput {
	t.Helper()
	in, err := ValidateBookingInput(date, clock, fmt.Sprint(people), fmt.Sprint(table))
	require.NoError(t, err)
	return in
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	var de *DomainError
	require.True(t, errors.As(err, &de), "expected *DomainError, got %T: %v", err, err)
	require.Equal(t, kind, de.Kind, "message: %s", de.Message)
}
