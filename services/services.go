package services

import (
	"time"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"gorm.io/gorm"
)

// Options wires the application context. Only DB is required.
type Options struct {
	DB            *gorm.DB
	Clock         Clock
	Location      *time.Location
	Mailer        Mailer
	Publisher     EventPublisher
	Locker        TableLocker
	Hub           *hub.Hub
	Metrics       *metrics.Metrics
	SweepInterval time.Duration
}

// Services is the explicit application context handed to the router and the
// CLI commands.
type Services struct {
	DB        *gorm.DB
	Accounts  *AccountService
	Tables    *TableService
	Booking   *BookingService
	Inquiries *InquiryService
	Notifier  *Notifier
	Sweeper   *Sweeper
	Hub       *hub.Hub
	Metrics   *metrics.Metrics
}

func New(opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer{}
	}
	if opts.Publisher == nil {
		opts.Publisher = NoopPublisher{}
	}
	if opts.Locker == nil {
		opts.Locker = NewLocalLocker()
	}

	notifier := NewNotifier(opts.DB, opts.Mailer, opts.Clock, opts.Location, opts.Metrics)
	return &Services{
		DB:       opts.DB,
		Accounts: NewAccountService(opts.DB, opts.Metrics),
		Tables:   NewTableService(opts.DB, opts.Hub),
		Booking: &BookingService{
			db:        opts.DB,
			locker:    opts.Locker,
			notifier:  notifier,
			publisher: opts.Publisher,
			hub:       opts.Hub,
			clock:     opts.Clock,
			loc:       opts.Location,
			metrics:   opts.Metrics,
		},
		Inquiries: NewInquiryService(opts.DB, opts.Metrics),
		Notifier:  notifier,
		Sweeper:   NewSweeper(opts.DB, opts.Clock, opts.Hub, opts.Metrics, opts.SweepInterval),
		Hub:       opts.Hub,
		Metrics:   opts.Metrics,
	}
}
