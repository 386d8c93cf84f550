package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"gorm.io/gorm"
)

const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeWarning = "warning"
	NoticeError   = "error"
)

const (
	ConfirmationSubject = "Reservation Confirmation"
	ReminderSubject     = "Reservation Reminder"
)

// Notice is a flash-style message shown to the guest after a request.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

var (
	confirmationTmpl = template.Must(template.New("confirmation").Parse(`<html><body>
<h2>Thank you, {{.Username}}!</h2>
<p>Your table at RestoBook is reserved. We are looking forward to seeing you.</p>
<p>If your plans change, please contact us through the website.</p>
</body></html>`))

	reminderTmpl = template.Must(template.New("reminder").Parse(`<html><body>
<h2>Hello {{.User.Username}},</h2>
<p>This is a reminder of your reservation tomorrow.</p>
<ul>
<li>Date: {{.Reservation.Date}}</li>
<li>Time: {{.Reservation.Time}}</li>
<li>Table: #{{.Reservation.TableID}}</li>
<li>Guests: {{.Reservation.PartySize}}</li>
</ul>
<p>See you soon at RestoBook!</p>
</body></html>`))
)

// Notifier -> kirim email konfirmasi dan pengingat, catat setiap percobaan
// ke tabel notifications
type Notifier struct {
	db      *gorm.DB
	mailer  Mailer
	clock   Clock
	loc     *time.Location
	metrics *metrics.Metrics
}

func NewNotifier(db *gorm.DB, mailer Mailer, clock Clock, loc *time.Location, m *metrics.Metrics) *Notifier {
	return &Notifier{db: db, mailer: mailer, clock: clock, loc: loc, metrics: m}
}

// SendConfirmation mails the fixed confirmation to the user. A transport
// failure returns a warning notice and a TransientDependencyFailure.
func (n *Notifier) SendConfirmation(ctx context.Context, userID uint, reservationID *uint) (Notice, error) {
	user, err := n.loadUser(ctx, userID)
	if err != nil {
		return Notice{Level: NoticeError, Message: err.Error()}, err
	}

	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, user); err != nil {
		return Notice{Level: NoticeError, Message: "Could not prepare the confirmation email."}, wrap("render confirmation", err)
	}

	if err := n.mailer.Send(ctx, user.Email, ConfirmationSubject, body.String()); err != nil {
		return n.failed(ctx, models.NotificationConfirmation, user, reservationID, ConfirmationSubject, err)
	}

	n.record(ctx, models.NotificationConfirmation, user, reservationID, ConfirmationSubject, models.NotificationSent, "confirmation sent")
	return Notice{Level: NoticeSuccess, Message: "Confirmation email sent."}, nil
}

// SendReminder looks up the user's latest reservation that is not Done and
// mails a reminder only when it falls on the next calendar day.
func (n *Notifier) SendReminder(ctx context.Context, userID uint) (Notice, error) {
	user, err := n.loadUser(ctx, userID)
	if err != nil {
		return Notice{Level: NoticeError, Message: err.Error()}, err
	}

	var reservation models.Reservation
	err = n.db.WithContext(ctx).
		Where("user_id = ? AND (status IS NULL OR status <> ?)", user.ID, models.ReservationDone).
		Order("date DESC").Order("time DESC").
		First(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Notice{Level: NoticeError, Message: fmt.Sprintf("No reservation found for user %d", user.ID)}, nil
	}
	if err != nil {
		return Notice{Level: NoticeError, Message: "Could not look up your reservations."}, wrap("load latest reservation", err)
	}

	tomorrow := n.clock.Now().In(n.loc).AddDate(0, 0, 1).Format(DateLayout)
	if reservation.Date != tomorrow {
		n.record(ctx, models.NotificationReminder, user, &reservation.ID, ReminderSubject, models.NotificationSkipped, "reservation is not tomorrow")
		return Notice{Level: NoticeInfo, Message: "No upcoming reservation or it's not a day before the reservation."}, nil
	}

	var body bytes.Buffer
	data := struct {
		User        *models.User
		Reservation models.Reservation
	}{user, reservation}
	if err := reminderTmpl.Execute(&body, data); err != nil {
		return Notice{Level: NoticeError, Message: "Could not prepare the reminder email."}, wrap("render reminder", err)
	}

	if err := n.mailer.Send(ctx, user.Email, ReminderSubject, body.String()); err != nil {
		return n.failed(ctx, models.NotificationReminder, user, &reservation.ID, ReminderSubject, err)
	}

	n.record(ctx, models.NotificationReminder, user, &reservation.ID, ReminderSubject, models.NotificationSent, "reminder sent")
	return Notice{Level: NoticeSuccess, Message: "Reminder email sent successfully!"}, nil
}

func (n *Notifier) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := n.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("No user found with ID %d", userID))
		}
		return nil, wrap("load user", err)
	}
	return &user, nil
}

func (n *Notifier) failed(ctx context.Context, kind string, user *models.User, reservationID *uint, subject string, err error) (Notice, error) {
	utils.ErrorLogger.Errorf("mail %s to user %d failed: %v", kind, user.ID, err)
	n.record(ctx, kind, user, reservationID, subject, models.NotificationFailed, err.Error())
	return Notice{Level: NoticeWarning, Message: "We could not send the " + kind + " email. Your reservation is still saved."},
		transient("mail delivery failed", err)
}

// record writes the audit row. Its own failure is only logged.
func (n *Notifier) record(ctx context.Context, kind string, user *models.User, reservationID *uint, subject, outcome, message string) {
	n.metrics.Notification(kind, outcome)

	title := subject
	uid := user.ID
	row := models.Notification{
		UserID:        &uid,
		ReservationID: reservationID,
		Kind:          kind,
		Recipient:     user.Email,
		Title:         &title,
		Outcome:       outcome,
		Message:       message,
	}
	if err := n.db.WithContext(ctx).Create(&row).Error; err != nil {
		utils.ErrorLogger.Errorf("record %s notification for user %d: %v", kind, user.ID, err)
	}
}

// History returns the latest dispatch audit rows, newest first. kind filters
// when not empty.
func (n *Notifier) History(ctx context.Context, kind string, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := n.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var rows []models.Notification
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("load notifications", err)
	}
	return rows, nil
}
