package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/AlexHayrapetyan/RestoBook/metrics"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"gorm.io/gorm"
)

// Contact surfaces. Each one persists into its own table.
const (
	SurfaceContact = "contacting"
	SurfaceResto   = "contactingResto"
)

const MsgInquiryThanks = "Thank you for contacting us!"

type ContactForm struct {
	FullName string `json:"fullName" form:"Full Name"`
	Subject  string `json:"subject" form:"Subject"`
	Email    string `json:"email" form:"Email Address"`
	Message  string `json:"message" form:"Your Message"`
}

type InquiryService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func NewInquiryService(db *gorm.DB, m *metrics.Metrics) *InquiryService {
	return &InquiryService{db: db, metrics: m}
}

// DeriveNames splits a full name into the first token and the rest joined by
// single spaces. Blank input yields two empty strings.
func DeriveNames(fullName string) (string, string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Submit validates the form and stores it for the given surface. It returns
// the stored *models.Contact or *models.RestoContact.
func (s *InquiryService) Submit(ctx context.Context, surface string, form ContactForm) (interface{}, error) {
	first, last := DeriveNames(form.FullName)
	if first == "" {
		return nil, invalidInput("fullName", "Full Name is required.")
	}
	subject := strings.TrimSpace(form.Subject)
	if subject == "" {
		return nil, invalidInput("subject", "Subject is required.")
	}
	email := strings.TrimSpace(form.Email)
	if email == "" {
		return nil, invalidInput("email", "Email Address is required.")
	}
	message := strings.TrimSpace(form.Message)
	if message == "" {
		return nil, invalidInput("message", "Message is required.")
	}

	emailMax := 50
	if surface == SurfaceResto {
		emailMax = 255
	}
	switch {
	case utf8.RuneCountInString(first) > 20 || utf8.RuneCountInString(last) > 20:
		return nil, invalidInput("fullName", "Full Name is too long.")
	case utf8.RuneCountInString(subject) > 200:
		return nil, invalidInput("subject", "Subject is too long.")
	case utf8.RuneCountInString(email) > emailMax:
		return nil, invalidInput("email", "Email Address is too long.")
	case utf8.RuneCountInString(message) > 500:
		return nil, invalidInput("message", "Message is too long.")
	}

	var row interface{}
	switch surface {
	case SurfaceContact:
		row = &models.Contact{FirstName: first, LastName: last, Subject: subject, Email: email, Message: message}
	case SurfaceResto:
		row = &models.RestoContact{FirstName: first, LastName: last, Subject: subject, Email: email, Message: message}
	default:
		return nil, notFound("Unknown contact form.")
	}

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, wrap("store inquiry", err)
	}
	s.metrics.Inquiry(surface)
	return row, nil
}
