package services

import (
	"context"
	"testing"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNames(t *testing.T) {
	tests := []struct {
		in          string
		first, last string
	}{
		{"Jane Doe Smith", "Jane", "Doe Smith"},
		{"Jane", "Jane", ""},
		{"", "", ""},
		{"   ", "", ""},
		{"  Jane   Doe  ", "Jane", "Doe"},
	}
	for _, tc := range tests {
		first, last := DeriveNames(tc.in)
		assert.Equal(t, tc.first, first, "first name of %q", tc.in)
		assert.Equal(t, tc.last, last, "last name of %q", tc.in)
	}
}

func TestSubmitInquiry(t *testing.T) {
	env := newTestEnv(t, time.Now())
	ctx := context.Background()
	form := ContactForm{FullName: "Jane Doe Smith", Subject: "Birthday", Email: "jane@example.com", Message: "Can we bring a cake?"}

	row, err := env.Svc.Inquiries.Submit(ctx, SurfaceContact, form)
	require.NoError(t, err)
	contact, ok := row.(*models.Contact)
	require.True(t, ok)
	assert.Equal(t, "Jane", contact.FirstName)
	assert.Equal(t, "Doe Smith", contact.LastName)

	_, err = env.Svc.Inquiries.Submit(ctx, SurfaceResto, form)
	require.NoError(t, err)

	var contacts, resto int64
	env.DB.Model(&models.Contact{}).Count(&contacts)
	env.DB.Model(&models.RestoContact{}).Count(&resto)
	assert.Equal(t, int64(1), contacts)
	assert.Equal(t, int64(1), resto)
}

func TestSubmitInquiryRequiredFields(t *testing.T) {
	env := newTestEnv(t, time.Now())
	ctx := context.Background()
	full := ContactForm{FullName: "Jane", Subject: "Hi", Email: "jane@example.com", Message: "Hello"}

	tests := []struct {
		mutate func(f *ContactForm)
		msg    string
	}{
		{func(f *ContactForm) { f.FullName = " " }, "Full Name is required."},
		{func(f *ContactForm) { f.Subject = "" }, "Subject is required."},
		{func(f *ContactForm) { f.Email = "" }, "Email Address is required."},
		{func(f *ContactForm) { f.Message = "\n" }, "Message is required."},
	}
	for _, tc := range tests {
		form := full
		tc.mutate(&form)
		_, err := env.Svc.Inquiries.Submit(ctx, SurfaceResto, form)
		requireKind(t, err, KindInvalidInput)
		assert.Equal(t, tc.msg, err.Error())
	}

	_, err := env.Svc.Inquiries.Submit(ctx, "newsletter", full)
	requireKind(t, err, KindNotFound)
}
