package controllers_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/stretchr/testify/assert"
)

func TestContactForms(t *testing.T) {
	srv := newTestServer(t, time.Now())
	form := url.Values{
		"Full Name":     {"Ada Lovelace King"},
		"Subject":       {"Private dinner"},
		"Email Address": {"ada@example.com"},
		"Your Message":  {"Do you host groups of twelve?"},
	}

	w, resp := srv.do(t, http.MethodPost, "/contacting", "", form)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Thank you for contacting us!", resp.Message)

	w, _ = srv.do(t, http.MethodPost, "/contactingResto", "", form)
	assert.Equal(t, http.StatusCreated, w.Code)

	var contact models.Contact
	srv.DB.First(&contact)
	assert.Equal(t, "Ada", contact.FirstName)
	assert.Equal(t, "Lovelace King", contact.LastName)

	form.Del("Subject")
	w, resp = srv.do(t, http.MethodPost, "/contactingResto", "", form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Subject is required.", resp.Message)
}
