package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/AlexHayrapetyan/RestoBook/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// BookingInput is a validated booking request.
type BookingInput struct {
	Date      string // YYYY-MM-DD
	Time      string // HH:MM, 24h
	PartySize int
	TableID   uint
}

// StartsAt combines Date and Time in loc and returns the instant in UTC.
func (in BookingInput) StartsAt(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, _ := time.ParseInLocation(DateLayout+" "+TimeLayout, in.Date+" "+in.Time, loc)
	return t.UTC()
}

// ValidateBookingInput parses the raw form values of a booking request.
// Fields are checked in order date, time, party size, table and the first
// failure is returned as an InvalidInput error naming the field.
func ValidateBookingInput(dateStr, timeStr, partySize, tableID string) (BookingInput, error) {
	var in BookingInput

	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return in, invalidInput("date", "Date is required.")
	}
	date, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return in, invalidInput("date", "Invalid date format. Use YYYY-MM-DD.")
	}

	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return in, invalidInput("time", "Time is required.")
	}
	clock, err := time.Parse(TimeLayout, timeStr)
	if err != nil {
		return in, invalidInput("time", "Invalid time format. Use HH:MM.")
	}

	people, err := strconv.Atoi(strings.TrimSpace(partySize))
	if err != nil || people <= 0 {
		return in, invalidInput("people", "Invalid number of people entered.")
	}

	table, err := strconv.ParseUint(strings.TrimSpace(tableID), 10, 64)
	if err != nil || table == 0 {
		return in, invalidInput("table", "Invalid table number entered.")
	}

	return BookingInput{
		Date:      date.Format(DateLayout),
		Time:      clock.Format(TimeLayout),
		PartySize: people,
		TableID:   uint(table),
	}, nil
}

// Overlaps reports whether the one-hour window starting at candidate
// intersects the one-hour window starting at existing. Touching windows
// (18:00 and 19:00) do not overlap.
func Overlaps(candidate, existing time.Time) bool {
	return candidate.Before(existing.Add(models.SlotLength)) &&
		candidate.Add(models.SlotLength).After(existing)
}

// fitsCapacity keeps the observed tolerance: a party may be one seat smaller
// than the table, never more, and larger parties are not rejected.
func fitsCapacity(capacity, partySize int) bool {
	return partySize >= capacity-1
}
