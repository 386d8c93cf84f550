package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/AlexHayrapetyan/RestoBook/middlewares"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

// formValue accepts a JSON string or number so that {"people": 4} and the
// HTML form's "4" reach validation the same way.
type formValue string

func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	*v = formValue(data)
	return nil
}

type bookingForm struct {
	Date   formValue `json:"date" form:"date"`
	Time   formValue `json:"time" form:"time"`
	People formValue `json:"people" form:"people"`
	Table  formValue `json:"table" form:"table"`
}

type ReservationController struct {
	Booking *services.BookingService
}

func NewReservationController(booking *services.BookingService) *ReservationController {
	return &ReservationController{Booking: booking}
}

// CreateReservation -> booking meja untuk user yang login
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var form bookingForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := rc.Booking.Book(c.Request.Context(), middlewares.CurrentUserID(c),
		string(form.Date), string(form.Time), string(form.People), string(form.Table))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, services.MsgReservationCreated, result)
}

// GetMyReservations -> riwayat reservasi user, terbaru dulu
func (rc *ReservationController) GetMyReservations(c *gin.Context) {
	reservations, err := rc.Booking.ListReservations(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// CompleteReservation -> staff menandai reservasi selesai
func (rc *ReservationController) CompleteReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "reservation_id")
	if !ok {
		return
	}
	reservation, err := rc.Booking.CompleteReservation(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation marked as Done", reservation)
}
