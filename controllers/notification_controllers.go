package controllers

import (
	"errors"
	"net/http"

	"github.com/AlexHayrapetyan/RestoBook/middlewares"
	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	Notifier *services.Notifier
}

func NewNotificationController(n *services.Notifier) *NotificationController {
	return &NotificationController{Notifier: n}
}

// SendReminder -> kirim pengingat bila reservasi terakhir jatuh besok
func (nc *NotificationController) SendReminder(c *gin.Context) {
	notice, err := nc.Notifier.SendReminder(c.Request.Context(), middlewares.CurrentUserID(c))
	if err != nil && services.KindOf(err) != services.KindTransient {
		respondServiceError(c, err)
		return
	}
	if notice.Level == services.NoticeError {
		utils.RespondError(c, http.StatusNotFound, errors.New(notice.Message))
		return
	}
	utils.RespondJSON(c, http.StatusOK, notice.Message, notice)
}
