package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

var (
	ErrNoPermission = errors.New("you don't have permission to access this resource")
	ErrInvalidID    = errors.New("invalid id")
)

// respondServiceError -> map kind domain error ke status HTTP
func respondServiceError(c *gin.Context, err error) {
	var status int
	switch services.KindOf(err) {
	case services.KindInvalidInput:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindUnauthorized:
		status = http.StatusUnauthorized
	case services.KindTransient:
		status = http.StatusServiceUnavailable
	default:
		_ = c.Error(err)
		utils.ErrorLogger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
		return
	}
	utils.RespondError(c, status, err)
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidID)
		return 0, false
	}
	return uint(id), true
}
