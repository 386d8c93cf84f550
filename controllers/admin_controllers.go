package controllers

import (
	"net/http"
	"strconv"

	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	Tables   *services.TableService
	Sweeper  *services.Sweeper
	Notifier *services.Notifier
}

func NewAdminController(svcs *services.Services) *AdminController {
	return &AdminController{Tables: svcs.Tables, Sweeper: svcs.Sweeper, Notifier: svcs.Notifier}
}

// GetDashboardStats mengambil statistik untuk dashboard
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Tables.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// RunSweep -> jalankan satu putaran sweeper tanpa menunggu ticker
func (ac *AdminController) RunSweep(c *gin.Context) {
	n, err := ac.Sweeper.SweepOnce(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sweep finished", gin.H{"completed": n})
}

// GetNotifications -> audit pengiriman email, ?kind=confirmation|reminder&limit=N
func (ac *AdminController) GetNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, err := ac.Notifier.History(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", rows)
}
