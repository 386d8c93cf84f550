package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// CreateTable -> menambahkan meja baru (staff)
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Capacity int `json:"capacity" form:"capacity" binding:"required"`
	}
	if err := c.ShouldBind(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Capacity is required."))
		return
	}

	table, err := tc.Tables.Create(c.Request.Context(), req.Capacity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseIDParam(c, "table_id")
	if !ok {
		return
	}
	table, err := tc.Tables.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// CheckAvailability -> cek cepat sebelum booking, ?people=N
func (tc *TableController) CheckAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "table_id")
	if !ok {
		return
	}
	people, err := strconv.Atoi(c.Query("people"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Invalid number of people entered."))
		return
	}

	table, err := tc.Tables.CheckAvailability(c.Request.Context(), id, people)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table is available", table)
}

// UpdateTableStatus -> override status Free/Busy oleh staff
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "table_id")
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status" form:"status" binding:"required"`
	}
	if err := c.ShouldBind(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Status is required."))
		return
	}

	table, err := tc.Tables.SetStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}
