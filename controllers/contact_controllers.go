package controllers

import (
	"net/http"

	"github.com/AlexHayrapetyan/RestoBook/services"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"github.com/gin-gonic/gin"
)

type ContactController struct {
	Inquiries *services.InquiryService
}

func NewContactController(inquiries *services.InquiryService) *ContactController {
	return &ContactController{Inquiries: inquiries}
}

// Contacting -> form kontak umum
func (cc *ContactController) Contacting(c *gin.Context) {
	cc.submit(c, services.SurfaceContact)
}

// ContactingResto -> form kontak halaman restoran
func (cc *ContactController) ContactingResto(c *gin.Context) {
	cc.submit(c, services.SurfaceResto)
}

func (cc *ContactController) submit(c *gin.Context, surface string) {
	var form services.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	row, err := cc.Inquiries.Submit(c.Request.Context(), surface, form)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.Infof("New inquiry on %s from %s", surface, form.Email)
	utils.RespondJSON(c, http.StatusCreated, services.MsgInquiryThanks, row)
}
