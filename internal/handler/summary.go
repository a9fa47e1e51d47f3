package handler

import (
	"net/http"

	"github.com/vllevinton/bakery-stock-app/internal/apierror"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/service"

	"github.com/gin-gonic/gin"
)

type SummaryHandler struct{ svc service.SummaryService }

func NewSummaryHandler(svc service.SummaryService) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

func (h *SummaryHandler) Obtener(c *gin.Context) {
	var filter dto.SummaryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filter.BranchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
