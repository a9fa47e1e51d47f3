package handler

import (
	"net/http"

	"github.com/vllevinton/bakery-stock-app/internal/apierror"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct{ svc service.StockService }

func NewHistoryHandler(svc service.StockService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

func (h *HistoryHandler) Listar(c *gin.Context) {
	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.History(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar historial"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
