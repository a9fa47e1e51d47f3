package handler

import (
	"net/http"
	"strconv"

	"github.com/vllevinton/bakery-stock-app/internal/apierror"
	"github.com/vllevinton/bakery-stock-app/internal/dto"
	"github.com/vllevinton/bakery-stock-app/internal/middleware"
	"github.com/vllevinton/bakery-stock-app/internal/model"
	"github.com/vllevinton/bakery-stock-app/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct {
	visibility service.VisibilityService
	stock      service.StockService
}

func NewStockHandler(visibility service.VisibilityService, stock service.StockService) *StockHandler {
	return &StockHandler{visibility: visibility, stock: stock}
}

// Listar returns the products currently visible in the caller's branch, with
// the computed status and suggested replenishment for each.
func (h *StockHandler) Listar(c *gin.Context) {
	claims := middleware.GetClaims(c)

	requested, _ := strconv.ParseInt(c.Query("branch_id"), 10, 64)
	branchID, err := h.visibility.ResolveBranch(c.Request.Context(), claims.Role, claims.BranchID, requested)
	if err != nil {
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
		return
	}

	resp, err := h.visibility.VisibleProducts(c.Request.Context(), branchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar stock"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"branch_id": branchID, "products": resp})
}

// GuardarBatch applies a batch of stock counts for the caller's branch.
// Unresolvable entries are skipped, not rejected.
func (h *StockHandler) GuardarBatch(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req dto.BatchStockRequest
	if !bindAndValidate(c, &req) {
		return
	}

	requested, _ := strconv.ParseInt(c.Query("branch_id"), 10, 64)
	branchID, err := h.visibility.ResolveBranch(c.Request.Context(), claims.Role, claims.BranchID, requested)
	if err != nil {
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
		return
	}
	if branchID == 0 {
		c.JSON(http.StatusBadRequest, apierror.New("branch_id requerido"))
		return
	}

	user := &model.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
		Email:    claims.Email,
		BranchID: claims.BranchID,
	}
	resp, err := h.stock.ApplyBatch(c.Request.Context(), branchID, user, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}
