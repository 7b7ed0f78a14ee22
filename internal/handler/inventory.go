package handler

import (
	"net/http"

	"stockpos/internal/dto"
	"stockpos/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Restock godoc
// @Summary      Receive stock into a room
// @Description  Adds units at a given cost, blending the room's weighted-average cost, and appends a RESTOCK ledger entry.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RestockRequest true "Restock detail"
// @Success      200  {object} dto.RestockResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/inventory/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req dto.RestockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.Restock(c.Request.Context(), storeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transfer godoc
// @Summary      Move stock between rooms
// @Description  Atomically moves units from one room to another, blending the destination's average cost. Appends paired TRANSFER ledger entries.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.TransferRequest true "Transfer detail"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, storeID := claimIDs(c)
	if err := h.svc.Transfer(c.Request.Context(), storeID, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Adjust godoc
// @Summary      Manual stock correction
// @Description  Applies a signed delta with a mandatory reason. Appends an ADJUSTMENT ledger entry.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdjustRequest true "Adjustment detail"
// @Success      200  {object} dto.InventoryItemResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.Adjust(c.Request.Context(), storeID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListItems returns the current stock levels, filterable by product and room.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	var filter dto.InventoryFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.ListItems(c.Request.Context(), storeID, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListLedger returns the append-only movement history, newest first.
func (h *InventoryHandler) ListLedger(c *gin.Context) {
	var filter dto.LedgerFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.ListLedger(c.Request.Context(), storeID, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
