package handler

import (
	"net/http"

	"stockpos/internal/apierror"
	"stockpos/internal/dto"
	"stockpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoomsHandler struct{ svc service.RoomService }

func NewRoomsHandler(svc service.RoomService) *RoomsHandler {
	return &RoomsHandler{svc: svc}
}

func (h *RoomsHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.Create(c.Request.Context(), storeID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RoomsHandler) List(c *gin.Context) {
	_, storeID := claimIDs(c)
	resp, err := h.svc.List(c.Request.Context(), storeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list rooms"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoomsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	var req dto.UpdateRoomRequest
	if !bindAndValidate(c, &req) {
		return
	}
	_, storeID := claimIDs(c)
	resp, err := h.svc.Update(c.Request.Context(), storeID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RoomsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid ID"))
		return
	}
	_, storeID := claimIDs(c)
	if err := h.svc.Deactivate(c.Request.Context(), storeID, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
