package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type WarehouseHandler struct {
	delivery *service.DeliveryService
}

func NewWarehouseHandler(delivery *service.DeliveryService) *WarehouseHandler {
	return &WarehouseHandler{delivery: delivery}
}

type statusUpdateRequest struct {
	ETA *time.Time `json:"eta"`
}

type transitionFunc func(ctx context.Context, id int64, eta *time.Time) (*domain.StockRequest, error)

func (h *WarehouseHandler) Dispatch(c *gin.Context) {
	h.transition(c, h.delivery.Dispatch)
}

func (h *WarehouseHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.delivery.MarkDelivered)
}

func (h *WarehouseHandler) Cancel(c *gin.Context) {
	h.transition(c, func(ctx context.Context, id int64, _ *time.Time) (*domain.StockRequest, error) {
		return h.delivery.Cancel(ctx, id)
	})
}

func (h *WarehouseHandler) transition(c *gin.Context, apply transitionFunc) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid stock request id")
		return
	}

	// chunked bodies report ContentLength -1, so check the body itself; an empty one means no eta
	var body statusUpdateRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "invalid request body, eta must be RFC3339")
			return
		}
	}

	req, err := apply(c.Request.Context(), id, body.ETA)
	if err != nil {
		respondError(c, "failed to update delivery status", err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// StatusLog returns the delivery history of a stock request.
func (h *WarehouseHandler) StatusLog(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid stock request id")
		return
	}

	logs, err := h.delivery.StatusLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to fetch status log", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
