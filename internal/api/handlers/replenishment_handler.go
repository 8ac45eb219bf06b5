package handlers

import (
	"net/http"

	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ReplenishmentHandler struct {
	replenishment *service.ReplenishmentService
	delivery      *service.DeliveryService
}

func NewReplenishmentHandler(replenishment *service.ReplenishmentService, delivery *service.DeliveryService) *ReplenishmentHandler {
	return &ReplenishmentHandler{replenishment: replenishment, delivery: delivery}
}

// PredictDepletion runs a depletion scan and raises alerts for low stock.
func (h *ReplenishmentHandler) PredictDepletion(c *gin.Context) {
	result, err := h.replenishment.PredictDepletion(c.Request.Context())
	if err != nil {
		respondError(c, "failed to predict depletion", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReplenishmentHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.replenishment.ListAlerts(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, "failed to fetch alerts", err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// CreateRequestsFromAlerts turns open alerts into stock requests.
func (h *ReplenishmentHandler) CreateRequestsFromAlerts(c *gin.Context) {
	summaries, err := h.replenishment.CreateRequestsFromAlerts(c.Request.Context())
	if err != nil {
		respondError(c, "failed to create stock requests", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"created":  len(summaries),
		"requests": summaries,
	})
}

func (h *ReplenishmentHandler) ListRequests(c *gin.Context) {
	requests, err := h.delivery.ListRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, "failed to fetch stock requests", err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *ReplenishmentHandler) GetRequest(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid stock request id")
		return
	}

	req, err := h.delivery.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondError(c, "failed to fetch stock request", err)
		return
	}

	c.JSON(http.StatusOK, req)
}
