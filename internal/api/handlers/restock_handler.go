package handlers

import (
	"net/http"

	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type RestockHandler struct {
	restock *service.RestockService
}

func NewRestockHandler(restock *service.RestockService) *RestockHandler {
	return &RestockHandler{restock: restock}
}

func (h *RestockHandler) AssignTasks(c *gin.Context) {
	result, err := h.restock.AssignTasksFromDeliveredStock(c.Request.Context())
	if err != nil {
		respondError(c, "failed to assign restock tasks", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// OrganizeProduct takes staffId and taskId from the query string.
func (h *RestockHandler) OrganizeProduct(c *gin.Context) {
	staffID, ok := parseID(c.Query("staffId"))
	if !ok {
		badRequest(c, "staffId is required")
		return
	}
	taskID, ok := parseID(c.Query("taskId"))
	if !ok {
		badRequest(c, "taskId is required")
		return
	}

	result, err := h.restock.OrganizeDeliveredProduct(c.Request.Context(), taskID, staffID)
	if err != nil {
		respondError(c, "failed to organize product", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *RestockHandler) CheckStatus(c *gin.Context) {
	taskID, ok := parseID(c.Param("taskId"))
	if !ok {
		badRequest(c, "invalid task id")
		return
	}

	task, err := h.restock.CheckStatusByID(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, "failed to check task status", err)
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found or not completed yet"})
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *RestockHandler) ListByStaff(c *gin.Context) {
	staffID, ok := parseID(c.Param("staffId"))
	if !ok {
		badRequest(c, "invalid staff id")
		return
	}

	tasks, err := h.restock.ListTasksByStaff(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, "failed to fetch restock tasks", err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}
