package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/shelfstock/backend-go/internal/domain"
	"github.com/andresuchdata/shelfstock/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// parseFilter accepts store_ids both repeated and comma-separated:
//
//	?store_ids=1&store_ids=2
//	?store_ids=1,2
func (h *DashboardHandler) parseFilter(c *gin.Context) domain.DashboardFilter {
	var filter domain.DashboardFilter
	for _, raw := range c.QueryArray("store_ids") {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				filter.StoreIDs = append(filter.StoreIDs, id)
			}
		}
	}
	return filter
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.service.GetDashboard(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, "failed to fetch dashboard", err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.service.GetSummary(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, "failed to fetch summary", err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) GetShelves(c *gin.Context) {
	shelves, err := h.service.GetShelfMetrics(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, "failed to fetch shelf metrics", err)
		return
	}

	c.JSON(http.StatusOK, shelves)
}

func (h *DashboardHandler) GetStockouts(c *gin.Context) {
	stockouts, err := h.service.GetStockouts(c.Request.Context(), h.parseFilter(c))
	if err != nil {
		respondError(c, "failed to fetch stockouts", err)
		return
	}

	c.JSON(http.StatusOK, stockouts)
}
