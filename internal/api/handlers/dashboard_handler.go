// server/internal/api/handlers/dashboard_handler.go
package handlers

import (
	"net/http"

	"fleetlog-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	Stats *service.StatsService
	Logs  *service.LogService
}

// AdminStats aggregates across all logs in an optional date range.
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	stats, err := h.Stats.AdminStats(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// DriverStats aggregates the caller's own logs over a trailing period.
func (h *DashboardHandler) DriverStats(c *gin.Context) {
	period := c.DefaultQuery("period", "month")
	caller := callerFrom(c)

	stats, err := h.Stats.DriverStats(c.Request.Context(), caller.ID, period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":               period,
		"totalKm":              stats.TotalKm,
		"totalExpenses":        stats.TotalExpenses,
		"totalCashCollected":   stats.TotalCashCollected,
		"totalOnlineCollected": stats.TotalOnlineCollected,
		"totalEarnings":        stats.TotalEarnings,
	})
}

// DriverLogs is the admin monitoring view: one driver's full filtered
// history, unpaginated.
func (h *DashboardHandler) DriverLogs(c *gin.Context) {
	filter := service.QueryFilter{
		DriverID:  c.Param("driverId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}

	logs, err := h.Logs.QueryAll(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
