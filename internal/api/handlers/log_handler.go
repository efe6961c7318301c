// server/internal/api/handlers/log_handler.go
package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"fleetlog-api-server/internal/export"
	"fleetlog-api-server/internal/models"
	"fleetlog-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	Service *service.LogService
}

// createLogForm is the multipart contract for create. Numeric fields
// are pointers so a legitimate zero still satisfies "required".
type createLogForm struct {
	DriverID        string   `form:"driverId"`
	Date            string   `form:"date" binding:"required"`
	TotalKm         *float64 `form:"totalKm" binding:"required"`
	FuelCost        *float64 `form:"fuelCost" binding:"required"`
	OtherExpenses   *float64 `form:"otherExpenses"`
	CashCollected   *float64 `form:"cashCollected" binding:"required"`
	OnlineCollected *float64 `form:"onlineCollected" binding:"required"`
}

type updateLogForm struct {
	Date            *string  `form:"date"`
	TotalKm         *float64 `form:"totalKm"`
	FuelCost        *float64 `form:"fuelCost"`
	OtherExpenses   *float64 `form:"otherExpenses"`
	CashCollected   *float64 `form:"cashCollected"`
	OnlineCollected *float64 `form:"onlineCollected"`
}

func filterFrom(c *gin.Context) service.QueryFilter {
	return service.QueryFilter{
		DriverID:  c.Query("driverId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

// GetLogs answers the filtered, paginated query. Driver callers only
// ever see their own records.
func (h *LogHandler) GetLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	logs, total, err := h.Service.Query(c.Request.Context(), callerFrom(c), filterFrom(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}

	c.JSON(http.StatusOK, gin.H{
		"logs": logs,
		"pagination": gin.H{
			"page":  page,
			"limit": pageSize,
			"total": total,
			"pages": pages,
		},
	})
}

func (h *LogHandler) GetLog(c *gin.Context) {
	entry, err := h.Service.GetByID(c.Request.Context(), callerFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateLog handles the multipart create: fields plus the mandatory
// expenseBill file.
func (h *LogHandler) CreateLog(c *gin.Context) {
	var form createLogForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	file, err := c.FormFile("expenseBill")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": "Expense bill file is required"}})
		return
	}

	in := service.CreateLogInput{
		DriverID:        form.DriverID,
		Date:            form.Date,
		TotalKm:         *form.TotalKm,
		FuelCost:        *form.FuelCost,
		CashCollected:   *form.CashCollected,
		OnlineCollected: *form.OnlineCollected,
	}
	if form.OtherExpenses != nil {
		in.OtherExpenses = *form.OtherExpenses
	}

	entry, err := h.Service.Create(c.Request.Context(), callerFrom(c), in, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// UpdateLog handles the multipart partial update; the file is optional.
func (h *LogHandler) UpdateLog(c *gin.Context) {
	var form updateLogForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"kind": "VALIDATION", "message": err.Error()}})
		return
	}

	file, err := c.FormFile("expenseBill")
	if err != nil {
		file = nil
	}

	in := service.UpdateLogInput{
		Date:            form.Date,
		TotalKm:         form.TotalKm,
		FuelCost:        form.FuelCost,
		OtherExpenses:   form.OtherExpenses,
		CashCollected:   form.CashCollected,
		OnlineCollected: form.OnlineCollected,
	}

	entry, err := h.Service.Update(c.Request.Context(), callerFrom(c), c.Param("id"), in, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (h *LogHandler) DeleteLog(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), callerFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Log deleted successfully"})
}

// exportSet fetches the full filtered record set, ignoring pagination.
func (h *LogHandler) exportSet(c *gin.Context) ([]models.LogWithDriver, bool) {
	logs, err := h.Service.QueryAll(c.Request.Context(), callerFrom(c), filterFrom(c))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return logs, true
}

func (h *LogHandler) ExportCSV(c *gin.Context) {
	logs, ok := h.exportSet(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, logs); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=driver-logs.csv")
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *LogHandler) ExportXLSX(c *gin.Context) {
	logs, ok := h.exportSet(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, logs); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=driver-logs.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *LogHandler) ExportPDF(c *gin.Context) {
	logs, ok := h.exportSet(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, logs); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=driver-logs.pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
